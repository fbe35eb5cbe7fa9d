// estateadmin | 2026
// service_test.go

package sales

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/user"
)

type memSalesRepo struct {
	sales    map[string]*Sale
	payments map[string][]Payment
}

func newMemSalesRepo() *memSalesRepo {
	return &memSalesRepo{
		sales:    map[string]*Sale{},
		payments: map[string][]Payment{},
	}
}

func (m *memSalesRepo) Insert(_ context.Context, sale *Sale) error {
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	cp := *sale
	m.sales[sale.ID] = &cp
	return nil
}

func (m *memSalesRepo) GetByID(_ context.Context, id string) (*Sale, error) {
	if s, ok := m.sales[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
}

func (m *memSalesRepo) GetRow(_ context.Context, id string) (*SaleRow, error) {
	if s, ok := m.sales[id]; ok {
		return &SaleRow{Sale: *s}, nil
	}
	return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
}

func (m *memSalesRepo) List(
	_ context.Context,
	_ ListSalesParams,
) ([]SaleRow, int, error) {
	var out []SaleRow
	for _, s := range m.sales {
		out = append(out, SaleRow{Sale: *s})
	}
	return out, len(out), nil
}

func (m *memSalesRepo) ExistsTriple(
	_ context.Context,
	listingID, buyerID string,
	createdAt time.Time,
) (bool, error) {
	for _, s := range m.sales {
		if s.ListingID == listingID && s.BuyerID == buyerID &&
			s.CreatedAt.Equal(createdAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSalesRepo) InsertPayment(_ context.Context, p *Payment) error {
	p.CreatedAt = time.Now()
	m.payments[p.SaleID] = append(m.payments[p.SaleID], *p)
	return nil
}

func (m *memSalesRepo) ListPayments(
	_ context.Context,
	saleID string,
) ([]Payment, error) {
	return m.payments[saleID], nil
}

func (m *memSalesRepo) UpdateSalePayment(
	_ context.Context,
	saleID, paymentStatus, method string,
	paidAt *time.Time,
) error {
	s, ok := m.sales[saleID]
	if !ok {
		return fmt.Errorf("update sale payment: %w", core.ErrNotFound)
	}
	s.PaymentStatus = paymentStatus
	if method != "" {
		s.PaymentMethod = method
	}
	if paymentStatus == PaymentPaid {
		s.PaidAt = paidAt
	}
	return nil
}

func (m *memSalesRepo) Stats(_ context.Context) (*Stats, error) {
	return &Stats{TotalSales: len(m.sales)}, nil
}

type memAuditRepo struct {
	entries []audit.Entry
}

func (m *memAuditRepo) Append(_ context.Context, e *audit.Entry) error {
	e.ID = int64(len(m.entries) + 1)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAuditRepo) List(
	_ context.Context,
	_ audit.ListParams,
) ([]audit.Entry, int, error) {
	return m.entries, len(m.entries), nil
}

func (m *memAuditRepo) ListBuyEntries(_ context.Context) ([]audit.Entry, error) {
	var out []audit.Entry
	for _, e := range m.entries {
		if e.Action == audit.ActionBuy && e.EntityType == audit.EntityListing {
			out = append(out, e)
		}
	}
	return out, nil
}

type memStore struct {
	sales  *memSalesRepo
	audits *memAuditRepo
}

func newMemStore() *memStore {
	return &memStore{sales: newMemSalesRepo(), audits: &memAuditRepo{}}
}

func (m *memStore) Sales() Repository       { return m.sales }
func (m *memStore) Audit() audit.Repository { return m.audits }

func (m *memStore) InTx(_ context.Context, fn func(TxStore) error) error {
	return fn(m)
}

type memListingSource struct {
	listings map[string]*listing.Listing
}

func (m *memListingSource) GetByID(
	_ context.Context,
	id string,
) (*listing.Listing, error) {
	if l, ok := m.listings[id]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
}

var (
	staff = user.Actor{ID: "a1", Role: user.RoleAdmin}
	super = user.Actor{ID: "s1", Role: user.RoleSuperAdmin}
)

func seedSale(store *memStore, id string) *Sale {
	sellerID := "seller"
	s := &Sale{
		ID:            id,
		ListingID:     "l1",
		BuyerID:       "buyer",
		SellerID:      &sellerID,
		Price:         100000,
		Status:        SaleStatusValidated,
		PaymentMethod: PaymentMethodUndefined,
		PaymentStatus: PaymentPending,
		CreatedAt:     time.Now(),
	}
	store.sales.sales[id] = s
	return s
}

func buyEntry(listingID, buyerID string, price float64, at time.Time) audit.Entry {
	return audit.Entry{
		UserID:     &buyerID,
		Action:     audit.ActionBuy,
		EntityType: audit.EntityListing,
		EntityID:   &listingID,
		Details:    audit.BuyDetails("Test", price, "seller", "Seller", "s@x.io"),
		CreatedAt:  at,
	}
}

func TestRecordPaymentPaidStampsSale(t *testing.T) {
	store := newMemStore()
	seedSale(store, "sale1")
	svc := NewService(store, &memListingSource{})

	payment, err := svc.RecordPayment(
		context.Background(), staff, "sale1",
		RecordPaymentRequest{Amount: 100000, Method: "wire", Status: "Paid"},
	)
	require.NoError(t, err)

	require.NotNil(t, payment.PaidAt)

	sale := store.sales.sales["sale1"]
	assert.Equal(t, PaymentPaid, sale.PaymentStatus)
	assert.Equal(t, "wire", sale.PaymentMethod)
	require.NotNil(t, sale.PaidAt)
	assert.Equal(t, *payment.PaidAt, *sale.PaidAt)

	// Audit entry rides the same transaction.
	require.Len(t, store.audits.entries, 1)
	assert.Equal(t, audit.ActionPayment, store.audits.entries[0].Action)
}

func TestRecordPaymentLastWriteWins(t *testing.T) {
	store := newMemStore()
	seedSale(store, "sale1")
	svc := NewService(store, &memListingSource{})

	_, err := svc.RecordPayment(
		context.Background(), staff, "sale1",
		RecordPaymentRequest{Amount: 50000, Method: "wire", Status: "paid"},
	)
	require.NoError(t, err)

	_, err = svc.RecordPayment(
		context.Background(), staff, "sale1",
		RecordPaymentRequest{Amount: 50000, Method: "cash", Status: "cancelled"},
	)
	require.NoError(t, err)

	sale := store.sales.sales["sale1"]
	assert.Equal(t, PaymentCancelled, sale.PaymentStatus)
	// A non-paid payment does not clear the earlier paid stamp or method.
	assert.Equal(t, "wire", sale.PaymentMethod)
	assert.NotNil(t, sale.PaidAt)

	assert.Len(t, store.sales.payments["sale1"], 2)
}

func TestRecordPaymentWithoutReference(t *testing.T) {
	store := newMemStore()
	seedSale(store, "sale1")
	svc := NewService(store, &memListingSource{})

	// The reference is optional and stays unset when omitted.
	payment, err := svc.RecordPayment(
		context.Background(), staff, "sale1",
		RecordPaymentRequest{Amount: 100000, Method: "wire", Status: "pending"},
	)
	require.NoError(t, err)

	assert.Nil(t, payment.Reference)
	require.Len(t, store.sales.payments["sale1"], 1)
	assert.Nil(t, store.sales.payments["sale1"][0].Reference)
}

func TestRecordPaymentRejectsUnknownStatus(t *testing.T) {
	store := newMemStore()
	seedSale(store, "sale1")
	svc := NewService(store, &memListingSource{})

	_, err := svc.RecordPayment(
		context.Background(), staff, "sale1",
		RecordPaymentRequest{Amount: 1, Method: "wire", Status: "refunded"},
	)
	require.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestRecordPaymentGuards(t *testing.T) {
	store := newMemStore()
	seedSale(store, "sale1")
	svc := NewService(store, &memListingSource{})

	regular := user.Actor{ID: "u1", Role: user.RoleUser}
	_, err := svc.RecordPayment(
		context.Background(), regular, "sale1",
		RecordPaymentRequest{Amount: 1, Method: "wire", Status: "paid"},
	)
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.RecordPayment(
		context.Background(), staff, "missing",
		RecordPaymentRequest{Amount: 1, Method: "wire", Status: "paid"},
	)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func liveListings(ids ...string) *memListingSource {
	source := &memListingSource{listings: map[string]*listing.Listing{}}
	for _, id := range ids {
		source.listings[id] = &listing.Listing{ID: id, Price: 1}
	}
	return source
}

func TestBackfillCreatesMissingSales(t *testing.T) {
	store := newMemStore()
	at := time.Now().Add(-time.Hour)
	store.audits.entries = append(store.audits.entries,
		buyEntry("l1", "buyer1", 100000, at),
		buyEntry("l2", "buyer2", 250000, at.Add(time.Minute)),
	)
	svc := NewService(store, liveListings("l1", "l2"))

	report, err := svc.Backfill(context.Background(), super)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 2, report.Created)
	assert.Equal(t, 0, report.Existing)
	assert.Len(t, store.sales.sales, 2)

	for _, s := range store.sales.sales {
		assert.Equal(t, SaleStatusValidated, s.Status)
		assert.Equal(t, PaymentMethodUndefined, s.PaymentMethod)
		assert.Equal(t, PaymentPending, s.PaymentStatus)
		require.NotNil(t, s.SellerID)
		assert.Equal(t, "seller", *s.SellerID)
	}
}

func TestBackfillIsIdempotent(t *testing.T) {
	store := newMemStore()
	at := time.Now().Add(-time.Hour)
	store.audits.entries = append(store.audits.entries,
		buyEntry("l1", "buyer1", 100000, at),
	)
	svc := NewService(store, liveListings("l1"))

	_, err := svc.Backfill(context.Background(), super)
	require.NoError(t, err)
	require.Len(t, store.sales.sales, 1)

	report, err := svc.Backfill(context.Background(), super)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Created)
	assert.Equal(t, 1, report.Existing)
	assert.Len(t, store.sales.sales, 1)
}

func TestBackfillPriceFallsBackToListing(t *testing.T) {
	store := newMemStore()
	at := time.Now().Add(-time.Hour)

	buyerID := "buyer1"
	listingID := "l1"
	store.audits.entries = append(store.audits.entries, audit.Entry{
		UserID:     &buyerID,
		Action:     audit.ActionBuy,
		EntityType: audit.EntityListing,
		EntityID:   &listingID,
		Details:    "Purchase of Test | SellerId: seller",
		CreatedAt:  at,
	})

	source := &memListingSource{listings: map[string]*listing.Listing{
		"l1": {ID: "l1", Price: 175000},
	}}
	svc := NewService(store, source)

	report, err := svc.Backfill(context.Background(), super)
	require.NoError(t, err)
	require.Equal(t, 1, report.Created)

	for _, s := range store.sales.sales {
		assert.Equal(t, 175000.0, s.Price)
	}
}

func TestBackfillSkipsVanishedListings(t *testing.T) {
	store := newMemStore()
	at := time.Now().Add(-time.Hour)

	// The price parses fine; the skip is about the listing being gone,
	// since sale rows cannot exist without one.
	store.audits.entries = append(store.audits.entries,
		buyEntry("gone", "buyer1", 100000, at),
	)

	svc := NewService(store, &memListingSource{})

	report, err := svc.Backfill(context.Background(), super)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, store.sales.sales)
}

func TestBackfillRequiresSuperAdmin(t *testing.T) {
	svc := NewService(newMemStore(), &memListingSource{})

	_, err := svc.Backfill(context.Background(), staff)
	require.ErrorIs(t, err, core.ErrForbidden)
}
