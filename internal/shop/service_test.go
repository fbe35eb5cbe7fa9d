// estateadmin | 2026
// service_test.go

package shop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mseddi/estateadmin/internal/audit"
	"github.com/mseddi/estateadmin/internal/core"
	"github.com/mseddi/estateadmin/internal/listing"
	"github.com/mseddi/estateadmin/internal/sales"
	"github.com/mseddi/estateadmin/internal/user"
)

type memListingRepo struct {
	mu       sync.Mutex
	listings map[string]*listing.Listing
	images   map[string][]string
}

func newMemListingRepo() *memListingRepo {
	return &memListingRepo{
		listings: map[string]*listing.Listing{},
		images:   map[string][]string{},
	}
}

func (m *memListingRepo) Create(_ context.Context, l *listing.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memListingRepo) GetByID(
	_ context.Context,
	id string,
) (*listing.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return nil, fmt.Errorf("get listing: %w", core.ErrNotFound)
	}
	cp := *l
	return &cp, nil
}

func (m *memListingRepo) GetImages(
	_ context.Context,
	listingID string,
) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.images[listingID], nil
}

func (m *memListingRepo) Update(_ context.Context, l *listing.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.listings[l.ID] = &cp
	return nil
}

func (m *memListingRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.listings, id)
	return nil
}

func (m *memListingRepo) List(
	_ context.Context,
	params listing.ListListingsParams,
) ([]listing.Listing, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []listing.Listing
	for _, l := range m.listings {
		if params.Status != "" && l.PublicationStatus != params.Status {
			continue
		}
		if params.TransactionType != "" &&
			l.TransactionType != params.TransactionType {
			continue
		}
		if params.MinPrice != nil && l.Price < *params.MinPrice {
			continue
		}
		if params.MaxPrice != nil && l.Price > *params.MaxPrice {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (m *memListingRepo) ReplaceImages(
	_ context.Context,
	listingID string,
	urls []string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.images[listingID] = urls
	return nil
}

// MarkPurchased mirrors the conditional update in the real store: the
// eligibility re-check and the write happen under one lock.
func (m *memListingRepo) MarkPurchased(
	_ context.Context,
	id, buyerID string,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.listings[id]
	if !ok {
		return fmt.Errorf("mark purchased: %w", core.ErrNotFound)
	}
	if l.TransactionType == listing.TxnPurchased ||
		l.PublicationStatus != listing.StatusPublished {
		return fmt.Errorf("mark purchased: %w", core.ErrConflict)
	}
	l.OwnerID = &buyerID
	l.TransactionType = listing.TxnPurchased
	l.Version++
	return nil
}

func (m *memListingRepo) Stats(_ context.Context) (*listing.Stats, error) {
	return &listing.Stats{}, nil
}

type memSalesRepo struct {
	mu    sync.Mutex
	sales map[string]*sales.Sale
}

func newMemSalesRepo() *memSalesRepo {
	return &memSalesRepo{sales: map[string]*sales.Sale{}}
}

func (m *memSalesRepo) Insert(_ context.Context, sale *sales.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now()
	}
	cp := *sale
	m.sales[sale.ID] = &cp
	return nil
}

func (m *memSalesRepo) GetByID(
	_ context.Context,
	id string,
) (*sales.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sales[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, fmt.Errorf("get sale: %w", core.ErrNotFound)
}

func (m *memSalesRepo) GetRow(
	_ context.Context,
	id string,
) (*sales.SaleRow, error) {
	s, err := m.GetByID(context.Background(), id)
	if err != nil {
		return nil, err
	}
	return &sales.SaleRow{Sale: *s}, nil
}

func (m *memSalesRepo) List(
	_ context.Context,
	_ sales.ListSalesParams,
) ([]sales.SaleRow, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sales.SaleRow
	for _, s := range m.sales {
		out = append(out, sales.SaleRow{Sale: *s})
	}
	return out, len(out), nil
}

func (m *memSalesRepo) ExistsTriple(
	_ context.Context,
	listingID, buyerID string,
	createdAt time.Time,
) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.sales {
		if s.ListingID == listingID && s.BuyerID == buyerID &&
			s.CreatedAt.Equal(createdAt) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memSalesRepo) InsertPayment(
	_ context.Context,
	_ *sales.Payment,
) error {
	return nil
}

func (m *memSalesRepo) ListPayments(
	_ context.Context,
	_ string,
) ([]sales.Payment, error) {
	return nil, nil
}

func (m *memSalesRepo) UpdateSalePayment(
	_ context.Context,
	_, _, _ string,
	_ *time.Time,
) error {
	return nil
}

func (m *memSalesRepo) Stats(_ context.Context) (*sales.Stats, error) {
	return &sales.Stats{}, nil
}

type memAuditRepo struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (m *memAuditRepo) Append(_ context.Context, e *audit.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = int64(len(m.entries) + 1)
	e.CreatedAt = time.Now()
	m.entries = append(m.entries, *e)
	return nil
}

func (m *memAuditRepo) List(
	_ context.Context,
	_ audit.ListParams,
) ([]audit.Entry, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries, len(m.entries), nil
}

func (m *memAuditRepo) ListBuyEntries(
	_ context.Context,
) ([]audit.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Entry
	for _, e := range m.entries {
		if e.Action == audit.ActionBuy {
			out = append(out, e)
		}
	}
	return out, nil
}

type memStore struct {
	listings *memListingRepo
	sales    *memSalesRepo
	audits   *memAuditRepo
}

func newMemStore() *memStore {
	return &memStore{
		listings: newMemListingRepo(),
		sales:    newMemSalesRepo(),
		audits:   &memAuditRepo{},
	}
}

func (m *memStore) Listings() listing.Repository { return m.listings }
func (m *memStore) Sales() sales.Repository      { return m.sales }
func (m *memStore) Audit() audit.Repository      { return m.audits }

func (m *memStore) InTx(_ context.Context, fn func(TxStore) error) error {
	return fn(m)
}

type memDirectory struct {
	users map[string]*user.User
}

func (m *memDirectory) GetByID(
	_ context.Context,
	id string,
) (*user.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
}

func newFixture() (*Service, *memStore) {
	store := newMemStore()
	dir := &memDirectory{users: map[string]*user.User{
		"seller": {
			ID:    "seller",
			Name:  "Ana Seller",
			Email: "ana@example.com",
			Role:  user.RoleUser,
		},
		"buyer":  {ID: "buyer", Role: user.RoleUser},
		"buyer2": {ID: "buyer2", Role: user.RoleUser},
	}}
	return NewService(store, dir), store
}

func seedEligible(store *memStore, id string) {
	ownerID := "seller"
	l := &listing.Listing{
		ID:                id,
		Title:             "Villa Rosa",
		Price:             100000,
		OwnerID:           &ownerID,
		TransactionType:   listing.TxnForSale,
		PublicationStatus: listing.StatusPublished,
		IsPublished:       true,
		Version:           1,
	}
	store.listings.listings[id] = l
}

func TestBuyTransfersOwnershipAndWritesLedger(t *testing.T) {
	svc, store := newFixture()
	seedEligible(store, "l1")

	buyer := user.Actor{ID: "buyer", Role: user.RoleUser}
	sale, err := svc.Buy(context.Background(), buyer, "l1")
	require.NoError(t, err)

	assert.Equal(t, "buyer", sale.BuyerID)
	require.NotNil(t, sale.SellerID)
	assert.Equal(t, "seller", *sale.SellerID)
	assert.Equal(t, 100000.0, sale.Price)
	assert.Equal(t, sales.SaleStatusValidated, sale.Status)
	assert.Equal(t, sales.PaymentMethodUndefined, sale.PaymentMethod)
	assert.Equal(t, sales.PaymentPending, sale.PaymentStatus)

	l := store.listings.listings["l1"]
	assert.Equal(t, "buyer", *l.OwnerID)
	assert.Equal(t, listing.TxnPurchased, l.TransactionType)

	require.Len(t, store.audits.entries, 1)
	entry := store.audits.entries[0]
	assert.Equal(t, audit.ActionBuy, entry.Action)
	assert.Equal(t, audit.EntityListing, entry.EntityType)
	assert.Equal(t, "seller", audit.DetailValue(entry.Details, "SellerId"))
	assert.Equal(t, "Ana Seller", audit.DetailValue(entry.Details, "SellerName"))

	price, ok := audit.DetailDecimal(entry.Details, "Price")
	require.True(t, ok)
	assert.Equal(t, 100000.0, price)
}

func TestBuySecondAttemptFails(t *testing.T) {
	svc, store := newFixture()
	seedEligible(store, "l1")

	buyer := user.Actor{ID: "buyer", Role: user.RoleUser}
	_, err := svc.Buy(context.Background(), buyer, "l1")
	require.NoError(t, err)

	// By anyone, including the new owner.
	_, err = svc.Buy(context.Background(), buyer, "l1")
	require.Error(t, err)

	other := user.Actor{ID: "buyer2", Role: user.RoleUser}
	_, err = svc.Buy(context.Background(), other, "l1")
	require.ErrorIs(t, err, core.ErrForbidden)

	assert.Len(t, store.sales.sales, 1)
}

func TestBuyPreconditions(t *testing.T) {
	svc, store := newFixture()
	seedEligible(store, "l1")

	t.Run("missing listing", func(t *testing.T) {
		buyer := user.Actor{ID: "buyer", Role: user.RoleUser}
		_, err := svc.Buy(context.Background(), buyer, "missing")
		require.ErrorIs(t, err, core.ErrNotFound)
	})

	t.Run("staff forbidden", func(t *testing.T) {
		admin := user.Actor{ID: "a1", Role: user.RoleAdmin}
		_, err := svc.Buy(context.Background(), admin, "l1")
		require.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("owner forbidden", func(t *testing.T) {
		owner := user.Actor{ID: "seller", Role: user.RoleUser}
		_, err := svc.Buy(context.Background(), owner, "l1")
		require.ErrorIs(t, err, core.ErrForbidden)
	})

	t.Run("unpublished listing", func(t *testing.T) {
		pending := *store.listings.listings["l1"]
		pending.ID = "l2"
		pending.PublicationStatus = listing.StatusPending
		pending.IsPublished = false
		store.listings.listings["l2"] = &pending

		buyer := user.Actor{ID: "buyer", Role: user.RoleUser}
		_, err := svc.Buy(context.Background(), buyer, "l2")
		require.ErrorIs(t, err, core.ErrForbidden)
	})
}

func TestBuyRaceExactlyOneWinner(t *testing.T) {
	svc, store := newFixture()
	seedEligible(store, "l1")

	actors := []user.Actor{
		{ID: "buyer", Role: user.RoleUser},
		{ID: "buyer2", Role: user.RoleUser},
	}

	errs := make([]error, len(actors))
	var wg sync.WaitGroup
	for i, actor := range actors {
		wg.Add(1)
		go func(i int, actor user.Actor) {
			defer wg.Done()
			_, errs[i] = svc.Buy(context.Background(), actor, "l1")
		}(i, actor)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
			continue
		}
		// The loser gets a well-defined rejection, never a silent pass.
		isDefined := errors.Is(err, core.ErrConflict) ||
			errors.Is(err, core.ErrForbidden)
		assert.True(t, isDefined, "unexpected loser error: %v", err)
	}

	assert.Equal(t, 1, successes)
	assert.Len(t, store.sales.sales, 1)
	assert.Equal(
		t,
		listing.TxnPurchased,
		store.listings.listings["l1"].TransactionType,
	)
}

func TestBrowseOnlyPublishedForSale(t *testing.T) {
	svc, store := newFixture()
	seedEligible(store, "l1")

	sold := *store.listings.listings["l1"]
	sold.ID = "l2"
	sold.TransactionType = listing.TxnPurchased
	store.listings.listings["l2"] = &sold

	hidden := *store.listings.listings["l1"]
	hidden.ID = "l3"
	hidden.PublicationStatus = listing.StatusPending
	hidden.IsPublished = false
	store.listings.listings["l3"] = &hidden

	listings, total, err := svc.Browse(
		context.Background(),
		user.Actor{},
		listing.ListListingsParams{},
	)
	require.NoError(t, err)

	assert.Equal(t, 1, total)
	require.Len(t, listings, 1)
	assert.Equal(t, "l1", listings[0].ID)
}

func TestBrowseForbiddenForStaff(t *testing.T) {
	svc, _ := newFixture()

	admin := user.Actor{ID: "a1", Role: user.RoleAdmin}
	_, _, err := svc.Browse(
		context.Background(),
		admin,
		listing.ListListingsParams{},
	)
	require.ErrorIs(t, err, core.ErrForbidden)
}

func TestShopDetailHidesUnpublished(t *testing.T) {
	svc, store := newFixture()
	seedEligible(store, "l1")
	store.listings.listings["l1"].IsPublished = false
	store.listings.listings["l1"].PublicationStatus = listing.StatusRefused

	_, _, err := svc.GetListing(context.Background(), "l1")
	require.ErrorIs(t, err, core.ErrNotFound)
}
