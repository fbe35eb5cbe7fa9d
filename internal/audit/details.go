// estateadmin | 2026
// details.go

package audit

import (
	"fmt"
	"strconv"
	"strings"
)

// Detail blobs use a flat segment encoding: a free-text summary followed
// by "Key: value" segments, all joined with " | ". Example:
//
//	Purchase of Villa Rosa | Price: 100000 | SellerId: u1 | SellerName: Ana | SellerEmail: ana@x.io
//
// Keys are bare words. Pipes in the summary or in values are rewritten
// at encode time: a listing title or seller name carrying " | Price: 1"
// must not read back as its own segment.

const segmentSep = " | "

type Field struct {
	Key   string
	Value string
}

func EncodeDetails(summary string, fields ...Field) string {
	parts := make([]string, 0, len(fields)+1)
	parts = append(parts, sanitizeSegment(summary))
	for _, f := range fields {
		parts = append(parts, f.Key+": "+sanitizeSegment(f.Value))
	}
	return strings.Join(parts, segmentSep)
}

func sanitizeSegment(s string) string {
	return strings.ReplaceAll(s, "|", "/")
}

// DetailValue extracts the value for key from an encoded blob. Returns
// the empty string when the key is absent.
func DetailValue(details, key string) string {
	for _, segment := range strings.Split(details, segmentSep) {
		k, v, found := strings.Cut(segment, ":")
		if !found {
			continue
		}
		if strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// DetailDecimal extracts and parses a decimal value for key. Parsing is
// tolerant of both dot and comma decimal separators since historical
// entries were written under varying locales.
func DetailDecimal(details, key string) (float64, bool) {
	raw := DetailValue(details, key)
	if raw == "" {
		return 0, false
	}
	return ParseDecimal(raw)
}

func ParseDecimal(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}

	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		return v, true
	}

	// Comma-decimal locales write "100000,50", sometimes with spaces or
	// dots as thousand separators.
	normalized := strings.NewReplacer(" ", "", "\u00a0", "", ".", "").
		Replace(raw)
	normalized = strings.ReplaceAll(normalized, ",", ".")

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// BuyDetails encodes the purchase record consumed by the sales backfill.
func BuyDetails(
	title string,
	price float64,
	sellerID, sellerName, sellerEmail string,
) string {
	return EncodeDetails(
		fmt.Sprintf("Purchase of %s", title),
		Field{Key: "Price", Value: strconv.FormatFloat(price, 'f', -1, 64)},
		Field{Key: "SellerId", Value: sellerID},
		Field{Key: "SellerName", Value: sellerName},
		Field{Key: "SellerEmail", Value: sellerEmail},
	)
}
