// estateadmin | 2026
// status.go

package listing

import (
	"fmt"
	"strings"

	"github.com/mseddi/estateadmin/internal/core"
)

const (
	StatusPending   = "pending"
	StatusPublished = "published"
	StatusRefused   = "refused"
)

const (
	TxnForSale   = "for_sale"
	TxnPurchased = "purchased"
)

const maxImages = 10

// ParsePublicationStatus normalizes a client-supplied status token.
// Only the three canonical labels are accepted, case-insensitively;
// anything else is rejected rather than coerced.
func ParsePublicationStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusPending:
		return StatusPending, nil
	case StatusPublished:
		return StatusPublished, nil
	case StatusRefused:
		return StatusRefused, nil
	default:
		return "", fmt.Errorf(
			"invalid publication status %q: %w",
			raw,
			core.ErrInvalidInput,
		)
	}
}

// NormalizeTransactionType maps free-form input onto the two canonical
// labels. Unrecognized input means a listing offered for sale.
func NormalizeTransactionType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case TxnPurchased:
		return TxnPurchased
	default:
		return TxnForSale
	}
}

// ParseImageURLs filters submitted URLs down to what the listing
// stores: http(s)-prefixed entries only, case-insensitive dedupe,
// original order preserved, capped at ten. Elements may themselves be
// newline- or semicolon-separated blobs pasted from a form.
func ParseImageURLs(raw []string) []string {
	var flat []string
	for _, chunk := range raw {
		flat = append(flat, strings.FieldsFunc(chunk, func(r rune) bool {
			return r == '\n' || r == '\r' || r == ';'
		})...)
	}

	seen := make(map[string]struct{}, len(flat))
	urls := make([]string, 0, len(flat))

	for _, u := range flat {
		u = strings.TrimSpace(u)
		if !strings.HasPrefix(strings.ToLower(u), "http") {
			continue
		}

		key := strings.ToLower(u)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		urls = append(urls, u)
		if len(urls) == maxImages {
			break
		}
	}

	return urls
}
