// estateadmin | 2026
// entity.go

package message

import (
	"fmt"
	"strings"
	"time"

	"github.com/mseddi/estateadmin/internal/core"
)

// Message is a contact-form submission. Anyone can send one; only staff
// read, treat, or delete them.
type Message struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Email     string     `db:"email"`
	Subject   string     `db:"subject"`
	Content   string     `db:"content"`
	Status    string     `db:"status"`
	HandledBy *string    `db:"handled_by"`
	HandledAt *time.Time `db:"handled_at"`
	CreatedAt time.Time  `db:"created_at"`
}

const (
	StatusNew     = "new"
	StatusTreated = "treated"
)

func (m *Message) IsTreated() bool {
	return m.Status == StatusTreated
}

func ParseStatus(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case StatusNew:
		return StatusNew, nil
	case StatusTreated:
		return StatusTreated, nil
	default:
		return "", fmt.Errorf(
			"invalid message status %q: %w",
			raw,
			core.ErrInvalidInput,
		)
	}
}
