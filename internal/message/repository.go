// estateadmin | 2026
// repository.go

package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mseddi/estateadmin/internal/core"
)

type Repository interface {
	Insert(ctx context.Context, m *Message) error
	GetByID(ctx context.Context, id string) (*Message, error)
	List(ctx context.Context, params ListMessagesParams) ([]Message, int, error)
	// MarkTreated stamps who handled the message and when.
	MarkTreated(ctx context.Context, id, handledBy string) error
	Delete(ctx context.Context, id string) error
	CountNew(ctx context.Context) (int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) Insert(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, name, email, subject, content, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.db.GetContext(ctx, &m.CreatedAt, query,
		m.ID,
		m.Name,
		m.Email,
		m.Subject,
		m.Content,
		m.Status,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

const messageColumns = `
	id, name, email, subject, content, status,
	handled_by, handled_at, created_at`

func (r *repository) GetByID(ctx context.Context, id string) (*Message, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM messages WHERE id = $1`,
		messageColumns,
	)

	var m Message
	err := r.db.GetContext(ctx, &m, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get message: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}

	return &m, nil
}

func (r *repository) List(
	ctx context.Context,
	params ListMessagesParams,
) ([]Message, int, error) {
	params.Normalize()

	var conditions []string
	var args []any
	argIdx := 1

	conditions = append(conditions, "TRUE")

	if params.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, params.Status)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(
		"SELECT COUNT(*) FROM messages WHERE %s",
		whereClause,
	)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count messages: %w", err)
	}

	// New messages surface first, newest within each group.
	query := fmt.Sprintf(`
		SELECT %s
		FROM messages
		WHERE %s
		ORDER BY (status = 'new') DESC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		messageColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.PageSize, params.Offset())

	var messages []Message
	if err := r.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}

	return messages, total, nil
}

func (r *repository) MarkTreated(
	ctx context.Context,
	id, handledBy string,
) error {
	query := `
		UPDATE messages
		SET status = 'treated', handled_by = $2, handled_at = NOW()
		WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id, handledBy)
	if err != nil {
		return fmt.Errorf("mark message treated: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark message treated: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("mark message treated: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM messages WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete message: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete message: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) CountNew(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM messages WHERE status = 'new'`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count new messages: %w", err)
	}

	return count, nil
}
