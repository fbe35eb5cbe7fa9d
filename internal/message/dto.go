// estateadmin | 2026
// dto.go

package message

import (
	"time"
)

type CreateMessageRequest struct {
	Name    string `json:"name"    validate:"max=100"`
	Email   string `json:"email"   validate:"omitempty,email,max=200"`
	Subject string `json:"subject" validate:"max=200"`
	Content string `json:"content" validate:"required,max=5000"`
}

type MessageResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email,omitempty"`
	Subject   string     `json:"subject,omitempty"`
	Content   string     `json:"content"`
	Status    string     `json:"status"`
	HandledBy *string    `json:"handled_by,omitempty"`
	HandledAt *time.Time `json:"handled_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type ListMessagesParams struct {
	Page     int
	PageSize int
	Status   string
}

func (p *ListMessagesParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 20
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}

func (p *ListMessagesParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

func ToMessageResponse(m *Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Subject:   m.Subject,
		Content:   m.Content,
		Status:    m.Status,
		HandledBy: m.HandledBy,
		HandledAt: m.HandledAt,
		CreatedAt: m.CreatedAt,
	}
}

func ToMessageResponseList(messages []Message) []MessageResponse {
	responses := make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		responses = append(responses, ToMessageResponse(&m))
	}
	return responses
}
