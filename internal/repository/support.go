package repository

import (
	"context"

	"github.com/financex/financex/internal/domain"
)

type ListTicketsInput struct {
	Email  string
	Status domain.TicketStatus // empty = all
	Page   int
	Limit  int
}

type TicketRepository interface {
	// Create inserts the ticket and its seed messages in one transaction.
	Create(ctx context.Context, t *domain.SupportTicket) (*domain.SupportTicket, error)
	GetByID(ctx context.Context, id, email string) (*domain.SupportTicket, error)
	List(ctx context.Context, input ListTicketsInput) ([]*domain.SupportTicket, int, error)
	UpdateStatus(ctx context.Context, id, email string, status domain.TicketStatus, priority domain.TicketPriority) (*domain.SupportTicket, error)
	AppendMessage(ctx context.Context, ticketID, email string, msg domain.TicketMessage) error
	Delete(ctx context.Context, id, email string) error
}
