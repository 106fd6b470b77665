package usecase

import (
	"context"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
	"github.com/financex/financex/internal/support"
)

type SupportUsecase struct {
	tickets   repository.TicketRepository
	responder support.Responder
}

func NewSupportUsecase(tickets repository.TicketRepository, responder support.Responder) *SupportUsecase {
	return &SupportUsecase{tickets: tickets, responder: responder}
}

type CreateTicketInput struct {
	Email       string
	Subject     string
	Description string
	Priority    domain.TicketPriority
	Category    string
}

// CreateTicket opens a ticket seeded with the description as the first user
// message and an automatic acknowledgement.
func (u *SupportUsecase) CreateTicket(ctx context.Context, input CreateTicketInput) (*domain.SupportTicket, error) {
	if input.Priority == "" {
		input.Priority = domain.PriorityMedium
	}
	if input.Category == "" {
		input.Category = "general"
	}

	t := &domain.SupportTicket{
		Email:       input.Email,
		Subject:     input.Subject,
		Description: input.Description,
		Status:      domain.TicketOpen,
		Priority:    input.Priority,
		Category:    input.Category,
		Messages: []domain.TicketMessage{
			{Author: domain.AuthorUser, Content: input.Description},
			{Author: domain.AuthorSystem, Content: "Your ticket has been received. A support agent will respond shortly."},
		},
	}
	return u.tickets.Create(ctx, t)
}

func (u *SupportUsecase) ListTickets(ctx context.Context, input repository.ListTicketsInput) ([]*domain.SupportTicket, int, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 20
	}
	return u.tickets.List(ctx, input)
}

func (u *SupportUsecase) GetTicket(ctx context.Context, id, email string) (*domain.SupportTicket, error) {
	return u.tickets.GetByID(ctx, id, email)
}

type UpdateTicketInput struct {
	Email    string
	ID       string
	Status   domain.TicketStatus
	Priority domain.TicketPriority
}

func (u *SupportUsecase) UpdateTicket(ctx context.Context, input UpdateTicketInput) (*domain.SupportTicket, error) {
	return u.tickets.UpdateStatus(ctx, input.ID, input.Email, input.Status, input.Priority)
}

// AddMessage appends the user's message and an agent reply from the
// responder. A responder failure still keeps the user's message; the reply
// just does not appear.
func (u *SupportUsecase) AddMessage(ctx context.Context, ticketID, email, content string) (*domain.SupportTicket, error) {
	err := u.tickets.AppendMessage(ctx, ticketID, email, domain.TicketMessage{
		Author:  domain.AuthorUser,
		Content: content,
	})
	if err != nil {
		return nil, err
	}

	if reply, rerr := u.responder.Respond(ctx, content); rerr == nil {
		_ = u.tickets.AppendMessage(ctx, ticketID, email, domain.TicketMessage{
			Author:  domain.AuthorAgent,
			Content: reply.Text,
		})
	}

	return u.tickets.GetByID(ctx, ticketID, email)
}

func (u *SupportUsecase) DeleteTicket(ctx context.Context, id, email string) error {
	return u.tickets.Delete(ctx, id, email)
}

// Chat answers a one-off support-widget message without a ticket.
func (u *SupportUsecase) Chat(ctx context.Context, message string) (support.Reply, error) {
	return u.responder.Respond(ctx, message)
}
