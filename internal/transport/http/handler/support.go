package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/financex/financex/internal/domain"
	"github.com/financex/financex/internal/repository"
	"github.com/financex/financex/internal/support"
	"github.com/financex/financex/internal/transport/http/middleware"
	"github.com/financex/financex/internal/usecase"
)

type supportUsecaser interface {
	CreateTicket(ctx context.Context, input usecase.CreateTicketInput) (*domain.SupportTicket, error)
	ListTickets(ctx context.Context, input repository.ListTicketsInput) ([]*domain.SupportTicket, int, error)
	GetTicket(ctx context.Context, id, email string) (*domain.SupportTicket, error)
	UpdateTicket(ctx context.Context, input usecase.UpdateTicketInput) (*domain.SupportTicket, error)
	AddMessage(ctx context.Context, ticketID, email, content string) (*domain.SupportTicket, error)
	DeleteTicket(ctx context.Context, id, email string) error
	Chat(ctx context.Context, message string) (support.Reply, error)
}

type SupportHandler struct {
	support supportUsecaser
	logger  *slog.Logger
}

func NewSupportHandler(supportUsecase supportUsecaser, logger *slog.Logger) *SupportHandler {
	return &SupportHandler{support: supportUsecase, logger: logger.With("component", "support_handler")}
}

type ticketMessageResponse struct {
	ID        string               `json:"id"`
	Author    domain.MessageAuthor `json:"author"`
	Content   string               `json:"content"`
	CreatedAt time.Time            `json:"created_at"`
}

type ticketResponse struct {
	ID          string                  `json:"id"`
	Subject     string                  `json:"subject"`
	Description string                  `json:"description"`
	Status      domain.TicketStatus     `json:"status"`
	Priority    domain.TicketPriority   `json:"priority"`
	Category    string                  `json:"category"`
	Messages    []ticketMessageResponse `json:"messages"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
}

func toTicketResponse(t *domain.SupportTicket) ticketResponse {
	msgs := make([]ticketMessageResponse, 0, len(t.Messages))
	for _, m := range t.Messages {
		msgs = append(msgs, ticketMessageResponse{
			ID:        m.ID,
			Author:    m.Author,
			Content:   m.Content,
			CreatedAt: m.CreatedAt,
		})
	}
	return ticketResponse{
		ID:          t.ID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status,
		Priority:    t.Priority,
		Category:    t.Category,
		Messages:    msgs,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

type createTicketRequest struct {
	Subject     string                `json:"subject"     binding:"required,min=3,max=200"`
	Description string                `json:"description" binding:"required,min=10"`
	Priority    domain.TicketPriority `json:"priority"    binding:"omitempty,oneof=low medium high urgent"`
	Category    string                `json:"category"`
}

// POST /api/support/tickets
func (h *SupportHandler) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	t, err := h.support.CreateTicket(c.Request.Context(), usecase.CreateTicketInput{
		Email:       c.GetString(middleware.ContextEmail),
		Subject:     req.Subject,
		Description: req.Description,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		h.logger.Error("create ticket", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "ticket": toTicketResponse(t)})
}

// GET /api/support/tickets?status=&page=&limit=
func (h *SupportHandler) ListTickets(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	tickets, total, err := h.support.ListTickets(c.Request.Context(), repository.ListTicketsInput{
		Email:  c.GetString(middleware.ContextEmail),
		Status: domain.TicketStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("list tickets", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}

	out := make([]ticketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, toTicketResponse(t))
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "tickets": out, "total": total})
}

// GET /api/support/tickets/:id
func (h *SupportHandler) GetTicket(c *gin.Context) {
	t, err := h.support.GetTicket(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextEmail))
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errTicketNotFound})
			return
		}
		h.logger.Error("get ticket", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": toTicketResponse(t)})
}

type updateTicketRequest struct {
	Status   domain.TicketStatus   `json:"status"   binding:"omitempty,oneof=open in-progress resolved closed"`
	Priority domain.TicketPriority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
}

// PATCH /api/support/tickets/:id
func (h *SupportHandler) UpdateTicket(c *gin.Context) {
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	t, err := h.support.UpdateTicket(c.Request.Context(), usecase.UpdateTicketInput{
		Email:    c.GetString(middleware.ContextEmail),
		ID:       c.Param("id"),
		Status:   req.Status,
		Priority: req.Priority,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errTicketNotFound})
			return
		}
		h.logger.Error("update ticket", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": toTicketResponse(t)})
}

type addMessageRequest struct {
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// POST /api/support/tickets/:id/messages
func (h *SupportHandler) AddMessage(c *gin.Context) {
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	t, err := h.support.AddMessage(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextEmail), req.Content)
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errTicketNotFound})
			return
		}
		h.logger.Error("add ticket message", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "ticket": toTicketResponse(t)})
}

// DELETE /api/support/tickets/:id
func (h *SupportHandler) DeleteTicket(c *gin.Context) {
	err := h.support.DeleteTicket(c.Request.Context(), c.Param("id"), c.GetString(middleware.ContextEmail))
	if err != nil {
		if errors.Is(err, domain.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": errTicketNotFound})
			return
		}
		h.logger.Error("delete ticket", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ticket deleted"})
}

type chatRequest struct {
	Message string `json:"message" binding:"required,min=1,max=5000"`
}

// POST /api/support/chat
func (h *SupportHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	reply, err := h.support.Chat(c.Request.Context(), req.Message)
	if err != nil {
		h.logger.Error("support chat", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": errInternalServer})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply.Text, "source": reply.Source})
}
