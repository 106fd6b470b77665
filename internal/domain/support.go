package domain

import (
	"errors"
	"time"
)

var ErrTicketNotFound = errors.New("support ticket not found")

type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in-progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

type TicketPriority string

const (
	PriorityLow    TicketPriority = "low"
	PriorityMedium TicketPriority = "medium"
	PriorityHigh   TicketPriority = "high"
	PriorityUrgent TicketPriority = "urgent"
)

type MessageAuthor string

const (
	AuthorUser   MessageAuthor = "user"
	AuthorAgent  MessageAuthor = "agent"
	AuthorSystem MessageAuthor = "system"
)

type SupportTicket struct {
	ID          string
	Email       string
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    string
	Messages    []TicketMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TicketMessage struct {
	ID        string
	TicketID  string
	Author    MessageAuthor
	Content   string
	CreatedAt time.Time
}
