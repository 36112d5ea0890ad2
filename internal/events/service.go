// Package events manages fundraising events, their ticket tiers and
// registrations, and the donor follow-ups staff create from the dashboard.
//
// Payloads are raw JSON sent to the analytics API byte-for-byte. Date
// ordering and capacity are the server's concern; only the identifiers
// interpolated into request paths are checked here.
package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// Client is the subset of the analytics API used by Service.
type Client interface {
	CreateEvent(ctx context.Context, orgID string, payload json.RawMessage) (*analytics.Event, error)
	UpdateEvent(ctx context.Context, orgID, eventID string, payload json.RawMessage) (*analytics.Event, error)
	DeleteEvent(ctx context.Context, orgID, eventID string) error
	CreateTicketType(ctx context.Context, eventID string, payload json.RawMessage) (*analytics.TicketType, error)
	UpdateTicketType(ctx context.Context, ticketID string, payload json.RawMessage) (*analytics.TicketType, error)
	DeleteTicketType(ctx context.Context, ticketID string) error
	CreateRegistration(ctx context.Context, eventID string, payload json.RawMessage) (*analytics.Registration, error)
	CheckIn(ctx context.Context, registrationID string) (*analytics.Registration, error)
	SendThankYou(ctx context.Context, orgID string, payload json.RawMessage) (*analytics.Ack, error)
	CreateTask(ctx context.Context, orgID string, payload json.RawMessage) (*analytics.Task, error)
}

var _ Client = (*analytics.Client)(nil)

// Service performs one round trip per mutation. Nothing is retried and no
// local state is kept.
type Service struct {
	client Client
}

// NewService creates a Service over client.
func NewService(client Client) *Service {
	return &Service{client: client}
}

func checkIDs(pairs ...string) error {
	var c validation.Collector
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Add(validation.ValidateIdentifier(pairs[i], pairs[i+1]))
	}
	return c.Err()
}

func logMutation(action string, attrs ...any) {
	slog.Info(action, append([]any{"component", "events"}, attrs...)...)
}

// CreateEvent creates an event for orgID.
func (s *Service) CreateEvent(ctx context.Context, orgID string, payload json.RawMessage) (*analytics.Event, error) {
	if err := checkIDs("org_id", orgID); err != nil {
		return nil, err
	}
	ev, err := s.client.CreateEvent(ctx, orgID, payload)
	if err != nil {
		return nil, err
	}
	logMutation("event created", "org_id", orgID, "event_id", ev.ID)
	return ev, nil
}

// UpdateEvent replaces the fields of an existing event.
func (s *Service) UpdateEvent(ctx context.Context, orgID, eventID string, payload json.RawMessage) (*analytics.Event, error) {
	if err := checkIDs("org_id", orgID, "event_id", eventID); err != nil {
		return nil, err
	}
	ev, err := s.client.UpdateEvent(ctx, orgID, eventID, payload)
	if err != nil {
		return nil, err
	}
	logMutation("event updated", "org_id", orgID, "event_id", eventID)
	return ev, nil
}

// DeleteEvent deletes an event.
func (s *Service) DeleteEvent(ctx context.Context, orgID, eventID string) error {
	if err := checkIDs("org_id", orgID, "event_id", eventID); err != nil {
		return err
	}
	if err := s.client.DeleteEvent(ctx, orgID, eventID); err != nil {
		return err
	}
	logMutation("event deleted", "org_id", orgID, "event_id", eventID)
	return nil
}

// CreateTicketType adds a ticket tier to an event.
func (s *Service) CreateTicketType(ctx context.Context, eventID string, payload json.RawMessage) (*analytics.TicketType, error) {
	if err := checkIDs("event_id", eventID); err != nil {
		return nil, err
	}
	tt, err := s.client.CreateTicketType(ctx, eventID, payload)
	if err != nil {
		return nil, err
	}
	logMutation("ticket type created", "event_id", eventID, "ticket_id", tt.ID)
	return tt, nil
}

// UpdateTicketType replaces a ticket tier.
func (s *Service) UpdateTicketType(ctx context.Context, ticketID string, payload json.RawMessage) (*analytics.TicketType, error) {
	if err := checkIDs("ticket_id", ticketID); err != nil {
		return nil, err
	}
	tt, err := s.client.UpdateTicketType(ctx, ticketID, payload)
	if err != nil {
		return nil, err
	}
	logMutation("ticket type updated", "ticket_id", ticketID)
	return tt, nil
}

// DeleteTicketType removes a ticket tier.
func (s *Service) DeleteTicketType(ctx context.Context, ticketID string) error {
	if err := checkIDs("ticket_id", ticketID); err != nil {
		return err
	}
	if err := s.client.DeleteTicketType(ctx, ticketID); err != nil {
		return err
	}
	logMutation("ticket type deleted", "ticket_id", ticketID)
	return nil
}

// Register creates an attendee registration for an event.
func (s *Service) Register(ctx context.Context, eventID string, payload json.RawMessage) (*analytics.Registration, error) {
	if err := checkIDs("event_id", eventID); err != nil {
		return nil, err
	}
	reg, err := s.client.CreateRegistration(ctx, eventID, payload)
	if err != nil {
		return nil, err
	}
	logMutation("registration created", "event_id", eventID, "registration_id", reg.ID)
	return reg, nil
}

// CheckIn marks a registration as checked in.
func (s *Service) CheckIn(ctx context.Context, registrationID string) (*analytics.Registration, error) {
	if err := checkIDs("registration_id", registrationID); err != nil {
		return nil, err
	}
	reg, err := s.client.CheckIn(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	logMutation("registration checked in", "registration_id", registrationID)
	return reg, nil
}

// SendThankYou queues a thank-you message to a donor.
func (s *Service) SendThankYou(ctx context.Context, orgID string, payload json.RawMessage) (*analytics.Ack, error) {
	if err := checkIDs("org_id", orgID); err != nil {
		return nil, err
	}
	ack, err := s.client.SendThankYou(ctx, orgID, payload)
	if err != nil {
		return nil, err
	}
	var ty analytics.ThankYou
	_ = json.Unmarshal(payload, &ty)
	logMutation("thank-you queued", "org_id", orgID, "donor_id", ty.DonorID)
	return ack, nil
}

// CreateTask creates a follow-up task for staff.
func (s *Service) CreateTask(ctx context.Context, orgID string, payload json.RawMessage) (*analytics.Task, error) {
	if err := checkIDs("org_id", orgID); err != nil {
		return nil, err
	}
	task, err := s.client.CreateTask(ctx, orgID, payload)
	if err != nil {
		return nil, err
	}
	logMutation("task created", "org_id", orgID, "task_id", task.ID)
	return task, nil
}
