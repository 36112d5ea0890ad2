// Package admin handles pending requests for user access.
package admin

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// MaxReasonLength bounds the free-text rejection reason.
const MaxReasonLength = 500

// Client is the subset of the analytics API used by Service.
type Client interface {
	PendingRequests(ctx context.Context) (*analytics.AdminRequestList, error)
	ApproveRequest(ctx context.Context, requestID string) (*analytics.Ack, error)
	RejectRequest(ctx context.Context, requestID, reason string) (*analytics.Ack, error)
}

var _ Client = (*analytics.Client)(nil)

// Service lists and decides access requests.
type Service struct {
	client Client
}

// NewService creates a Service over client.
func NewService(client Client) *Service {
	return &Service{client: client}
}

// Pending returns the requests awaiting a decision, oldest first.
func (s *Service) Pending(ctx context.Context) ([]analytics.AdminRequest, error) {
	list, err := s.client.PendingRequests(ctx)
	if err != nil {
		return nil, err
	}
	reqs := list.Requests
	if reqs == nil {
		reqs = []analytics.AdminRequest{}
	}
	sort.SliceStable(reqs, func(i, j int) bool {
		return reqs[i].RequestedAt.Before(reqs[j].RequestedAt)
	})
	return reqs, nil
}

// Approve grants a pending request.
func (s *Service) Approve(ctx context.Context, requestID string) (*analytics.Ack, error) {
	if err := validation.ValidateIdentifier("request_id", requestID); err != nil {
		return nil, validation.Errors{*err}
	}
	ack, err := s.client.ApproveRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	slog.Info("access request approved",
		"component", "admin",
		"request_id", requestID,
	)
	return ack, nil
}

// Reject declines a pending request. The reason is optional.
func (s *Service) Reject(ctx context.Context, requestID, reason string) (*analytics.Ack, error) {
	var c validation.Collector
	c.Add(validation.ValidateIdentifier("request_id", requestID))
	reason = strings.TrimSpace(reason)
	if len([]rune(reason)) > MaxReasonLength {
		c.Add(&validation.ValidationError{Field: "reason", Message: "exceeds maximum length of 500 characters"})
	}
	if err := c.Err(); err != nil {
		return nil, err
	}

	ack, err := s.client.RejectRequest(ctx, requestID, reason)
	if err != nil {
		return nil, err
	}
	slog.Info("access request rejected",
		"component", "admin",
		"request_id", requestID,
		"with_reason", reason != "",
	)
	return ack, nil
}
