package api

import (
	"net/http"

	"github.com/p2sg/wiseinvestor/internal/admin"
	"github.com/p2sg/wiseinvestor/internal/events"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

func (h *Handler) eventsFor(r *http.Request) *events.Service {
	return events.NewService(h.clientFor(r))
}

func (h *Handler) adminFor(r *http.Request) *admin.Service {
	return admin.NewService(h.clientFor(r))
}

// CreateEvent handles POST /api/v1/orgs/{orgID}/events
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	ev, err := h.eventsFor(r).CreateEvent(r.Context(), urlParam(r, "orgID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to create event")
		return
	}
	writeMutation(w, http.StatusCreated, "Event created successfully", ev)
}

// UpdateEvent handles PUT /api/v1/orgs/{orgID}/events/{eventID}
func (h *Handler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	ev, err := h.eventsFor(r).UpdateEvent(r.Context(), urlParam(r, "orgID"), urlParam(r, "eventID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to update event")
		return
	}
	writeMutation(w, http.StatusOK, "Event updated successfully", ev)
}

// DeleteEvent handles DELETE /api/v1/orgs/{orgID}/events/{eventID}
func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := h.eventsFor(r).DeleteEvent(r.Context(), urlParam(r, "orgID"), urlParam(r, "eventID")); err != nil {
		h.writeError(w, r, err, "Failed to delete event")
		return
	}
	writeMutation(w, http.StatusOK, "Event deleted successfully", nil)
}

// CreateTicketType handles POST /api/v1/events/{eventID}/tickets
func (h *Handler) CreateTicketType(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	tt, err := h.eventsFor(r).CreateTicketType(r.Context(), urlParam(r, "eventID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to create ticket type")
		return
	}
	writeMutation(w, http.StatusCreated, "Ticket type created successfully", tt)
}

// UpdateTicketType handles PUT /api/v1/tickets/{ticketID}
func (h *Handler) UpdateTicketType(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	tt, err := h.eventsFor(r).UpdateTicketType(r.Context(), urlParam(r, "ticketID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to update ticket type")
		return
	}
	writeMutation(w, http.StatusOK, "Ticket type updated successfully", tt)
}

// DeleteTicketType handles DELETE /api/v1/tickets/{ticketID}
func (h *Handler) DeleteTicketType(w http.ResponseWriter, r *http.Request) {
	if err := h.eventsFor(r).DeleteTicketType(r.Context(), urlParam(r, "ticketID")); err != nil {
		h.writeError(w, r, err, "Failed to delete ticket type")
		return
	}
	writeMutation(w, http.StatusOK, "Ticket type deleted successfully", nil)
}

// CreateRegistration handles POST /api/v1/events/{eventID}/registrations
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	reg, err := h.eventsFor(r).Register(r.Context(), urlParam(r, "eventID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to create registration")
		return
	}
	writeMutation(w, http.StatusCreated, "Registration created successfully", reg)
}

// CheckIn handles POST /api/v1/registrations/{registrationID}/check-in
func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	reg, err := h.eventsFor(r).CheckIn(r.Context(), urlParam(r, "registrationID"))
	if err != nil {
		h.writeError(w, r, err, "Failed to check in attendee")
		return
	}
	writeMutation(w, http.StatusOK, "Attendee checked in", reg)
}

// SendThankYou handles POST /api/v1/orgs/{orgID}/thank-you
func (h *Handler) SendThankYou(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	ack, err := h.eventsFor(r).SendThankYou(r.Context(), urlParam(r, "orgID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to send thank-you")
		return
	}
	writeMutation(w, http.StatusOK, ackMessage(ack, "Thank-you queued"), ack)
}

// CreateTask handles POST /api/v1/orgs/{orgID}/tasks
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	payload, err := readPayload(r)
	if err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	task, err := h.eventsFor(r).CreateTask(r.Context(), urlParam(r, "orgID"), payload)
	if err != nil {
		h.writeError(w, r, err, "Failed to create task")
		return
	}
	writeMutation(w, http.StatusCreated, "Task created successfully", task)
}

// PendingRequests handles GET /api/v1/admin/requests
func (h *Handler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := h.adminFor(r).Pending(r.Context())
	if err != nil {
		h.writeError(w, r, err, "Failed to load pending requests")
		return
	}
	writeJSON(w, http.StatusOK, analytics.AdminRequestList{Requests: reqs})
}

// ApproveRequest handles POST /api/v1/admin/requests/{requestID}/approve
func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	ack, err := h.adminFor(r).Approve(r.Context(), urlParam(r, "requestID"))
	if err != nil {
		h.writeError(w, r, err, "Failed to approve request")
		return
	}
	writeMutation(w, http.StatusOK, ackMessage(ack, "Request approved"), ack)
}

// RejectRequest handles POST /api/v1/admin/requests/{requestID}/reject
// The body {"reason": "..."} is optional.
func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &body, true); err != nil {
		writeInvalidJSON(w, r, err)
		return
	}
	ack, err := h.adminFor(r).Reject(r.Context(), urlParam(r, "requestID"), body.Reason)
	if err != nil {
		h.writeError(w, r, err, "Failed to reject request")
		return
	}
	writeMutation(w, http.StatusOK, ackMessage(ack, "Request rejected"), ack)
}

func ackMessage(ack *analytics.Ack, fallback string) string {
	if ack != nil && ack.Message != "" {
		return ack.Message
	}
	return fallback
}
