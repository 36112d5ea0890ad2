package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/p2sg/wiseinvestor/internal/validation"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

const problemBaseURI = "https://wiseinvestor.app/errors/"

// Problem represents an RFC 7807 Problem Details response.
type Problem struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// problemTypes maps HTTP status codes to RFC 7807 type URIs and titles.
var problemTypes = map[int]struct {
	typeURI string
	title   string
}{
	http.StatusBadRequest: {
		typeURI: problemBaseURI + "bad-request",
		title:   "Bad Request",
	},
	http.StatusForbidden: {
		typeURI: problemBaseURI + "forbidden",
		title:   "Forbidden",
	},
	http.StatusNotFound: {
		typeURI: problemBaseURI + "not-found",
		title:   "Not Found",
	},
	http.StatusConflict: {
		typeURI: problemBaseURI + "conflict",
		title:   "Conflict",
	},
	http.StatusUnprocessableEntity: {
		typeURI: problemBaseURI + "validation-error",
		title:   "Validation Error",
	},
	http.StatusInternalServerError: {
		typeURI: problemBaseURI + "internal-error",
		title:   "Internal Server Error",
	},
	http.StatusBadGateway: {
		typeURI: problemBaseURI + "upstream-error",
		title:   "Bad Gateway",
	},
}

func problemFor(r *http.Request, status int, detail string) Problem {
	pt, ok := problemTypes[status]
	if !ok {
		pt.typeURI = problemBaseURI + "unknown"
		pt.title = http.StatusText(status)
	}
	return Problem{
		Type:     pt.typeURI,
		Title:    pt.title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
	}
}

func writeProblemBody(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode problem response", "component", "api", "error", err)
	}
}

// WriteProblem writes an RFC 7807 Problem Details response.
func WriteProblem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	writeProblemBody(w, status, problemFor(r, status, detail))
}

// ProblemWithErrors extends Problem with validation error details.
type ProblemWithErrors struct {
	Problem
	Errors []validation.ValidationError `json:"errors,omitempty"`
}

// WriteProblemWithErrors writes a 422 Problem Details response with field errors.
func WriteProblemWithErrors(w http.ResponseWriter, r *http.Request, detail string, errs []validation.ValidationError) {
	writeProblemBody(w, http.StatusUnprocessableEntity, ProblemWithErrors{
		Problem: problemFor(r, http.StatusUnprocessableEntity, detail),
		Errors:  errs,
	})
}

// ProblemWithRetry extends Problem with a link that repeats the failed request.
type ProblemWithRetry struct {
	Problem
	Retry string `json:"retry"`
}

// WriteProblemWithRetry writes a 502 response whose retry link re-issues the
// same request, so a client can offer a Retry action for a failed dashboard.
func WriteProblemWithRetry(w http.ResponseWriter, r *http.Request, detail string) {
	writeProblemBody(w, http.StatusBadGateway, ProblemWithRetry{
		Problem: problemFor(r, http.StatusBadGateway, detail),
		Retry:   r.URL.RequestURI(),
	})
}

// MapUpstreamError converts an analytics API failure to Problem Details.
// The server's message is passed through when it sent one; otherwise
// fallback is used. Unauthorized errors must be handled before calling this.
func MapUpstreamError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var apiErr *analytics.APIError
	if !errors.As(err, &apiErr) {
		// Transport failures never expose internal details.
		WriteProblem(w, r, http.StatusBadGateway, fallback)
		return
	}

	switch {
	case errors.Is(err, analytics.ErrNotFound):
		WriteProblem(w, r, http.StatusNotFound, analytics.UserMessage(err, "Resource not found"))
	case errors.Is(err, analytics.ErrForbidden):
		WriteProblem(w, r, http.StatusForbidden, analytics.UserMessage(err, "You do not have access to this resource"))
	case apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		WriteProblem(w, r, apiErr.StatusCode, analytics.UserMessage(err, fallback))
	default:
		WriteProblem(w, r, http.StatusBadGateway, analytics.UserMessage(err, fallback))
	}
}
