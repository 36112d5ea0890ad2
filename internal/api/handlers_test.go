package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/p2sg/wiseinvestor/internal/charts"
	"github.com/p2sg/wiseinvestor/internal/metrics"
	"github.com/p2sg/wiseinvestor/pkg/analytics"
)

// --- Fake analytics API ---

type upstreamCall struct {
	Method string
	Path   string
	Body   string
	Auth   string
}

// fakeUpstream serves canned JSON per path. Paths without a canned response
// answer 200 with an empty object. Requests whose token is not goodToken get 401.
type fakeUpstream struct {
	mu        sync.Mutex
	responses map[string]string
	statuses  map[string]int
	headers   map[string]http.Header
	calls     []upstreamCall
}

const goodToken = "good-token"

func newFakeUpstream() *fakeUpstream {
	return &fakeUpstream{
		responses: map[string]string{},
		statuses:  map[string]int{},
		headers:   map[string]http.Header{},
	}
}

func (f *fakeUpstream) set(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses[path] = status
	f.responses[path] = body
}

func (f *fakeUpstream) lastCall(t *testing.T) upstreamCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("upstream received no requests")
	}
	return f.calls[len(f.calls)-1]
}

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	f.mu.Lock()
	f.calls = append(f.calls, upstreamCall{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   string(body),
		Auth:   r.Header.Get("Authorization"),
	})
	status, ok := f.statuses[r.URL.Path]
	resp := f.responses[r.URL.Path]
	hdr := f.headers[r.URL.Path]
	f.mu.Unlock()

	if r.Header.Get("Authorization") != "Bearer "+goodToken {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"detail":"Invalid token"}`)
		return
	}
	if !ok {
		status, resp = http.StatusOK, `{}`
	}
	for k, v := range hdr {
		w.Header()[k] = v
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	io.WriteString(w, resp)
}

// newTestServer wires the full router to a fake upstream.
func newTestServer(t *testing.T, up *fakeUpstream) http.Handler {
	t.Helper()
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	client, err := analytics.New(analytics.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("analytics.New() error = %v", err)
	}
	h := NewHandler(client, Options{
		Version:      "1.2.3",
		LoginPath:    "/login",
		Concurrency:  4,
		Placeholders: true,
	})
	return NewRouter(h)
}

func do(t *testing.T, router http.Handler, method, target, body string, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return v
}

func overviewUpstream() *fakeUpstream {
	up := newFakeUpstream()
	up.set("/api/v1/analytics/executive-dashboard/org-1", 200,
		`{"total_revenue":500000,"revenue_growth":10,"total_donors":200,"active_donors":150,"retention_rate":80}`)
	up.set("/api/v1/analytics/okrs/org-1", 200,
		`{"okrs":[{"id":"1","objective":"Grow","progress":60,"status":"on_track"},{"id":"2","objective":"Keep","progress":40,"status":"at_risk"}]}`)
	up.set("/api/v1/organizations/org-1/mission-vision", 200,
		`{"mission":"X","vision":"Y"}`)
	up.set("/api/v1/predictive/org-1/momentum", 200, `{"momentum_score":72}`)
	return up
}

// --- Health ---

func TestHealth_NoTokenRequired(t *testing.T) {
	router := newTestServer(t, newFakeUpstream())

	w := do(t, router, http.MethodGet, "/api/v1/health", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decode[map[string]any](t, w)
	if resp["status"] != "healthy" || resp["version"] != "1.2.3" {
		t.Errorf("health = %v", resp)
	}
	if up, _ := resp["upstream"].(string); !strings.HasPrefix(up, "http://127.0.0.1") {
		t.Errorf("upstream = %v", resp["upstream"])
	}
}

// --- Dashboard ---

func TestDashboard_Overview(t *testing.T) {
	up := overviewUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/overview?period=ytd", "", goodToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	type overviewResponse struct {
		Tab   string `json:"tab"`
		Model struct {
			OrgID         string                   `json:"org_id"`
			MissionVision *analytics.MissionVision `json:"mission_vision"`
		} `json:"model"`
		Scores *metrics.Scores            `json:"scores"`
		Charts map[string]json.RawMessage `json:"charts"`
	}
	resp := decode[overviewResponse](t, w)

	if resp.Tab != "overview" || resp.Model.OrgID != "org-1" {
		t.Errorf("tab/org = %q/%q", resp.Tab, resp.Model.OrgID)
	}
	if resp.Model.MissionVision == nil || resp.Model.MissionVision.Mission != "X" {
		t.Errorf("mission_vision = %+v", resp.Model.MissionVision)
	}
	if resp.Scores == nil {
		t.Fatal("scores missing")
	}
	if resp.Scores.Vision != 50 || resp.Scores.Strategy != 50 || resp.Scores.Engagement != 75 {
		t.Errorf("scores = %+v", resp.Scores)
	}
	if _, ok := resp.Charts[charts.NameHealthGauge]; !ok {
		t.Errorf("charts = %v, want health-gauge", keys(resp.Charts))
	}

	// One call per overview endpoint, each carrying the caller's token.
	if up.callCount() != 13 {
		t.Errorf("upstream calls = %d, want 13", up.callCount())
	}
	if c := up.lastCall(t); c.Auth != "Bearer "+goodToken {
		t.Errorf("Authorization = %q", c.Auth)
	}
}

func keys(m map[string]json.RawMessage) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestDashboard_MissingTokenRedirectsToLogin(t *testing.T) {
	up := overviewUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/overview", "", "")

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("status = %d, Location = %q; want 302 /login", w.Code, w.Header().Get("Location"))
	}
	if up.callCount() != 0 {
		t.Errorf("upstream calls = %d, want 0", up.callCount())
	}
}

func TestDashboard_UpstreamUnauthorizedRedirectsWithoutData(t *testing.T) {
	// Given: the upstream rejects the caller's token
	router := newTestServer(t, overviewUpstream())

	// When: any tab is requested
	for _, tab := range []string{"overview", "financial", "strategy"} {
		w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/"+tab, "", "expired-token")

		// Then: the caller is redirected and no view-model is written
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Errorf("%s: status = %d, Location = %q", tab, w.Code, w.Header().Get("Location"))
		}
		if strings.Contains(w.Body.String(), "model") {
			t.Errorf("%s: body leaked data: %s", tab, w.Body.String())
		}
	}
}

func TestDashboard_FailureOffersRetryThatReinvokesAggregation(t *testing.T) {
	// Given: one overview endpoint is failing
	up := overviewUpstream()
	up.set("/api/v1/predictive/org-1/churn-risk", http.StatusInternalServerError, `{"detail":"model offline"}`)
	router := newTestServer(t, up)

	// When: the overview is requested
	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/overview?year=2024", "", goodToken)

	// Then: an error state with a retry link to the same aggregation
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
	p := decode[ProblemWithRetry](t, w)
	if p.Retry != "/api/v1/orgs/org-1/dashboard/overview?year=2024" {
		t.Errorf("retry = %q", p.Retry)
	}
	if p.Detail != "Failed to load dashboard data" {
		t.Errorf("detail = %q", p.Detail)
	}

	// When: the endpoint recovers and the retry link is followed
	up.set("/api/v1/predictive/org-1/churn-risk", http.StatusOK, `{"high_risk":3}`)
	w = do(t, router, http.MethodGet, p.Retry, "", goodToken)

	// Then: the same tab loads
	if w.Code != http.StatusOK {
		t.Fatalf("retry status = %d, body = %s", w.Code, w.Body.String())
	}
	if resp := decode[map[string]any](t, w); resp["tab"] != "overview" {
		t.Errorf("retry tab = %v", resp["tab"])
	}
}

func TestDashboard_FinancialToleratesPartialFailure(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/v1/financial/org-1/cashflow-grid", http.StatusInternalServerError, `{}`)
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/financial", "", goodToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Model struct {
			Missing []string `json:"missing"`
		} `json:"model"`
		Charts map[string]json.RawMessage `json:"charts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Model.Missing) != 1 || resp.Model.Missing[0] != "cashflow-grid" {
		t.Errorf("missing = %v, want [cashflow-grid]", resp.Model.Missing)
	}
	if len(resp.Charts) != 4 {
		t.Errorf("charts = %v, want 4", keys(resp.Charts))
	}
}

func TestDashboard_UnknownTab(t *testing.T) {
	router := newTestServer(t, newFakeUpstream())

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/donors", "", goodToken)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDashboard_InvalidParams(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/dashboard/overview?period=decade&year=abc", "", goodToken)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	p := decode[ProblemWithErrors](t, w)
	if len(p.Errors) != 1 || p.Errors[0].Field != "year" {
		t.Errorf("errors = %+v", p.Errors)
	}
	if up.callCount() != 0 {
		t.Errorf("upstream calls = %d, want 0", up.callCount())
	}
}

// --- Mission / vision ---

func TestMissionVision_RenderedVerbatim(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/v1/organizations/org-1/mission-vision", 200, `{"mission":"X","vision":"Y"}`)
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/mission-vision", "", goodToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != `{"mission":"X","vision":"Y"}` {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMissionVision_EmptyIsNotFound(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/v1/organizations/org-1/mission-vision", 200, ``)
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/mission-vision", "", goodToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// --- What-if ---

func TestWhatIf_WithBase(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/what-if?traffic=10&base=1000", "", goodToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Projections []metrics.Projection `json:"projections"`
		Chart       json.RawMessage      `json:"chart"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Projections) != 4 || resp.Projections[0].Years != 1 {
		t.Fatalf("projections = %+v", resp.Projections)
	}
	if got := resp.Projections[0].Revenue; got < 1099.999 || got > 1100.001 {
		t.Errorf("1-year revenue = %v, want 1100", got)
	}
	if up.callCount() != 0 {
		t.Errorf("base given, upstream calls = %d, want 0", up.callCount())
	}
}

func TestWhatIf_BaseFromExecutiveDashboard(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/v1/analytics/executive-dashboard/org-1", 200, `{"total_revenue":2000}`)
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/what-if", "", goodToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Projections []metrics.Projection `json:"projections"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	for _, p := range resp.Projections {
		if p.Revenue != 2000 {
			t.Errorf("zero adjustments: %d-year revenue = %v, want 2000", p.Years, p.Revenue)
		}
	}
}

func TestWhatIf_OutOfRange(t *testing.T) {
	router := newTestServer(t, newFakeUpstream())

	for _, q := range []string{"traffic=150&base=1", "gift_size=-1&base=1", "conversion=NaN&base=1"} {
		w := do(t, router, http.MethodGet, "/api/v1/orgs/org-1/what-if?"+q, "", goodToken)
		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("%s: status = %d, want 422", q, w.Code)
		}
	}
}

// --- Mutations ---

func TestCreateEvent_ForwardedUnmodified(t *testing.T) {
	// Given: an event dated in the past with no capacity
	up := newFakeUpstream()
	up.set("/api/v1/events/org-1", 200, `{"id":"ev-1","name":"Gala","start_date":"2020-01-15"}`)
	router := newTestServer(t, up)

	// When: it is created through the BFF
	w := do(t, router, http.MethodPost, "/api/v1/orgs/org-1/events",
		`{"name":"Gala","start_date":"2020-01-15"}`, goodToken)

	// Then: it reaches the API as entered and the caller gets the success envelope
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	call := up.lastCall(t)
	if call.Method != http.MethodPost || call.Body != `{"name":"Gala","start_date":"2020-01-15"}` {
		t.Errorf("upstream call = %+v", call)
	}
	resp := decode[map[string]any](t, w)
	if resp["ok"] != true || resp["message"] != "Event created successfully" {
		t.Errorf("response = %v", resp)
	}
}

func TestMutations_PayloadBytesReachUpstreamAsSent(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	tests := []struct {
		name   string
		method string
		target string
		body   string
	}{
		{"event without name, unmodelled fields", http.MethodPost, "/api/v1/orgs/org-1/events",
			`{"start_date":"2019-03-01","goal_amount":5000,"event_type":"gala"}`},
		{"event update keeps spacing", http.MethodPut, "/api/v1/orgs/org-1/events/ev-1",
			`{ "status" : "cancelled" }`},
		{"ticket without price", http.MethodPost, "/api/v1/events/ev-1/tickets",
			`{"name":"Early bird","perks":["drink"]}`},
		{"registration", http.MethodPost, "/api/v1/events/ev-1/registrations",
			`{"attendee_email":"ada@example.org","dietary":"vegan"}`},
		{"thank-you", http.MethodPost, "/api/v1/orgs/org-1/thank-you",
			`{"donor_id":"d-1","template":"annual"}`},
		{"task", http.MethodPost, "/api/v1/orgs/org-1/tasks",
			`{"title":"Call","tags":["major-gift"]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, router, tt.method, tt.target, tt.body, goodToken)
			if w.Code >= 300 {
				t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
			}
			if got := up.lastCall(t).Body; got != tt.body {
				t.Errorf("upstream body = %s, want %s", got, tt.body)
			}
		})
	}
}

func TestCreateEvent_EmptyBody(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodPost, "/api/v1/orgs/org-1/events", "", goodToken)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if up.callCount() != 0 {
		t.Error("empty body should not reach upstream")
	}
}

func TestCreateEvent_InvalidJSON(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodPost, "/api/v1/orgs/org-1/events", `{"name":`, goodToken)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if up.callCount() != 0 {
		t.Error("invalid JSON should not reach upstream")
	}
}

func TestMutationFailure_UsesServerMessageOrGeneric(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/v1/tickets/tt-1", http.StatusBadRequest, `{"message":"Price must be positive"}`)
	up.set("/api/v1/tasks/org-1", http.StatusInternalServerError, `<html>oops</html>`)
	router := newTestServer(t, up)

	w := do(t, router, http.MethodPut, "/api/v1/tickets/tt-1", `{"name":"VIP","price":-1}`, goodToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("ticket status = %d, want 400", w.Code)
	}
	if p := decode[Problem](t, w); p.Detail != "Price must be positive" {
		t.Errorf("ticket detail = %q", p.Detail)
	}

	w = do(t, router, http.MethodPost, "/api/v1/orgs/org-1/tasks", `{"title":"Call"}`, goodToken)
	if w.Code != http.StatusBadGateway {
		t.Errorf("task status = %d, want 502", w.Code)
	}
	if p := decode[Problem](t, w); p.Detail != "Failed to create task" {
		t.Errorf("task detail = %q", p.Detail)
	}
}

func TestMutation_UpstreamUnauthorizedRedirects(t *testing.T) {
	router := newTestServer(t, newFakeUpstream())

	w := do(t, router, http.MethodDelete, "/api/v1/orgs/org-1/events/ev-1", "", "stale")

	if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
		t.Errorf("status = %d, Location = %q", w.Code, w.Header().Get("Location"))
	}
}

func TestEventSubresourceRoutes(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	tests := []struct {
		method, target, body string
		wantStatus           int
		wantUpstream         string
	}{
		{http.MethodPut, "/api/v1/orgs/org-1/events/ev-1", `{"name":"Renamed"}`, http.StatusOK, "/api/v1/events/org-1/ev-1"},
		{http.MethodPost, "/api/v1/events/ev-1/tickets", `{"name":"GA","price":25}`, http.StatusCreated, "/api/v1/events/ev-1/tickets"},
		{http.MethodDelete, "/api/v1/tickets/tt-1", "", http.StatusOK, "/api/v1/tickets/tt-1"},
		{http.MethodPost, "/api/v1/events/ev-1/registrations", `{"attendee_name":"Ada","attendee_email":"ada@example.org"}`, http.StatusCreated, "/api/v1/events/ev-1/registrations"},
		{http.MethodPost, "/api/v1/registrations/reg-1/check-in", "", http.StatusOK, "/api/v1/registrations/reg-1/check-in"},
		{http.MethodPost, "/api/v1/orgs/org-1/thank-you", `{"donor_id":"d-1"}`, http.StatusOK, "/api/v1/communications/org-1/thank-you"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := do(t, router, tt.method, tt.target, tt.body, goodToken)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body = %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if c := up.lastCall(t); c.Path != tt.wantUpstream || c.Method != tt.method {
				t.Errorf("upstream = %s %s, want %s %s", c.Method, c.Path, tt.method, tt.wantUpstream)
			}
			if resp := decode[map[string]any](t, w); resp["ok"] != true {
				t.Errorf("response = %v", resp)
			}
		})
	}
}

// --- Admin ---

func TestAdminRequests(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/admin/requests/pending", 200,
		`{"requests":[{"id":"r2","requested_at":"2025-01-02T00:00:00Z"},{"id":"r1","requested_at":"2025-01-01T00:00:00Z"}]}`)
	up.set("/api/admin/requests/r1/reject", 200, `{"success":true,"message":"Request rejected and user notified"}`)
	router := newTestServer(t, up)

	w := do(t, router, http.MethodGet, "/api/v1/admin/requests", "", goodToken)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	list := decode[analytics.AdminRequestList](t, w)
	if len(list.Requests) != 2 || list.Requests[0].ID != "r1" {
		t.Errorf("requests = %+v, want oldest first", list.Requests)
	}

	w = do(t, router, http.MethodPost, "/api/v1/admin/requests/r2/approve", "", goodToken)
	if w.Code != http.StatusOK {
		t.Errorf("approve status = %d", w.Code)
	}
	if c := up.lastCall(t); c.Path != "/api/admin/requests/r2/approve" {
		t.Errorf("approve upstream path = %q", c.Path)
	}

	w = do(t, router, http.MethodPost, "/api/v1/admin/requests/r1/reject", `{"reason":"duplicate"}`, goodToken)
	if w.Code != http.StatusOK {
		t.Fatalf("reject status = %d", w.Code)
	}
	if c := up.lastCall(t); c.Body != `{"reason":"duplicate"}` {
		t.Errorf("reject body = %q", c.Body)
	}
	if resp := decode[map[string]any](t, w); resp["message"] != "Request rejected and user notified" {
		t.Errorf("reject message = %v", resp["message"])
	}
}

// --- Export ---

func TestExportReport_StreamsWithUpstreamFilename(t *testing.T) {
	up := newFakeUpstream()
	up.set("/api/v1/reports/org-1/export", 200, "col1,col2\n1,2\n")
	up.headers["/api/v1/reports/org-1/export"] = http.Header{
		"Content-Type":        {"text/csv"},
		"Content-Disposition": {`attachment; filename="donors-2024.csv"`},
	}
	router := newTestServer(t, up)

	w := do(t, router, http.MethodPost, "/api/v1/orgs/org-1/reports/export",
		`{"report_type":"donors","format":"csv","year":2024}`, goodToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename=donors-2024.csv" {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if w.Body.String() != "col1,col2\n1,2\n" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestExportReport_Validation(t *testing.T) {
	up := newFakeUpstream()
	router := newTestServer(t, up)

	w := do(t, router, http.MethodPost, "/api/v1/orgs/org-1/reports/export", `{"report_type":"gossip","format":"doc"}`, goodToken)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if p := decode[ProblemWithErrors](t, w); len(p.Errors) != 2 {
		t.Errorf("errors = %+v", p.Errors)
	}
	if up.callCount() != 0 {
		t.Error("invalid export request should not reach upstream")
	}
}
