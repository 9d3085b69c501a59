package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/starford/propdesk/internal/crmservice"
	"github.com/starford/propdesk/internal/leadcsv"
	"github.com/starford/propdesk/internal/models"
	"github.com/starford/propdesk/internal/report"
	"github.com/starford/propdesk/internal/testutil"
)

// testEnv sets up an empty store, in-memory index, service and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*crmservice.Service, http.Handler) {
	t.Helper()
	return testEnvWithSSE(t, authToken != "", authToken, nil)
}

func testEnvWithSSE(t *testing.T, authEnabled bool, token string, sseHandler http.Handler) (*crmservice.Service, http.Handler) {
	t.Helper()
	svc := testutil.TestService(t, "id")
	return svc, NewRouter(svc, authEnabled, token, sseHandler)
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

var validLead = map[string]any{
	"name":          "Priya Sharma",
	"email":         "priya@example.com",
	"phone":         "+91 9876543210",
	"location":      "Gurgaon",
	"budget":        5000000,
	"source":        "website",
	"property_type": "apartment",
}

func createLead(t *testing.T, router http.Handler) models.Lead {
	t.Helper()
	w := do(t, router, http.MethodPost, "/leads", validLead)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var l models.Lead
	_ = json.Unmarshal(w.Body.Bytes(), &l)
	return l
}

func TestCreateAndGetLead(t *testing.T) {
	_, router := testEnv(t, "")
	created := createLead(t, router)
	if created.ID == "" || created.Status != models.StatusNew {
		t.Fatalf("unexpected lead: %+v", created)
	}

	w := do(t, router, http.MethodGet, "/leads/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Lead
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Name != "Priya Sharma" || got.Budget != 5000000 {
		t.Errorf("got %+v", got)
	}
}

func TestCreateLeadValidation(t *testing.T) {
	_, router := testEnv(t, "")
	cases := map[string]map[string]any{
		"missing name":   {"email": "a@b.co", "phone": "1", "location": "x"},
		"bad email":      {"name": "A", "email": "nope", "phone": "1", "location": "x"},
		"negative":       {"name": "A", "email": "a@b.co", "phone": "1", "location": "x", "budget": -1},
		"unknown status": {"name": "A", "email": "a@b.co", "phone": "1", "location": "x", "status": "archived"},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if w := do(t, router, http.MethodPost, "/leads", body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/leads", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad json status = %d", w.Code)
	}
}

func TestListLeadsFilter(t *testing.T) {
	_, router := testEnv(t, "")
	createLead(t, router)
	other := map[string]any{"name": "Rajesh Kumar", "email": "rajesh@example.com", "phone": "2", "location": "Noida", "status": "closed"}
	if w := do(t, router, http.MethodPost, "/leads", other); w.Code != http.StatusCreated {
		t.Fatalf("create = %d", w.Code)
	}

	var resp LeadListResponse
	w := do(t, router, http.MethodGet, "/leads?status=closed", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Leads[0].Name != "Rajesh Kumar" {
		t.Errorf("status filter: %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/leads?search=PRIYA", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Leads[0].Name != "Priya Sharma" {
		t.Errorf("search filter: %+v", resp)
	}

	w = do(t, router, http.MethodGet, "/leads?status=all", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("all: total = %d", resp.Total)
	}
}

func TestUpdateLead(t *testing.T) {
	_, router := testEnv(t, "")
	created := createLead(t, router)

	w := do(t, router, http.MethodPatch, "/leads/"+created.ID, map[string]any{"status": "contacted", "notes": "called"})
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}
	var got models.Lead
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Status != models.StatusContacted || got.Notes != "called" || got.Name != "Priya Sharma" {
		t.Errorf("merge failed: %+v", got)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Error("updated_at should be after created_at")
	}

	if w := do(t, router, http.MethodPatch, "/leads/"+created.ID, map[string]any{"name": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("blank name status = %d, want 400", w.Code)
	}
}

func TestUnknownLeadIs404(t *testing.T) {
	_, router := testEnv(t, "")
	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/leads/nope", nil},
		{http.MethodPatch, "/leads/nope", map[string]any{"notes": "x"}},
		{http.MethodDelete, "/leads/nope", nil},
		{http.MethodPost, "/leads/nope/communications", map[string]any{"type": "call", "message": "hi"}},
		{http.MethodPost, "/leads/nope/messages", map[string]any{"channel": "sms", "message": "hi"}},
		{http.MethodDelete, "/agents/nope", nil},
		{http.MethodGet, "/properties/nope", nil},
	} {
		if w := do(t, router, tc.method, tc.path, tc.body); w.Code != http.StatusNotFound {
			t.Errorf("%s %s = %d, want 404", tc.method, tc.path, w.Code)
		}
	}
}

func TestDeleteLead(t *testing.T) {
	_, router := testEnv(t, "")
	created := createLead(t, router)
	if w := do(t, router, http.MethodDelete, "/leads/"+created.ID, nil); w.Code != http.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w := do(t, router, http.MethodGet, "/leads/"+created.ID, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
}

func TestCommunicationsAndMessages(t *testing.T) {
	_, router := testEnv(t, "")
	created := createLead(t, router)

	w := do(t, router, http.MethodPost, "/leads/"+created.ID+"/communications",
		map[string]any{"type": "call", "message": "Discussed site visit", "direction": "inbound"})
	if w.Code != http.StatusCreated {
		t.Fatalf("log = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPost, "/leads/"+created.ID+"/messages",
		map[string]any{"channel": "whatsapp", "message": "Sharing the brochure"})
	if w.Code != http.StatusCreated {
		t.Fatalf("send = %d, body = %s", w.Code, w.Body.String())
	}

	w = do(t, router, http.MethodPost, "/leads/"+created.ID+"/messages",
		map[string]any{"channel": "call", "message": "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("send on call = %d, want 400", w.Code)
	}

	var got models.Lead
	w = do(t, router, http.MethodGet, "/leads/"+created.ID, nil)
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.CommunicationHistory) != 2 {
		t.Fatalf("history len = %d", len(got.CommunicationHistory))
	}
	last := got.CommunicationHistory[1]
	if last.Message != "Sharing the brochure" || last.Direction != models.DirectionOutbound {
		t.Errorf("last = %+v", last)
	}
}

func TestMessageTemplatesAndRecentCommunications(t *testing.T) {
	_, router := testEnv(t, "")

	var tpl TemplatesResponse
	w := do(t, router, http.MethodGet, "/messages/templates", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &tpl)
	if w.Code != http.StatusOK || len(tpl.Templates) != 6 || tpl.Templates[0].Title != "Welcome Message" {
		t.Errorf("templates = %d %+v", w.Code, tpl)
	}

	var recent RecentCommunicationsResponse
	w = do(t, router, http.MethodGet, "/communications/recent", nil)
	if w.Code != http.StatusOK || strings.TrimSpace(w.Body.String()) != `{"leads":[]}` {
		t.Errorf("empty recent = %d %s", w.Code, w.Body.String())
	}

	created := createLead(t, router)
	for _, m := range []string{"first", "second", "third"} {
		do(t, router, http.MethodPost, "/leads/"+created.ID+"/communications",
			map[string]any{"type": "email", "message": m, "direction": "outbound"})
	}
	w = do(t, router, http.MethodGet, "/communications/recent", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &recent)
	if len(recent.Leads) != 1 {
		t.Fatalf("recent = %+v", recent)
	}
	got := recent.Leads[0]
	if got.MessageCount != 3 || len(got.Latest) != 2 || got.Latest[1].Message != "third" {
		t.Errorf("recent lead = %+v", got)
	}
}

func TestExportLeads(t *testing.T) {
	_, router := testEnv(t, "")
	createLead(t, router)

	w := do(t, router, http.MethodGet, "/leads/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, `filename="leads_`) {
		t.Errorf("content disposition = %q", cd)
	}
	lines := strings.Split(w.Body.String(), "\n")
	if len(lines) != 2 || lines[0] != strings.Join(leadcsv.Header, ",") {
		t.Errorf("body = %q", w.Body.String())
	}
	if !strings.HasPrefix(lines[1], `"Priya Sharma","priya@example.com"`) {
		t.Errorf("row = %q", lines[1])
	}
}

func uploadFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = io.Copy(part, bytes.NewReader(content))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/leads/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportLeads(t *testing.T) {
	svc, router := testEnv(t, "")

	w := uploadFile(t, router, "leads.csv", []byte("Name,Email,Status\nA,a@example.com,new\n,missing@example.com,new\n"))
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	var sum leadcsv.Summary
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	if sum.Imported != 1 || sum.Skipped != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if n := len(svc.ListLeads(context.Background(), report.Filter{})); n != 1 {
		t.Errorf("leads = %d", n)
	}
}

func TestImportLeadsSkipsNonFiniteBudget(t *testing.T) {
	_, router := testEnv(t, "")

	w := uploadFile(t, router, "leads.csv", []byte("Name,Budget\nEvil,NaN\nInfy,+Inf\nOk,100\n"))
	var sum leadcsv.Summary
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	if sum.Imported != 1 || sum.Skipped != 2 {
		t.Errorf("summary = %+v", sum)
	}

	for _, path := range []string{"/leads", "/stats"} {
		w := do(t, router, http.MethodGet, path, nil)
		if w.Code != http.StatusOK || w.Body.Len() == 0 {
			t.Errorf("%s = %d, body %q", path, w.Code, w.Body.String())
		}
	}
}

func TestWriteJSONUnencodableIs500(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusOK, map[string]float64{"budget": math.Inf(1)})
	if w.Code != http.StatusInternalServerError || !strings.Contains(w.Body.String(), "internal error") {
		t.Errorf("writeJSON = %d %q", w.Code, w.Body.String())
	}
}

func TestImportLeads_Rejects(t *testing.T) {
	_, router := testEnv(t, "")
	if w := uploadFile(t, router, "leads.txt", []byte("Name\nA\n")); w.Code != http.StatusBadRequest {
		t.Errorf("non-csv = %d", w.Code)
	}
	if w := uploadFile(t, router, "leads.csv", []byte("Email\nx@y.z\n")); w.Code != http.StatusBadRequest {
		t.Errorf("no name column = %d", w.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/leads/import", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing file = %d", w.Code)
	}
}

func TestBoardStatsAnalytics(t *testing.T) {
	_, router := testEnv(t, "")
	createLead(t, router)

	var board BoardResponse
	w := do(t, router, http.MethodGet, "/leads/board", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &board)
	if len(board.Columns) != 5 || len(board.Columns[0].Leads) != 1 {
		t.Errorf("board = %+v", board)
	}

	var stats StatsResponse
	w = do(t, router, http.MethodGet, "/stats", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &stats)
	if stats.TotalLeads != 1 || stats.NewLeads != 1 || len(stats.RecentLeads) != 1 {
		t.Errorf("stats = %+v", stats)
	}

	if w := do(t, router, http.MethodGet, "/analytics", nil); w.Code != http.StatusOK {
		t.Errorf("analytics = %d", w.Code)
	}
}

func TestSearch(t *testing.T) {
	_, router := testEnv(t, "")
	createLead(t, router)

	var resp SearchResponse
	w := do(t, router, http.MethodGet, "/search?q=Gurgaon", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d", w.Code)
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Errorf("results = %+v", resp.Results)
	}
}

func TestSearchMissingQuery(t *testing.T) {
	_, router := testEnv(t, "")
	if w := do(t, router, http.MethodGet, "/search", nil); w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAgentsAndProperties(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodPost, "/agents", map[string]any{"name": "Amit", "email": "amit@example.com", "phone": "1"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create agent = %d, body = %s", w.Code, w.Body.String())
	}
	var a models.Agent
	_ = json.Unmarshal(w.Body.Bytes(), &a)
	if !a.IsActive || a.Role != models.RoleAgent {
		t.Errorf("agent defaults: %+v", a)
	}
	w = do(t, router, http.MethodPatch, "/agents/"+a.ID, map[string]any{"conversions": 3})
	if w.Code != http.StatusOK {
		t.Fatalf("update agent = %d", w.Code)
	}

	w = do(t, router, http.MethodPost, "/properties", map[string]any{
		"title": "Villa", "type": "villa", "location": "Goa", "price": 1, "area": 2,
		"features": []string{"Pool", "Pool", "Garden"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create property = %d, body = %s", w.Code, w.Body.String())
	}
	var p models.Property
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if len(p.Features) != 2 {
		t.Errorf("features not deduplicated: %v", p.Features)
	}
	if w := do(t, router, http.MethodDelete, "/properties/"+p.ID, nil); w.Code != http.StatusNoContent {
		t.Errorf("delete property = %d", w.Code)
	}

	var agents []models.Agent
	w = do(t, router, http.MethodGet, "/agents", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &agents)
	if len(agents) != 1 || agents[0].Conversions != 3 {
		t.Errorf("agents = %+v", agents)
	}
}

func TestSessionAndPreferences(t *testing.T) {
	_, router := testEnv(t, "")

	if w := do(t, router, http.MethodGet, "/session", nil); w.Code != http.StatusNotFound {
		t.Errorf("signed out session = %d", w.Code)
	}
	w := do(t, router, http.MethodPut, "/session", map[string]any{"id": "1", "name": "John Doe", "email": "admin@realestate.com", "role": "admin"})
	if w.Code != http.StatusOK {
		t.Fatalf("sign in = %d, body = %s", w.Code, w.Body.String())
	}
	if w := do(t, router, http.MethodGet, "/session", nil); w.Code != http.StatusOK {
		t.Errorf("session = %d", w.Code)
	}
	if w := do(t, router, http.MethodPost, "/session/logout", nil); w.Code != http.StatusNoContent {
		t.Errorf("logout = %d", w.Code)
	}

	var prefs models.Preferences
	w = do(t, router, http.MethodPut, "/preferences", map[string]any{"language": "hi"})
	_ = json.Unmarshal(w.Body.Bytes(), &prefs)
	if prefs.Language != models.LanguageHindi || !prefs.Notifications {
		t.Errorf("prefs = %+v", prefs)
	}
	if w := do(t, router, http.MethodPut, "/preferences", map[string]any{"language": "fr"}); w.Code != http.StatusBadRequest {
		t.Errorf("bad language = %d", w.Code)
	}
}

func TestAuthMiddleware_Token(t *testing.T) {
	_, router := testEnv(t, "secret")

	if w := do(t, router, http.MethodGet, "/leads", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/leads", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnvWithSSE(t, false, "ignored", nil)
	if w := do(t, router, http.MethodGet, "/leads", nil); w.Code != http.StatusOK {
		t.Errorf("disabled auth = %d, want 200", w.Code)
	}
}

// Minimal SSE handler stub: writes headers and blocks until context done.
var sseStub = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	<-r.Context().Done()
})

func TestSSEEvents_AuthProtected(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", sseStub)
	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE without token = %d, want 401", w.Code)
	}
}

func TestSSEEvents_ValidToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", sseStub)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	req.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with valid token should not 401")
	}
}

func TestSSEEvents_QueryToken(t *testing.T) {
	_, router := testEnvWithSSE(t, true, "tok", sseStub)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events?access_token=tok", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code == http.StatusUnauthorized {
		t.Error("SSE with query token should not 401")
	}
}

func TestAuthMiddleware_QueryTokenOnlyForGET(t *testing.T) {
	_, router := testEnv(t, "secret")
	req := httptest.NewRequest(http.MethodPost, "/leads?access_token=secret", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("POST with query token = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") == "" {
		t.Error("missing WWW-Authenticate header")
	}
}
