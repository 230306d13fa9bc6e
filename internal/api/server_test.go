package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"igc_parser/internal/flight"
	"igc_parser/internal/storage"
)

const testLog = `AXXX123-ABC
HFDTE160701
HFPLTPILOT:Jane Doe
C150701213841160701000102 500K Tri
C4600000N00600000EStart
C4601000N00600000EGoal
B1000004600000N00600000EA0050000500
B1001004600500N00600000EA0051000510
B1002004601000N00600000EA0052000520
E100100PEV
`

func newTestServer(t *testing.T, cfg Config) (*FlightServer, http.Handler) {
	t.Helper()
	db, err := storage.OpenSQLite(filepath.Join(t.TempDir(), "flights.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	cfg.Parse = flight.DefaultOptions()
	s := NewFlightServer(db, cfg)
	return s, s.Router()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler) string {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/flights", testLog)
	if rec.Code != http.StatusCreated {
		t.Fatalf("upload status = %d, body %s", rec.Code, rec.Body)
	}
	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	if resp.Fixes != 3 {
		t.Errorf("uploaded fixes = %d, want 3", resp.Fixes)
	}
	return resp.ID
}

func TestHealthEndpoint(t *testing.T) {
	_, h := newTestServer(t, Config{})

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", resp["status"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	_, h := newTestServer(t, Config{
		AuthEnabled: true,
		APIKeys:     []string{"test-key-123", "another-key"},
	})

	tests := []struct {
		name       string
		apiKey     string
		keyHeader  string
		wantStatus int
	}{
		{name: "no key", wantStatus: http.StatusUnauthorized},
		{name: "invalid key", apiKey: "wrong-key", keyHeader: "X-API-Key", wantStatus: http.StatusForbidden},
		{name: "valid key via X-API-Key", apiKey: "test-key-123", keyHeader: "X-API-Key", wantStatus: http.StatusOK},
		{name: "valid key via Bearer", apiKey: "another-key", keyHeader: "Authorization", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/flights", nil)
			if tt.apiKey != "" {
				if tt.keyHeader == "Authorization" {
					req.Header.Set("Authorization", "Bearer "+tt.apiKey)
				} else {
					req.Header.Set(tt.keyHeader, tt.apiKey)
				}
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}

	// Health stays open.
	if rec := do(t, h, http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("health with auth enabled = %d", rec.Code)
	}
}

func TestUploadAndRead(t *testing.T) {
	_, h := newTestServer(t, Config{})
	id := upload(t, h)

	rec := do(t, h, http.MethodGet, "/flights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var list []FlightSummary
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].ID != id || list[0].Pilot != "Jane Doe" || list[0].Date != "2001-07-16" {
		t.Errorf("list = %+v", list)
	}

	rec = do(t, h, http.MethodGet, "/flights?pilot=Nobody", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("filtered list = %s", rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/flights/"+id, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get status = %d, body %s", rec.Code, rec.Body)
	}
	var full struct {
		Fixes  []json.RawMessage `json:"fixes"`
		Events []json.RawMessage `json:"events"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&full); err != nil {
		t.Fatal(err)
	}
	if len(full.Fixes) != 3 || len(full.Events) != 1 {
		t.Errorf("flight has %d fixes and %d events", len(full.Fixes), len(full.Events))
	}

	rec = do(t, h, http.MethodGet, "/flights/"+id+"/metadata", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"manufacturer_id":"XXX"`) {
		t.Errorf("metadata = %d %s", rec.Code, rec.Body)
	}

	rec = do(t, h, http.MethodGet, "/flights/"+id+"/turnpoints?radius=100", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("turnpoints status = %d, body %s", rec.Code, rec.Body)
	}
	var tv struct {
		Validated int  `json:"validated"`
		Complete  bool `json:"complete"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&tv); err != nil {
		t.Fatal(err)
	}
	if tv.Validated != 2 || !tv.Complete {
		t.Errorf("turnpoints = %+v", tv)
	}

	rec = do(t, h, http.MethodGet, "/flights/"+id+"/geojson", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"LineString"`) {
		t.Errorf("geojson = %d %s", rec.Code, rec.Body)
	}
	rec = do(t, h, http.MethodGet, "/flights/"+id+"/kml", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "<LineString>") {
		t.Errorf("kml = %d", rec.Code)
	}

	rec = do(t, h, http.MethodGet, "/stats", "")
	var stats map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats["flights"] != float64(1) || stats["fixes"] != float64(3) {
		t.Errorf("stats = %v", stats)
	}
}

func TestUploadIsIdempotent(t *testing.T) {
	_, h := newTestServer(t, Config{})
	first := upload(t, h)
	second := upload(t, h)
	if first != second {
		t.Errorf("same log got IDs %s and %s", first, second)
	}
	rec := do(t, h, http.MethodGet, "/flights", "")
	var list []FlightSummary
	_ = json.NewDecoder(rec.Body).Decode(&list)
	if len(list) != 1 {
		t.Errorf("got %d flights after re-upload, want 1", len(list))
	}
}

func TestErrors(t *testing.T) {
	_, h := newTestServer(t, Config{})

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{"bad id", http.MethodGet, "/flights/not-a-uuid", "", http.StatusBadRequest},
		{"unknown id", http.MethodGet, "/flights/" + uuid.NewString(), "", http.StatusNotFound},
		{"bad date", http.MethodGet, "/flights?from=16/07/2001", "", http.StatusBadRequest},
		{"bad limit", http.MethodGet, "/flights?limit=-1", "", http.StatusBadRequest},
		{"limit too high", http.MethodGet, "/flights?limit=5000", "", http.StatusBadRequest},
		{"duplicate A", http.MethodPost, "/flights", "AXXX123\nAXXX456\n", http.StatusUnprocessableEntity},
		{"empty log", http.MethodPost, "/flights", "\n\n", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.target, tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.wantStatus, rec.Code, rec.Body)
			}
		})
	}
}
