package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"challan-service/internal/fixtures"
	"challan-service/internal/ifsc"
	"challan-service/internal/pipeline"
	"challan-service/pkg/errors"
)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *Error          `json:"error"`
	RequestID string          `json:"requestId"`
}

func newTestServer(t *testing.T, config *Config, ifscHandler http.HandlerFunc) *Server {
	t.Helper()

	pipelineConfig := pipeline.DefaultConfig()
	pipelineConfig.Now = func() time.Time { return fixtures.SampleAsOf }
	svc, err := pipeline.NewService(pipelineConfig)
	if err != nil {
		t.Fatalf("Failed to create pipeline: %v", err)
	}

	if ifscHandler == nil {
		ifscHandler = func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) }
	}
	upstream := httptest.NewServer(ifscHandler)
	t.Cleanup(upstream.Close)
	lookup, err := ifsc.NewClient(&ifsc.Config{BaseURL: upstream.URL, Timeout: time.Second})
	if err != nil {
		t.Fatalf("Failed to create IFSC client: %v", err)
	}

	server, err := New(config, svc, lookup)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	return server
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("Invalid JSON response %q: %v", rec.Body.String(), err)
	}
	return env
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("Failed to write field: %v", err)
		}
	}
	for name, data := range files {
		filename := name + ".xlsx"
		switch name {
		case "pf_roster":
			filename = "active_pf.csv"
		case "esi_roster":
			filename = "esi_list.xls"
		}
		part, err := mw.CreateFormFile(name, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	return &body, mw.FormDataContentType()
}

func somanyUpload(t *testing.T, roster []fixtures.Employee) (*bytes.Buffer, string) {
	t.Helper()
	employees := fixtures.SampleEmployees()
	workbook, err := fixtures.SomanyWorkbook(employees)
	if err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}
	return multipartBody(t,
		map[string]string{"company": "somany", "as_of": "2025-07-10"},
		map[string][]byte{
			"payroll":    workbook,
			"pf_roster":  fixtures.PFRosterCSV(roster),
			"esi_roster": fixtures.ESIRosterHTML(roster),
		})
}

func TestHealthz(t *testing.T) {
	server := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("Expected 200 ok, got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected request id header")
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	server := newTestServer(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("Expected request id to be echoed, got %q", rec.Header().Get(RequestIDHeader))
	}
	if env := decode(t, rec); env.RequestID != "abc-123" {
		t.Errorf("Expected request id in envelope, got %q", env.RequestID)
	}
}

func TestProfiles(t *testing.T) {
	server := newTestServer(t, nil, nil)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profiles", nil))

	env := decode(t, rec)
	var profiles []profileView
	if err := json.Unmarshal(env.Data, &profiles); err != nil {
		t.Fatalf("Invalid profiles payload: %v", err)
	}
	if len(profiles) != 2 || profiles[0].Name != "hng" || profiles[1].Name != "somany" {
		t.Fatalf("Expected hng and somany, got %+v", profiles)
	}
	if profiles[0].Layout != "split" || len(profiles[0].Uploads) != 4 {
		t.Errorf("Expected split layout with 4 uploads, got %+v", profiles[0])
	}
}

func TestChallansSomany(t *testing.T) {
	server := newTestServer(t, nil, nil)
	body, contentType := somanyUpload(t, fixtures.SampleEmployees())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/challans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	var view challanView
	if err := json.Unmarshal(env.Data, &view); err != nil {
		t.Fatalf("Invalid challan payload: %v", err)
	}

	if view.Period != "2025-06" || view.Cutoff != "2025-05-31" {
		t.Errorf("Expected period 2025-06 and cutoff 2025-05-31, got %s and %s", view.Period, view.Cutoff)
	}
	if view.Summary == nil || view.Summary.Employees != 5 {
		t.Errorf("Expected 5 employees in summary, got %+v", view.Summary)
	}
	if !strings.HasPrefix(view.Artifacts.PFText, "100100100101#~#RAVI KUMAR#~#17000") {
		t.Errorf("Unexpected PF text: %q", view.Artifacts.PFText)
	}
	workbook, err := base64.StdEncoding.DecodeString(view.Artifacts.ESIWorkbook)
	if err != nil {
		t.Fatalf("Invalid base64 workbook: %v", err)
	}
	if !bytes.HasPrefix(workbook, []byte("PK")) {
		t.Error("Expected xlsx workbook")
	}
	if view.Artifacts.PFFileName != "PF_CHALLAN.txt" || view.Artifacts.ESIFileName != "ESI_CHALLAN.xlsx" {
		t.Errorf("Unexpected file names: %+v", view.Artifacts)
	}
}

func TestChallansRosterMismatch(t *testing.T) {
	server := newTestServer(t, nil, nil)
	body, contentType := somanyUpload(t, fixtures.SampleEmployees()[:4])

	req := httptest.NewRequest(http.MethodPost, "/api/v1/challans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	env := decode(t, rec)
	if env.Success || env.Error == nil {
		t.Fatalf("Expected error envelope, got %+v", env)
	}
	if env.Error.Code != "roster_mismatch" {
		t.Errorf("Expected roster_mismatch, got %s", env.Error.Code)
	}
	if len(env.Error.Offenders) != 1 || env.Error.Offenders[0].Row != 6 {
		t.Errorf("Expected row 6 reported, got %+v", env.Error.Offenders)
	}
	if len(env.Error.Columns) != 2 || env.Error.Columns[1] != "MEMBER_NAME" {
		t.Errorf("Expected UAN and MEMBER_NAME columns, got %v", env.Error.Columns)
	}
}

func TestChallansUnknownCompany(t *testing.T) {
	server := newTestServer(t, nil, nil)
	body, contentType := multipartBody(t, map[string]string{"company": "acme"}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/challans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rec.Code)
	}
	if env := decode(t, rec); env.Error == nil || env.Error.Code != "unknown_profile" {
		t.Errorf("Expected unknown_profile, got %+v", env.Error)
	}
}

func TestChallansBodyLimit(t *testing.T) {
	config := DefaultConfig()
	config.MaxBodyBytes = 64
	server := newTestServer(t, config, nil)
	body, contentType := somanyUpload(t, fixtures.SampleEmployees())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/challans", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized body, got %d", rec.Code)
	}
}

func TestIFSC(t *testing.T) {
	server := newTestServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/SBIN0001234" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"IFSC":"SBIN0001234","BANK":"State Bank of India"}`))
	})

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/api/v1/ifsc/sbin0001234", http.StatusOK, ""},
		{"/api/v1/ifsc/HDFC0000001", http.StatusNotFound, "not_found"},
		{"/api/v1/ifsc/BAD", http.StatusUnprocessableEntity, "invalid_identifier"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.status {
				t.Fatalf("Expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			env := decode(t, rec)
			if tt.code == "" {
				var result ifsc.Result
				if err := json.Unmarshal(env.Data, &result); err != nil {
					t.Fatalf("Invalid result payload: %v", err)
				}
				if result.Message != "IFSC code found for State Bank of India." {
					t.Errorf("Unexpected message: %s", result.Message)
				}
				return
			}
			if env.Error == nil || env.Error.Code != tt.code {
				t.Errorf("Expected %s, got %+v", tt.code, env.Error)
			}
		})
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    *errors.ChallanError
		status int
	}{
		{errors.MissingIdentifier("UAN", "WAGES", nil, nil), http.StatusUnprocessableEntity},
		{errors.SchemaError("WAGES", []string{"uan_no"}), http.StatusUnprocessableEntity},
		{errors.ReconciliationFailure("UANs", "active PF list", nil, nil), http.StatusUnprocessableEntity},
		{errors.ConfigurationError(errors.CodeUnknownProfile, "company", "acme", nil), http.StatusBadRequest},
		{errors.NetworkError(errors.CodeTimeout, "x", "timeout", nil), http.StatusGatewayTimeout},
		{errors.NetworkError(errors.CodeServiceUnavailable, "x", "down", nil), http.StatusBadGateway},
		{errors.Unexpected("run", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if got := StatusFor(tt.err); got != tt.status {
				t.Errorf("StatusFor(%s) = %d, want %d", tt.err.Code, got, tt.status)
			}
		})
	}
}
