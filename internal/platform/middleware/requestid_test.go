package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

func serveWithRequestID(t *testing.T, incoming string) (ctxID, headerID string) {
	t.Helper()

	h := RequestID()(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = chimiddleware.GetReqID(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if incoming != "" {
		req.Header.Set(chimiddleware.RequestIDHeader, incoming)
	}
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	return ctxID, resp.Header().Get(chimiddleware.RequestIDHeader)
}

func TestRequestIDReusesValidHeader(t *testing.T) {
	ctxID, headerID := serveWithRequestID(t, "pipeline-run-42")

	if ctxID != "pipeline-run-42" || headerID != "pipeline-run-42" {
		t.Fatalf("expected incoming id to be reused, got ctx=%q header=%q", ctxID, headerID)
	}
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"missing", ""},
		{"too long", strings.Repeat("a", maxRequestIDLength+1)},
		{"newline injection", "abc\ninjected"},
		{"non ascii", "id-é"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctxID, headerID := serveWithRequestID(t, tt.incoming)
			if ctxID != headerID {
				t.Fatalf("context id %q and header id %q differ", ctxID, headerID)
			}
			if _, err := uuid.Parse(ctxID); err != nil {
				t.Fatalf("expected generated UUID, got %q: %v", ctxID, err)
			}
		})
	}
}

func TestValidRequestIDBoundary(t *testing.T) {
	if !validRequestID(strings.Repeat("x", maxRequestIDLength)) {
		t.Fatal("expected id at max length to be valid")
	}
	if !validRequestID(" ~") {
		t.Fatal("expected printable ASCII bounds to be valid")
	}
	if validRequestID("\x7f") {
		t.Fatal("expected DEL to be rejected")
	}
}
