package http

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"spendingtracker/internal/core"
)

func TestJSONResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Status(http.StatusCreated).
		Header("X-Cache", "MISS").
		Body(map[string]string{"name": "Chase"}).
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
	if got := w.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("X-Cache = %q, want MISS", got)
	}
	if !strings.Contains(w.Body.String(), `"name":"Chase"`) {
		t.Errorf("Body = %q", w.Body.String())
	}
}

func TestJSONResponseBuilder_NoBody(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().Status(http.StatusNoContent).Write(w)

	if w.Code != http.StatusNoContent {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusNoContent)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Body = %q, want empty", w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "" {
		t.Errorf("Content-Type = %q, want none", ct)
	}
}

func TestJSONResponseBuilder_UnencodableBody(t *testing.T) {
	w := httptest.NewRecorder()

	NewJSONResponse().
		Header("X-Cache", "MISS").
		Body(map[string]float64{"total_spent": math.Inf(1)}).
		Write(w)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal(%q) error = %v", w.Body.String(), err)
	}
	if body.Error != http.StatusText(http.StatusInternalServerError) {
		t.Errorf("error = %q", body.Error)
	}
}

func TestErrorResponse(t *testing.T) {
	w := httptest.NewRecorder()

	ErrorResponse(http.StatusNotFound, "card not found", "req-1").Write(w)

	var body errorBody
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if body.Error != "card not found" || body.RequestID != "req-1" {
		t.Errorf("body = %+v", body)
	}
}

func TestWriteErrorHidesServerDetail(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantText   string
	}{
		{
			name:       "client error keeps message",
			err:        fmt.Errorf("get card abc: %w", core.ErrCardNotFound),
			wantStatus: http.StatusNotFound,
			wantText:   "get card abc",
		},
		{
			name:       "server error is generic",
			err:        fmt.Errorf("%w: commit: disk I/O error", core.ErrPersistence),
			wantStatus: http.StatusInternalServerError,
			wantText:   http.StatusText(http.StatusInternalServerError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/cards/abc", nil)

			writeError(w, r, "read", tt.err)

			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}
			if !strings.Contains(body.Error, tt.wantText) {
				t.Errorf("error = %q, want it to contain %q", body.Error, tt.wantText)
			}
			if strings.Contains(body.Error, "disk") {
				t.Errorf("error leaks detail: %q", body.Error)
			}
		})
	}
}
