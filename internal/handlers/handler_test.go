package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"loom/internal/apperr"
)

func TestWriteErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"not found", apperr.NotFound("post not found"), http.StatusNotFound, "post not found"},
		{"conflict", apperr.Conflict("slug taken"), http.StatusConflict, "slug taken"},
		{"invalid state", apperr.InvalidState("already published"), http.StatusBadRequest, "already published"},
		{"unknown error hides detail", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/posts/x", nil)

			writeError(rr, req, tt.err)

			if rr.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rr.Code, tt.wantStatus)
			}
			var body errorBody
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantBody {
				t.Errorf("error: got %q, want %q", body.Error, tt.wantBody)
			}
		})
	}
}

func TestWriteJSONSetsContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	writeJSON(rr, http.StatusCreated, map[string]string{"ok": "yes"})

	if rr.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}
}

func TestDecodeBodyRejectsMalformedJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/posts", strings.NewReader("{not json"))

	var dst map[string]any
	if decodeBody(rr, req, &dst) {
		t.Error("expected decode failure")
	}
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400", rr.Code)
	}
}

func strp(s string) *string { return &s }

func TestValidatePostFields(t *testing.T) {
	if msg := validatePostFields(strp("A Title"), strp("body"), nil); msg != "" {
		t.Errorf("valid input rejected: %q", msg)
	}
	if msg := validatePostFields(strp("   "), nil, nil); msg == "" {
		t.Error("blank title accepted")
	}
	long := strings.Repeat("x", maxTitleLen+1)
	if msg := validatePostFields(&long, nil, nil); msg == "" {
		t.Error("overlong title accepted")
	}
	// Nil fields are "unchanged" and always pass.
	if msg := validatePostFields(nil, nil, nil); msg != "" {
		t.Errorf("all-nil input rejected: %q", msg)
	}
}

func TestValidateIdeaFields(t *testing.T) {
	if msg := validateIdeaFields(strp("Distributed Systems"), nil); msg != "" {
		t.Errorf("valid input rejected: %q", msg)
	}
	long := strings.Repeat("x", maxIdeaNameLen+1)
	if msg := validateIdeaFields(&long, nil); msg == "" {
		t.Error("overlong name accepted")
	}
}

func TestValidateAnnotation(t *testing.T) {
	if msg := validateAnnotation("short note"); msg != "" {
		t.Errorf("valid annotation rejected: %q", msg)
	}
	if msg := validateAnnotation(strings.Repeat("x", maxAnnotationLen+1)); msg == "" {
		t.Error("overlong annotation accepted")
	}
	if msg := validateAnnotation("   "); msg == "" {
		t.Error("blank annotation accepted")
	}
}
