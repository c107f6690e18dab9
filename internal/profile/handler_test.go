package profile

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestHandlerRouter(api *fakeGraph) *gin.Engine {
	gin.SetMode(gin.TestMode)
	s, _ := newTestSetup(api)
	r := gin.New()
	r.GET("/profile", s.HandleSetup)
	return r
}

func get(r *gin.Engine, query string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/profile?"+query, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleSetup(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"missing params", "", http.StatusNotFound},
		{"missing mode", "verify_token=" + testToken, http.StatusNotFound},
		{"missing token", "mode=all", http.StatusNotFound},
		{"wrong token", "mode=all&verify_token=nope", http.StatusForbidden},
		{"unknown mode", "mode=bogus&verify_token=" + testToken, http.StatusBadRequest},
		{"valid", "mode=webhook&verify_token=" + testToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := newTestHandlerRouter(&fakeGraph{})
			if w := get(r, tt.query); w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleSetup_AllReportsEveryStep(t *testing.T) {
	t.Parallel()

	r := newTestHandlerRouter(&fakeGraph{})
	w := get(r, "mode=all&verify_token="+testToken)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if got := strings.Count(body, "✅"); got != 5 {
		t.Errorf("body has %d completed steps, want 5:\n%s", got, body)
	}
}

func TestHandleSetup_StepFailureIs500WithProgress(t *testing.T) {
	t.Parallel()

	r := newTestHandlerRouter(&fakeGraph{failCall: "ListPersonas"})
	w := get(r, "mode=all&verify_token="+testToken)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "❌") {
		t.Errorf("body should flag the failing step:\n%s", body)
	}
	if got := strings.Count(body, "✅"); got != 2 {
		t.Errorf("body has %d completed steps, want the 2 before the failure:\n%s", got, body)
	}
}
