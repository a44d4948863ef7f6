package chihttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func TestBearerAuth_DisabledWhenNoKeys(t *testing.T) {
	handler := BearerAuthMiddleware(nil)(okHandler())

	req := httptest.NewRequest("POST", "/v1/decks/query", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 (auth disabled)", rr.Code)
	}
}

func TestBearerAuth_ValidKey(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret-key"})(okHandler())

	req := httptest.NewRequest("POST", "/v1/decks/query", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret-key")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestBearerAuth_InvalidKey(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret-key"})(okHandler())

	req := httptest.NewRequest("POST", "/v1/decks/query", http.NoBody)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret-key"})(okHandler())

	req := httptest.NewRequest("POST", "/v1/decks/query", http.NoBody)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret-key"})(okHandler())

	req := httptest.NewRequest("POST", "/v1/decks/query", http.NoBody)
	req.Header.Set("Authorization", "Basic secret-key")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestBearerAuth_ExemptPaths(t *testing.T) {
	handler := BearerAuthMiddleware([]string{"secret-key"})(okHandler())

	for _, path := range []string{"/health", "/metrics"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest("GET", path, http.NoBody)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("status = %d, want 200 (exempt path)", rr.Code)
			}
		})
	}
}
