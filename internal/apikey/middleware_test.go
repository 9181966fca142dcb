package apikey

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func protected(cfg Config) http.Handler {
	return Middleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestMiddlewareGate(t *testing.T) {
	tests := []struct {
		name       string
		cfg        Config
		key        string
		wantStatus int
	}{
		{
			name:       "valid key passes",
			cfg:        Config{Enabled: true, Keys: []string{"k1", "k2"}},
			key:        "k2",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing key rejected",
			cfg:        Config{Enabled: true, Keys: []string{"k1"}},
			key:        "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown key rejected",
			cfg:        Config{Enabled: true, Keys: []string{"k1"}},
			key:        "nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "surrounding whitespace tolerated",
			cfg:        Config{Enabled: true, Keys: []string{"k1"}},
			key:        "  k1  ",
			wantStatus: http.StatusOK,
		},
		{
			name:       "disabled gate passes everything",
			cfg:        Config{Enabled: false},
			key:        "",
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.key != "" {
				req.Header.Set(Header, tc.key)
			}
			rec := httptest.NewRecorder()
			protected(tc.cfg).ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	keys := []string{"alpha", "beta"}

	if !Matches(keys, "beta") {
		t.Error("expected match for configured key")
	}
	if Matches(keys, "gamma") {
		t.Error("unexpected match for unknown key")
	}
	if Matches(keys, "") {
		t.Error("empty candidate must never match")
	}
	if Matches(nil, "alpha") {
		t.Error("no configured keys means no match")
	}
}
