package authenticate

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"TimerBot/entity"
	"TimerBot/internal/lib/api/cont"
)

type keyAuth map[string]string

func (k keyAuth) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	user, ok := k[token]
	if !ok {
		return nil, errors.New("token not found")
	}
	return &entity.UserAuth{Username: user}, nil
}

func TestAuthenticate(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantUser   string
	}{
		{name: "valid key", header: "Bearer k1", wantStatus: http.StatusOK, wantUser: "monitor"},
		{name: "no header", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic k1", wantStatus: http.StatusUnauthorized},
		{name: "empty token", header: "Bearer  ", wantStatus: http.StatusUnauthorized},
		{name: "unknown key", header: "Bearer k2", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var caller string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if user := cont.GetUser(r.Context()); user != nil {
					caller = user.Username
				}
				w.WriteHeader(http.StatusOK)
			})
			handler := New(slog.New(slog.DiscardHandler), keyAuth{"k1": "monitor"})(next)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, caller)
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, rec.Header().Get("X-User"))
			}
		})
	}
}
