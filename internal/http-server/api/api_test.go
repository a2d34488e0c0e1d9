package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TimerBot/bot/chat"
	"TimerBot/entity"
	"TimerBot/internal/lib/api/cont"
)

type fakeHandler struct {
	got    chat.Interaction
	caller string
	reset  string
}

func (f *fakeHandler) AuthenticateByToken(token string) (*entity.UserAuth, error) {
	if token != "key" {
		return nil, errors.New("invalid token")
	}
	return &entity.UserAuth{Username: "admin"}, nil
}

func (f *fakeHandler) ValidateToken(token string) (string, error) {
	user, err := f.AuthenticateByToken(token)
	if err != nil {
		return "", err
	}
	return user.Username, nil
}

func (f *fakeHandler) Interact(ctx context.Context, in chat.Interaction) (chat.Result, error) {
	f.got = in
	if user := cont.GetUser(ctx); user != nil {
		f.caller = user.Username
	}
	return chat.Result{View: "Currently you have no running tasks."}, nil
}

func (f *fakeHandler) Session(context.Context, string) (*chat.Step, error) {
	return nil, nil
}

func (f *fakeHandler) ResetSession(_ context.Context, userID string) error {
	f.reset = userID
	return nil
}

func (f *fakeHandler) History(userID string, limit, offset int) ([]entity.InteractionRecord, error) {
	return []entity.InteractionRecord{{UserID: userID, View: "v"}}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func do(t *testing.T, h http.Handler, method, target, body string, auth bool) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if auth {
		req.Header.Set("Authorization", "Bearer key")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestInteract(t *testing.T) {
	handler := &fakeHandler{}
	router := NewRouter(slog.New(slog.DiscardHandler), handler, nil)

	rec, env := do(t, router, http.MethodPost, "/api/v1/interact",
		`{"user_id":"api:1","action":"status"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Equal(t, chat.Interaction{UserID: "api:1", Action: "status"}, handler.got)
	assert.Equal(t, "admin", handler.caller)

	var data struct {
		View string `json:"view"`
		Done bool   `json:"done"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "Currently you have no running tasks.", data.View)
	assert.True(t, data.Done)
}

func TestInteractReplyValue(t *testing.T) {
	handler := &fakeHandler{}
	router := NewRouter(slog.New(slog.DiscardHandler), handler, nil)

	rec, _ := do(t, router, http.MethodPost, "/api/v1/interact", `{"user_id":"api:1","value":" 2 "}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chat.Interaction{UserID: "api:1", Value: "2"}, handler.got)
}

func TestInteractValidation(t *testing.T) {
	router := NewRouter(slog.New(slog.DiscardHandler), &fakeHandler{}, nil)

	for _, body := range []string{
		`{"action":"status"}`,
		`{"user_id":"api:1"}`,
		`not json`,
	} {
		rec, env := do(t, router, http.MethodPost, "/api/v1/interact", body, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.False(t, env.Success)
	}
}

func TestAuthenticationRequired(t *testing.T) {
	router := NewRouter(slog.New(slog.DiscardHandler), &fakeHandler{}, nil)

	rec, env := do(t, router, http.MethodPost, "/api/v1/interact", `{"user_id":"api:1","action":"status"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)
}

func TestSessionEndpoints(t *testing.T) {
	handler := &fakeHandler{}
	router := NewRouter(slog.New(slog.DiscardHandler), handler, nil)

	rec, _ := do(t, router, http.MethodGet, "/api/v1/session", "", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := do(t, router, http.MethodGet, "/api/v1/session?user_id=api:1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, env.Data)

	rec, _ = do(t, router, http.MethodDelete, "/api/v1/session?user_id=api:1", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "api:1", handler.reset)

	rec, env = do(t, router, http.MethodGet, "/api/v1/session/history?user_id=api:1&limit=5", "", true)
	assert.Equal(t, http.StatusOK, rec.Code)
	var records []entity.InteractionRecord
	require.NoError(t, json.Unmarshal(env.Data, &records))
	assert.Len(t, records, 1)
}

func TestNotFound(t *testing.T) {
	router := NewRouter(slog.New(slog.DiscardHandler), &fakeHandler{}, nil)

	rec, env := do(t, router, http.MethodGet, "/nope", "", true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}
