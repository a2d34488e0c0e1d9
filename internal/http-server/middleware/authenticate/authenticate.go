package authenticate

import (
	"TimerBot/entity"
	"TimerBot/internal/lib/api/cont"
	"TimerBot/internal/lib/api/response"
	"TimerBot/internal/lib/sl"
	"errors"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

var (
	errNoHeader = errors.New("authorization header not found")
	errNoToken  = errors.New("bearer token not found")
)

type Authenticate interface {
	AuthenticateByToken(token string) (*entity.UserAuth, error)
}

// New authenticates API callers by bearer key and puts the caller into the
// request context, where the interaction history picks it up.
func New(log *slog.Logger, auth Authenticate) func(next http.Handler) http.Handler {
	mod := sl.Module("middleware.authenticate")
	log.With(mod).Info("authenticate middleware initialized")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := middleware.GetReqID(r.Context())
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()

			logger := log.With(
				mod,
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", remoteAddr(r)),
				slog.String("request_id", id),
			)

			user, err := authorize(r, auth)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(ww, r, response.Error("Unauthorized: "+err.Error()))
				logger.With(
					sl.Err(err),
					slog.Int("status", ww.Status()),
				).Info("request rejected")
				return
			}

			ww.Header().Set("X-Request-ID", id)
			ww.Header().Set("X-User", user.Username)
			next.ServeHTTP(ww, r.WithContext(cont.PutUser(r.Context(), user)))

			logger.With(
				slog.String("user", user.Username),
				slog.Int("status", ww.Status()),
				slog.Int("size", ww.BytesWritten()),
				slog.Float64("duration", time.Since(started).Seconds()),
			).Info("incoming request")
		})
	}
}

func authorize(r *http.Request, auth Authenticate) (*entity.UserAuth, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errNoHeader
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return nil, errNoToken
	}
	if auth == nil {
		return nil, errors.New("authentication not enabled")
	}
	return auth.AuthenticateByToken(token)
}

// remoteAddr prefers the address reported by a proxy.
func remoteAddr(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	return r.RemoteAddr
}
