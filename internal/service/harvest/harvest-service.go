package harvest

import (
	"TimerBot/entity"
	"TimerBot/internal/config"
	"TimerBot/internal/lib/sl"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
)

var ErrUserNotLinked = errors.New("chat user is not linked to a tracker account")

// Service is the client of the time-tracking backend's daily API.
type Service struct {
	BaseURL string
	users   map[string]int64
	client  *http.Client
	Log     *slog.Logger
}

func NewHarvestService(conf *config.Config, logger *slog.Logger) *Service {
	return New(conf.Harvest.BaseURL, conf.Harvest.Token, conf.Harvest.Timeout, conf.Harvest.Users, logger)
}

// New builds a client authenticating with a personal access token. users maps
// chat user keys to backend user ids; when it is empty every request is made
// as the token owner.
func New(baseURL, token string, timeout time.Duration, users map[string]int64, logger *slog.Logger) *Service {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	client := oauth2.NewClient(context.Background(), src)
	client.Timeout = timeout

	logger.With(
		slog.String("base_url", baseURL),
		sl.Secret("token", token),
		slog.Int("linked_users", len(users)),
	).Debug("harvest client")

	return &Service{
		BaseURL: baseURL,
		users:   users,
		client:  client,
		Log:     logger.With(sl.Module("harvest")),
	}
}

// ListTasksAndEntries returns today's entries and the projects the user can track.
func (s *Service) ListTasksAndEntries(ctx context.Context, userID string) (*entity.Daily, error) {
	var daily entity.Daily
	if err := s.do(ctx, http.MethodGet, "/daily", userID, nil, &daily); err != nil {
		return nil, err
	}
	s.Log.With(
		slog.String("user_id", userID),
		slog.Int("entries", len(daily.DayEntries)),
		slog.Int("projects", len(daily.Projects)),
	).Debug("daily")
	return &daily, nil
}

// CreateEntry adds an entry for today and starts its timer.
func (s *Service) CreateEntry(ctx context.Context, userID string, projectID, taskID int64) (*entity.DayEntry, error) {
	body := newEntryRequest{
		ProjectID: strconv.FormatInt(projectID, 10),
		TaskID:    strconv.FormatInt(taskID, 10),
		SpentAt:   time.Now().Format("2006-01-02"),
	}

	var entry entity.DayEntry
	if err := s.do(ctx, http.MethodPost, "/daily/add", userID, body, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ToggleEntry starts a stopped timer or stops a running one.
func (s *Service) ToggleEntry(ctx context.Context, userID string, entryID int64) (*entity.DayEntry, error) {
	var entry entity.DayEntry
	path := fmt.Sprintf("/daily/timer/%d", entryID)
	if err := s.do(ctx, http.MethodGet, path, userID, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
