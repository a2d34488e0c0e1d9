package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

type newEntryRequest struct {
	ProjectID string `json:"project_id"`
	TaskID    string `json:"task_id"`
	SpentAt   string `json:"spent_at"`
	Notes     string `json:"notes,omitempty"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status: %d", e.Code)
}

func (s *Service) ofUser(userID string) (string, error) {
	if len(s.users) == 0 {
		return "", nil
	}
	id, ok := s.users[userID]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUserNotLinked, userID)
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *Service) do(ctx context.Context, method, path, userID string, body, out any) error {
	ofUser, err := s.ofUser(userID)
	if err != nil {
		return err
	}

	u, err := url.Parse(s.BaseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse url: %w", err)
	}
	if ofUser != "" {
		q := u.Query()
		q.Set("of_user", ofUser)
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(requestBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		s.Log.With(
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		).Error("invalid response code")
		return &StatusError{Code: resp.StatusCode, Body: string(data)}
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
