package logger

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []string
}

func (s *recordingSender) SendMessage(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *recordingSender) sent() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.msgs...)
}

// blockingSender holds every message until released.
type blockingSender struct {
	release chan struct{}
	recordingSender
}

func (s *blockingSender) SendMessage(msg string) {
	<-s.release
	s.recordingSender.SendMessage(msg)
}

func TestTelegramHandlerForwardsAboveLevel(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	sender := &recordingSender{}
	log := SetupTelegramHandler(base, sender, slog.LevelError)

	log.With(slog.String("module", "test")).Info("quiet")
	log.With(slog.String("module", "test")).Error("loud", slog.String("user_id", "42"))

	require.Eventually(t, func() bool { return len(sender.sent()) == 1 }, time.Second, 5*time.Millisecond)
	msgs := sender.sent()
	assert.Contains(t, msgs[0], "ERROR: loud")
	assert.Contains(t, msgs[0], "module: test")
	assert.Contains(t, msgs[0], "user_id: 42")
}

func TestTelegramHandlerDoesNotWaitForSender(t *testing.T) {
	base := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := &blockingSender{release: make(chan struct{})}
	log := SetupTelegramHandler(base, sender, slog.LevelWarn)

	done := make(chan struct{})
	go func() {
		for i := 0; i < forwardQueueSize*2; i++ {
			log.Warn("slow telegram")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("logging blocked on the sender")
	}

	close(sender.release)
	require.Eventually(t, func() bool { return len(sender.sent()) > 0 }, time.Second, 5*time.Millisecond)
	assert.LessOrEqual(t, len(sender.sent()), forwardQueueSize+1)
}

func TestSetupLoggerLocal(t *testing.T) {
	log := SetupLogger(envLocal, t.TempDir())
	assert.NotNil(t, log)
}
