package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInput(t *testing.T) {
	tests := []struct {
		text    string
		want    Interaction
		command bool
	}{
		{"/status", Interaction{UserID: "u", Action: "status"}, true},
		{"/start acme site", Interaction{UserID: "u", Action: "start", Name: "acme site"}, true},
		{"/START@TimerBot  acme ", Interaction{UserID: "u", Action: "start", Name: "acme"}, true},
		{" 2 ", Interaction{UserID: "u", Value: "2"}, false},
		{"no", Interaction{UserID: "u", Value: "no"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, command := ParseInput("u", tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.command, command)
		})
	}
}

func TestFormatChoices(t *testing.T) {
	opts := NewOptions(
		Option{Name: "Design", ID: 1, Type: "task"},
		Option{Name: "Review", ID: 2, Type: "task"},
	)

	lines := FormatChoices(opts, "task", func(c Choice) string {
		if c.Option.ID == 2 {
			return " (Currently running)"
		}
		return ""
	})
	assert.Equal(t, []string{"1. Design", "2. Review (Currently running)"}, lines)
	assert.Nil(t, FormatChoices(opts, "project", nil))
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "telegram:42", SessionKey("telegram", "42"))
}
