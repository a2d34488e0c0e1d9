package chat

import (
	"fmt"
	"strings"
)

// SessionKey builds the user identifier of a chat user on a platform.
func SessionKey(platform, userID string) string {
	return platform + ":" + userID
}

// ParseInput turns a raw chat message into interaction parameters.
// "/action [name]" starts a flow; anything else is a reply value.
// The second result reports whether text was a command.
func ParseInput(userID, text string) (Interaction, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return Interaction{UserID: userID, Value: text}, false
	}

	command, name, _ := strings.Cut(text[1:], " ")
	// telegram appends the bot name in groups: /start@TimerBot
	command, _, _ = strings.Cut(command, "@")

	return Interaction{
		UserID: userID,
		Action: Action(strings.ToLower(command)),
		Name:   strings.TrimSpace(name),
	}, true
}

// FormatChoices renders the choices of type t as "token. name" lines.
// A non-nil suffix appends text to a line.
func FormatChoices(options Options, t OptionType, suffix func(Choice) string) []string {
	var lines []string
	for _, c := range options.OfType(t) {
		line := fmt.Sprintf("%s. %s", c.Token, c.Option.Name)
		if suffix != nil {
			line += suffix(c)
		}
		lines = append(lines, line)
	}
	return lines
}
