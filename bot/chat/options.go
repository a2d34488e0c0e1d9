package chat

import (
	"strconv"
	"strings"
)

// QuitToken is the reserved reply that always aborts a dialogue.
const QuitToken = "no"

// OptionType tags the domain category of an option.
type OptionType string

// OptionSystem is reserved for engine options such as quit.
const OptionSystem OptionType = "system"

// Option is one choice offered to the user. ID is the domain identifier
// passed on to the backend, zero when the option has none.
type Option struct {
	Name string     `json:"name" bson:"name"`
	ID   int64      `json:"id,omitempty" bson:"id"`
	Type OptionType `json:"type" bson:"type"`
}

// Choice binds the token the user types to the option it selects.
type Choice struct {
	Token  string `json:"token" bson:"token"`
	Option Option `json:"option" bson:"option"`
}

// Options is an ordered option set. Tokens are assigned by the set itself:
// "no" for quit and "1", "2", ... for domain options, so option names can
// never collide with the reserved namespace.
type Options []Choice

func QuitOption() Option {
	return Option{Name: "Quit", Type: OptionSystem}
}

// NewOptions returns a set holding the quit choice followed by opts.
func NewOptions(opts ...Option) Options {
	o := Options{{Token: QuitToken, Option: QuitOption()}}
	for _, opt := range opts {
		o = o.Add(opt)
	}
	return o
}

// Add returns a copy of o with opt appended under the next number.
func (o Options) Add(opt Option) Options {
	out := make(Options, len(o), len(o)+1)
	copy(out, o)
	return append(out, Choice{Token: strconv.Itoa(o.numbered() + 1), Option: opt})
}

// Get looks up the option selected by token.
func (o Options) Get(token string) (Option, bool) {
	token = NormalizeToken(token)
	for _, c := range o {
		if c.Token == token {
			return c.Option, true
		}
	}
	return Option{}, false
}

func (o Options) Has(token string) bool {
	_, ok := o.Get(token)
	return ok
}

// OfType returns the choices of type t in order.
func (o Options) OfType(t OptionType) Options {
	var out Options
	for _, c := range o {
		if c.Option.Type == t {
			out = append(out, c)
		}
	}
	return out
}

func (o Options) Tokens() []string {
	tokens := make([]string, len(o))
	for i, c := range o {
		tokens[i] = c.Token
	}
	return tokens
}

func (o Options) numbered() int {
	n := 0
	for _, c := range o {
		if c.Token != QuitToken {
			n++
		}
	}
	return n
}

// withQuit makes sure the quit choice leads the set.
func (o Options) withQuit() Options {
	if q, ok := o.Get(QuitToken); ok && q.Type == OptionSystem {
		return o
	}
	out := Options{{Token: QuitToken, Option: QuitOption()}}
	for _, c := range o {
		if c.Token != QuitToken {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeToken trims and lowercases raw user input.
func NormalizeToken(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
