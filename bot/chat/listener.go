package chat

import "context"

// MessageListener is notified about every resolved interaction. It lets
// transports record history or broadcast views without importing each other.
type MessageListener interface {
	SaveInteraction(ctx context.Context, in Interaction, res Result) error
}
