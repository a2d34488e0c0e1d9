package chat

// Messenger is the platform delivery adapter. Each transport (Telegram,
// Discord) implements it to send a view back to a chat.
type Messenger interface {
	SendText(chatID, text string) error
}
