package dialog

// Button is an inline action button identified by an opaque payload.
type Button struct {
	Label string
	Data  string
}

// Row builds a single button row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Outgoing is a message to deliver to a chat. At most one keyboard directive
// is honored: inline buttons, a contact request, the persistent menu button,
// or keyboard removal.
type Outgoing struct {
	ChatID int64
	Text   string
	// Buttons are inline keyboard rows attached to the message.
	Buttons [][]Button
	// RequestContact asks for the user's phone number with a one-time
	// reply keyboard.
	RequestContact bool
	// ShowMenuButton attaches the persistent main-menu reply keyboard.
	ShowMenuButton bool
	// RemoveKeyboard removes any reply keyboard.
	RemoveKeyboard bool
}

// Sender delivers outbound messages. Implementations log failures; callers
// may additionally use the returned error to fall back to a broader audience.
type Sender interface {
	Send(msg Outgoing) error
}
