package dialog

// EventKind discriminates the typed inputs the engine accepts.
type EventKind int

const (
	// KindCommand is a slash command, e.g. /start.
	KindCommand EventKind = iota
	// KindCallback is a button press carrying an opaque payload string.
	KindCallback
	// KindText is a free-text message.
	KindText
	// KindContact is a shared contact card carrying a phone number.
	KindContact
)

func (k EventKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindCallback:
		return "callback"
	case KindText:
		return "text"
	case KindContact:
		return "contact"
	}
	return "unknown"
}

// Event is a single input to the conversation engine. Every event carries the
// originating user identity and the chat replies should be addressed to.
type Event struct {
	Kind   EventKind
	UserID int64
	ChatID int64

	// Command is the command name without the slash, set for KindCommand.
	Command string
	// Payload is the opaque button payload, set for KindCallback.
	Payload string
	// Text is the message body, set for KindText.
	Text string
	// Phone is the shared phone number, set for KindContact.
	Phone string

	// Profile fields of the sender, as reported by the transport.
	FirstName string
	LastName  string
	Username  string
}
