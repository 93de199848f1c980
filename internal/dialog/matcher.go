package dialog

import "strings"

type matchKind int

const (
	matchCommand matchKind = iota
	matchCallback
	matchCallbackPrefix
	matchText
	matchTextExact
	matchContact
	matchTextOrContact
)

// Matcher is a compiled rule deciding whether a handler accepts an event.
// Matchers are evaluated in the order they were bound; the first acceptance
// wins.
type Matcher struct {
	kind  matchKind
	value string
}

// Command matches a slash command by exact name (without the slash).
func Command(name string) Matcher {
	return Matcher{kind: matchCommand, value: name}
}

// Callback matches a button press by exact payload.
func Callback(payload string) Matcher {
	return Matcher{kind: matchCallback, value: payload}
}

// CallbackPrefix matches a button press whose payload starts with prefix.
func CallbackPrefix(prefix string) Matcher {
	return Matcher{kind: matchCallbackPrefix, value: prefix}
}

// Text matches any free-text message. Commands are a distinct event kind and
// never match.
func Text() Matcher {
	return Matcher{kind: matchText}
}

// TextExact matches a free-text message with exactly the given body, such as
// a reply-keyboard button label.
func TextExact(body string) Matcher {
	return Matcher{kind: matchTextExact, value: body}
}

// Contact matches a shared contact card.
func Contact() Matcher {
	return Matcher{kind: matchContact}
}

// TextOrContact matches either a free-text message or a shared contact.
func TextOrContact() Matcher {
	return Matcher{kind: matchTextOrContact}
}

// Matches reports whether the matcher accepts the event.
func (m Matcher) Matches(ev Event) bool {
	switch m.kind {
	case matchCommand:
		return ev.Kind == KindCommand && ev.Command == m.value
	case matchCallback:
		return ev.Kind == KindCallback && ev.Payload == m.value
	case matchCallbackPrefix:
		return ev.Kind == KindCallback && strings.HasPrefix(ev.Payload, m.value)
	case matchText:
		return ev.Kind == KindText
	case matchTextExact:
		return ev.Kind == KindText && ev.Text == m.value
	case matchContact:
		return ev.Kind == KindContact
	case matchTextOrContact:
		return ev.Kind == KindText || ev.Kind == KindContact
	}
	return false
}
