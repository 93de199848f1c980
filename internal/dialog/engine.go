package dialog

import "go.uber.org/zap"

// Handler processes an accepted event and returns the next state. Handlers
// read and write the session, talk to the entity store, and enqueue outbound
// messages through a Sender.
type Handler func(ev Event, sess *Session) (State, error)

// Binding pairs a matcher with its handler.
type Binding struct {
	Match  Matcher
	Handle Handler
}

// On builds a binding.
func On(m Matcher, h Handler) Binding {
	return Binding{Match: m, Handle: h}
}

// Engine dispatches incoming events against an explicit transition table:
// for each state, an ordered list of (matcher, handler) bindings. Fallback
// bindings apply in every state and are consulted first.
type Engine struct {
	sessions  *Sessions
	table     map[State][]Binding
	fallbacks []Binding
	log       *zap.Logger
}

// NewEngine creates an engine over the given session registry.
func NewEngine(sessions *Sessions, log *zap.Logger) *Engine {
	return &Engine{
		sessions: sessions,
		table:    make(map[State][]Binding),
		log:      log,
	}
}

// Bind appends bindings to the state's ordered list. The StateIdle list is
// the "no active conversation" list consulted for a user's first-ever event.
func (e *Engine) Bind(state State, bindings ...Binding) {
	e.table[state] = append(e.table[state], bindings...)
}

// Fallback registers bindings matched in every state, ahead of the state's
// own list. Used for the universal cancel command and the main-menu button.
func (e *Engine) Fallback(bindings ...Binding) {
	e.fallbacks = append(e.fallbacks, bindings...)
}

// Dispatch routes one event. The first accepting binding runs and its
// returned state becomes the session state. An event no binding accepts is
// dropped without a state change or side effect.
func (e *Engine) Dispatch(ev Event) {
	sess := e.sessions.Get(ev.UserID)

	for _, b := range e.fallbacks {
		if b.Match.Matches(ev) {
			e.run(b, ev, sess)
			return
		}
	}

	for _, b := range e.table[sess.State] {
		if b.Match.Matches(ev) {
			e.run(b, ev, sess)
			return
		}
	}

	// Intentional permissiveness: unmatched events are dropped, not errors.
	e.log.Debug("event dropped",
		zap.Stringer("state", sess.State),
		zap.Stringer("kind", ev.Kind),
		zap.Int64("user_id", ev.UserID),
	)
}

func (e *Engine) run(b Binding, ev Event, sess *Session) {
	next, err := b.Handle(ev, sess)
	if err != nil {
		e.log.Error("handler failed",
			zap.Stringer("state", sess.State),
			zap.Stringer("kind", ev.Kind),
			zap.Int64("user_id", ev.UserID),
			zap.Error(err),
		)
		return
	}
	sess.State = next
}
