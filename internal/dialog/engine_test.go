package dialog

import (
	"errors"
	"testing"

	"go.uber.org/zap"
)

func handlerTo(next State, called *int) Handler {
	return func(ev Event, sess *Session) (State, error) {
		*called++
		return next, nil
	}
}

func TestDispatchRunsFirstMatchingBinding(t *testing.T) {
	sessions := NewSessions()
	e := NewEngine(sessions, zap.NewNop())

	var first, second int
	e.Bind(StateIdle,
		On(CallbackPrefix("reject_mileage_"), handlerTo(StateMainMenu, &first)),
		On(CallbackPrefix("reject_"), handlerTo(StateAdminMenu, &second)),
	)

	e.Dispatch(Event{Kind: KindCallback, UserID: 1, Payload: "reject_mileage_abc"})

	if first != 1 || second != 0 {
		t.Fatalf("expected only the earlier binding to run, got first=%d second=%d", first, second)
	}
	if got := sessions.Get(1).State; got != StateMainMenu {
		t.Fatalf("session state = %v, want %v", got, StateMainMenu)
	}

	// The shorter prefix still catches payloads the longer one rejects.
	e.Dispatch(Event{Kind: KindCallback, UserID: 2, Payload: "reject_abc"})
	if second != 1 {
		t.Fatalf("expected the generic binding to run for reject_, got %d", second)
	}
}

func TestDispatchConsultsSessionState(t *testing.T) {
	sessions := NewSessions()
	e := NewEngine(sessions, zap.NewNop())

	var idle, menu int
	e.Bind(StateIdle, On(Text(), handlerTo(StateMainMenu, &idle)))
	e.Bind(StateMainMenu, On(Text(), handlerTo(StateMainMenu, &menu)))

	e.Dispatch(Event{Kind: KindText, UserID: 1, Text: "a"})
	e.Dispatch(Event{Kind: KindText, UserID: 1, Text: "b"})

	if idle != 1 || menu != 1 {
		t.Fatalf("expected one dispatch per state list, got idle=%d menu=%d", idle, menu)
	}
}

func TestDispatchFallbackWinsOverStateBinding(t *testing.T) {
	sessions := NewSessions()
	e := NewEngine(sessions, zap.NewNop())

	var fallback, stateBound int
	e.Fallback(On(Command("cancel"), handlerTo(StateIdle, &fallback)))
	e.Bind(StateMainMenu, On(Command("cancel"), handlerTo(StateMainMenu, &stateBound)))

	sessions.Get(7).State = StateMainMenu
	e.Dispatch(Event{Kind: KindCommand, UserID: 7, Command: "cancel"})

	if fallback != 1 || stateBound != 0 {
		t.Fatalf("expected the fallback to win, got fallback=%d stateBound=%d", fallback, stateBound)
	}
}

func TestDispatchDropsUnmatchedEvent(t *testing.T) {
	sessions := NewSessions()
	e := NewEngine(sessions, zap.NewNop())

	var called int
	e.Bind(StateFormConfirm, On(Callback("confirm"), handlerTo(StateMainMenu, &called)))

	sess := sessions.Get(3)
	sess.State = StateFormConfirm
	sess.Form.LicensePlate = "A123BC"

	// Free text arrives while only callbacks are accepted.
	e.Dispatch(Event{Kind: KindText, UserID: 3, Text: "да"})

	if called != 0 {
		t.Fatal("handler ran for an unmatched event")
	}
	if sess.State != StateFormConfirm {
		t.Fatalf("state changed on a dropped event: %v", sess.State)
	}
	if sess.Form.LicensePlate != "A123BC" {
		t.Fatal("form mutated on a dropped event")
	}
}

func TestDispatchKeepsStateOnHandlerError(t *testing.T) {
	sessions := NewSessions()
	e := NewEngine(sessions, zap.NewNop())

	e.Bind(StateIdle, On(Text(), func(ev Event, sess *Session) (State, error) {
		return StateMainMenu, errors.New("boom")
	}))

	e.Dispatch(Event{Kind: KindText, UserID: 5, Text: "x"})

	if got := sessions.Get(5).State; got != StateIdle {
		t.Fatalf("state advanced despite handler error: %v", got)
	}
}
