package dialog

import "sync"

// Form holds the in-progress service request fields collected across steps.
// Fields are set incrementally and validated complete before submission.
type Form struct {
	Brand string
	Year  string
	Model string
	// CarModel is the composed descriptor shown to people,
	// e.g. "Toyota Camry 2020 г.".
	CarModel      string
	LicensePlate  string
	Mileage       int
	MileageSet    bool
	RequestedWork string
	PreferredDate string
	Phone         string

	// Registration scratch, used before a User record exists.
	FirstName string
	LastName  string
}

// Complete reports whether every field required for submission is present.
func (f *Form) Complete() bool {
	return f.CarModel != "" &&
		f.LicensePlate != "" &&
		f.MileageSet &&
		f.RequestedWork != "" &&
		f.PreferredDate != "" &&
		f.Phone != ""
}

// Reset clears all collected fields.
func (f *Form) Reset() {
	*f = Form{}
}

// Session is the per-user ephemeral conversation state. It survives across
// events for the same user but not across process restarts.
type Session struct {
	UserID int64
	State  State
	Form   Form

	// PendingAction / PendingRequestID track the admin action awaiting a
	// note in StateAdminNote.
	PendingAction    string
	PendingRequestID string
	// AnswerRequestID is the mileage inquiry being answered in
	// StateMileageAnswer.
	AnswerRequestID string
}

// Sessions tracks per-user sessions for the lifetime of the process.
// Sessions are created lazily on first access. There is no expiry.
type Sessions struct {
	mu     sync.Mutex
	byUser map[int64]*Session
}

// NewSessions creates an empty session registry.
func NewSessions() *Sessions {
	return &Sessions{byUser: make(map[int64]*Session)}
}

// Get returns the session for the user, creating an empty one if absent.
func (s *Sessions) Get(userID int64) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byUser[userID]
	if !ok {
		sess = &Session{UserID: userID}
		s.byUser[userID] = sess
	}
	return sess
}

// Clear removes the user's session. The next event starts from StateIdle.
func (s *Sessions) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byUser, userID)
}

// Len reports how many sessions are live.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byUser)
}
