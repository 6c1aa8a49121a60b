package session

import "matruraksha-bot/pkg"

// Step is the current wizard position for a session. StepNone means no
// registration is in progress.
type Step int

const (
	StepNone Step = iota
	StepName
	StepAge
	StepPhone
	StepDueDate
	StepLocation
	StepGravida
	StepParity
	StepBMI
	StepLanguage
)

// Draft accumulates wizard answers. A nil field is either unvisited or was
// explicitly skipped; the strict step order makes the distinction implicit.
// The "skip" sentinel and unparseable typed input both land here as nil.
type Draft struct {
	Name     *string
	Age      *int
	Phone    *string
	DueDate  *string
	Location *string
	Gravida  *int
	Parity   *int
	BMI      *float64
	Language *pkg.LanguageCode
}

// Session is the per-chat state container. One session may own several
// registered profiles; exactly one of them (or none) is active at a time.
type Session struct {
	Key                string
	ActiveProfileID    string
	Profiles           []pkg.Profile
	SwitchPanelVisible bool

	// RegistrationActive is the registration lock: while true, every
	// dispatched action other than begin-registration and confirm is
	// rejected. Cancel arrives as its own event and always passes.
	RegistrationActive bool
	Step               Step
	Draft              Draft
}

// ActiveProfile resolves the active profile id against the cached list.
func (s *Session) ActiveProfile() *pkg.Profile {
	if s.ActiveProfileID == "" {
		return nil
	}
	for i := range s.Profiles {
		if s.Profiles[i].ID == s.ActiveProfileID {
			return &s.Profiles[i]
		}
	}
	return nil
}

// ClearRegistration drops the draft and releases the lock. Used on both
// finalize and cancel.
func (s *Session) ClearRegistration() {
	s.RegistrationActive = false
	s.Step = StepNone
	s.Draft = Draft{}
}

// BeginRegistration resets the draft, takes the lock and enters the first
// wizard step. Restarting an in-progress registration is always permitted.
func (s *Session) BeginRegistration() {
	s.Draft = Draft{}
	s.RegistrationActive = true
	s.Step = StepName
}
