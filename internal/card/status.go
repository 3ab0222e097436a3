package card

// Status is the apply state of a single job card.
type Status string

const (
	// StatusIdle means no apply was attempted yet.
	StatusIdle Status = "Idle"

	// StatusInFlight means an apply request is pending.
	StatusInFlight Status = "InFlight"

	// StatusSucceeded means the last apply request produced an application.
	StatusSucceeded Status = "Succeeded"

	// StatusFailed means the last apply request failed.
	StatusFailed Status = "Failed"
)

func (s Status) String() string {
	return string(s)
}

// IsActive returns true while a request is pending.
func (s Status) IsActive() bool {
	return s == StatusInFlight
}

// IsFinished returns true once an attempt has completed, successfully or not.
func (s Status) IsFinished() bool {
	return s == StatusSucceeded || s == StatusFailed
}
