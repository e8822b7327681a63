// internal/domain/opportunity/status.go
package opportunity

// transitions lists, per source status, every allowed target status.
var transitions = map[Status][]Status{
	StatusOpen:      {StatusWon, StatusLost, StatusAbandoned},
	StatusWon:       {},
	StatusLost:      {},
	StatusAbandoned: {StatusOpen},
}

// Statuses returns every known status.
func Statuses() []Status {
	return []Status{StatusOpen, StatusWon, StatusLost, StatusAbandoned}
}

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from → to is allowed.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns a copy of the targets reachable from s.
func AllowedTransitions(s Status) []Status {
	return append([]Status{}, transitions[s]...)
}
