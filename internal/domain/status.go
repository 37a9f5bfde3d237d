package domain

// Status is the task lifecycle value. There is no enforced transition graph:
// any status may be set to any other, including moving a task out of Deleted.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
	StatusClosed     Status = "Closed"
	StatusDeleted    Status = "Deleted"
)

var allStatuses = []Status{
	StatusOpen,
	StatusInProgress,
	StatusBlocked,
	StatusClosed,
	StatusDeleted,
}

// Statuses returns the valid status strings, in declaration order.
func Statuses() []string {
	out := make([]string, len(allStatuses))
	for i, s := range allStatuses {
		out[i] = string(s)
	}
	return out
}

// Valid reports whether s is one of the five enumerated values.
func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseStatus validates a raw status string. The match is exact, including
// the space in "In Progress".
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", NewInvalidInput("status", raw, Statuses())
	}
	return s, nil
}
