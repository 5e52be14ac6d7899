package actionz

import (
	"fmt"
	"strings"
)

// Status is a state of the fetch pipeline's lookup lifecycle.
type Status int

const (
	// StatusEmpty means the input is blank; no lookup will be made.
	StatusEmpty Status = iota
	// StatusDebouncing means the input changed and is waiting to settle.
	StatusDebouncing
	// StatusPending means a settled value is being looked up.
	StatusPending
	// StatusSuccess means the latest lookup answered.
	StatusSuccess
	// StatusError means the latest lookup answered with an error payload.
	StatusError
)

var statusNames = [...]string{"EMPTY", "DEBOUNCING", "PENDING", "SUCCESS", "ERROR"}

// String returns the upper-case status name.
func (s Status) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Terminal reports whether s ends a lookup.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusError
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	name := strings.ToUpper(string(text))
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", text)
}

// StatusEvent is the Detail of every EventFetchStatus event. Value is the
// raw input for EMPTY, DEBOUNCING and PENDING, and the Response for SUCCESS
// and ERROR (or the *StreamError[Response] for a reported transport
// failure).
type StatusEvent struct {
	Value  any    `json:"value"`
	Status Status `json:"status"`
}
