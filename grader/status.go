package grader

import (
	"fmt"
)

// Status defines the outcome of a single grade record
type Status int

// Defines grade record status
const (
	// not initialized status (as error)
	StatusInvalid Status = iota

	// case ran to completion
	StatusPassed
	StatusFailed

	// case raised
	StatusCaseError
	StatusTimeLimitExceeded

	// submission never ran
	StatusRejected
	StatusNotFound
	StatusLoadFailed
)

var statusToString = []string{
	"Invalid",
	"Passed",
	"Failed",
	"Case Error",
	"Time Limit Exceeded",
	"Rejected",
	"Solution Not Found",
	"Load Failed",
}

// stringToStatus map string to corresponding Status
var stringToStatus = make(map[string]Status)

func (s Status) String() string {
	si := int(s)
	if si < 0 || si >= len(statusToString) {
		return statusToString[0] // invalid
	}
	return statusToString[si]
}

// MarshalJSON convert status into string
func (s Status) MarshalJSON() ([]byte, error) {
	return []byte("\"" + s.String() + "\""), nil
}

// UnmarshalJSON convert string into status
func (s *Status) UnmarshalJSON(b []byte) error {
	v, err := StringToStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// StringToStatus convert a quoted string to Status
func StringToStatus(s string) (Status, error) {
	v, ok := stringToStatus[s]
	if !ok {
		return 0, fmt.Errorf("invalid string converting: %s", s)
	}
	return v, nil
}

// Gated reports whether the status ends the run before any case executes
func (s Status) Gated() bool {
	return s == StatusRejected || s == StatusNotFound || s == StatusLoadFailed
}

func init() {
	for i, v := range statusToString {
		stringToStatus["\""+v+"\""] = Status(i)
	}
}
