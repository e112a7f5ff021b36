package worker

import (
	"errors"
	"fmt"
	"time"

	"github.com/algoflow/judge/grader"
)

// ErrProblemNotFound is returned when the requested problem is not in the catalog
var ErrProblemNotFound = errors.New("problem not found")

// Request defines single grading request
type Request struct {
	RequestID  string
	Algorithm  string
	ProblemID  string
	Code       string
	EntryPoint string

	// Progress receives every case record as soon as it finishes
	Progress grader.Progress
}

// Response defines worker response for single request
type Response struct {
	RequestID string
	Algorithm string
	ProblemID int
	Results   []grader.Result
	Passed    int
	Total     int
	Time      time.Duration
	Error     error
}

// Rejected reports whether the submission never ran a case
func (r Response) Rejected() bool {
	return grader.Rejected(r.Results)
}

func (r Response) String() string {
	if r.Error != nil {
		return fmt.Sprintf("Response[%s]{error: %v}", r.RequestID, r.Error)
	}
	return fmt.Sprintf("Response[%s]{%s #%d: %d/%d passed, time: %v}",
		r.RequestID, r.Algorithm, r.ProblemID, r.Passed, r.Total, r.Time)
}
