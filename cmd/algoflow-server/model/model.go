// Package model defines the JSON wire format of the grading server.
package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/worker"
)

// ProblemID accepts both a JSON number and a JSON string
type ProblemID string

// UnmarshalJSON implements json.Unmarshaler
func (p *ProblemID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = ProblemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("problemId: %w", err)
	}
	*p = ProblemID(n.String())
	return nil
}

// Request defines a single grading request
type Request struct {
	RequestID  string    `json:"requestId"`
	Algorithm  string    `json:"algorithm"`
	ProblemID  ProblemID `json:"problemId"`
	Code       string    `json:"code"`
	EntryPoint string    `json:"entryPoint,omitempty"`
}

// Response defines the result of a grading request
type Response struct {
	RequestID string          `json:"requestId"`
	Algorithm string          `json:"algorithm"`
	ProblemID int             `json:"problemId"`
	Results   []grader.Result `json:"results"`
	Passed    int             `json:"passed"`
	Total     int             `json:"total"`
	Rejected  bool            `json:"rejected"`
	Time      uint64          `json:"time"`
	Error     string          `json:"error,omitempty"`
}

// Event types streamed over websocket
const (
	EventCase   = "case"
	EventResult = "result"
)

// Event is a single websocket message, Case is set for EventCase and
// Response for EventResult
type Event struct {
	Type      string         `json:"type"`
	RequestID string         `json:"requestId"`
	Case      *grader.Result `json:"case,omitempty"`
	Response  *Response      `json:"response,omitempty"`
}

var (
	errNoAlgorithm = errors.New("no algorithm provided")
	errNoCode      = errors.New("no code provided")
)

// ConvertRequest converts json request into worker request
func ConvertRequest(r *Request) (*worker.Request, error) {
	if r.Algorithm == "" {
		return nil, errNoAlgorithm
	}
	if r.Code == "" {
		return nil, errNoCode
	}
	id := string(r.ProblemID)
	if _, err := strconv.Atoi(id); err != nil {
		return nil, fmt.Errorf("invalid problemId %q", id)
	}
	return &worker.Request{
		RequestID:  r.RequestID,
		Algorithm:  r.Algorithm,
		ProblemID:  id,
		Code:       r.Code,
		EntryPoint: r.EntryPoint,
	}, nil
}

// ConvertResponse converts worker response into json response
func ConvertResponse(r worker.Response) Response {
	ret := Response{
		RequestID: r.RequestID,
		Algorithm: r.Algorithm,
		ProblemID: r.ProblemID,
		Results:   r.Results,
		Passed:    r.Passed,
		Total:     r.Total,
		Rejected:  r.Rejected(),
		Time:      uint64(r.Time),
	}
	if ret.Results == nil {
		ret.Results = []grader.Result{}
	}
	if r.Error != nil {
		ret.Error = r.Error.Error()
	}
	return ret
}
