// Package grader drives a submission through validation, loading and the
// execution of every test case of a problem.
//
// A run moves through INIT, VALIDATING, then either REJECTED or RUNNING, and
// ends in COMPLETE. While RUNNING, cases execute one at a time and each ends
// in PASS, FAIL or CASE_ERROR without affecting the others. Every failure is
// reported as data in the result records, nothing escapes as a panic.
package grader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/algoflow/judge/catalog"
	"github.com/algoflow/judge/seq"
	"github.com/algoflow/judge/validator"
	"github.com/algoflow/judge/value"
	"go.uber.org/zap"
)

// Messages of the records produced when no case runs
const (
	MsgNotFound = "solution function not found"
	MsgLoad     = "failed to load solution"
)

var (
	// ErrNotFound signals that the entry point is absent from a submission
	ErrNotFound = errors.New(MsgNotFound)
	// ErrLoad signals that a submission could not be evaluated
	ErrLoad = errors.New(MsgLoad)
)

// Func is a loaded submission. The input is either a private copy of the
// test case input or a *seq.Slice over such a copy.
type Func func(input any) (any, error)

// Loader resolves an entry point of a submission into a Func
type Loader interface {
	Load(ctx context.Context, path, entry string) (Func, error)
}

// Submission locates the source of a submission
type Submission struct {
	Path       string
	EntryPoint string // defaults to the entry point of the problem
}

// Result is the record of a single test case, or the single error record of
// a submission that never ran
type Result struct {
	Test     int           `json:"test"`
	Input    any           `json:"input"`
	Output   any           `json:"output"`
	Expected any           `json:"expected"`
	Passed   bool          `json:"passed"`
	Swaps    *int          `json:"swaps,omitempty"`
	Error    string        `json:"error,omitempty"`
	Status   Status        `json:"status"`
	Time     time.Duration `json:"time"`
}

// Config defines grader configuration
type Config struct {
	Validator *validator.Validator
	Loader    Loader

	// CaseTimeout bounds the wall clock time of one case, 0 means unlimited
	CaseTimeout time.Duration

	Logger *zap.Logger

	// Observer is called with every finished run
	Observer func(*catalog.Problem, []Result)
}

// Grader grades submissions against problems
type Grader struct {
	validator   *validator.Validator
	loader      Loader
	caseTimeout time.Duration
	logger      *zap.Logger
	observer    func(*catalog.Problem, []Result)
}

// New creates a grader
func New(conf Config) *Grader {
	g := &Grader{
		validator:   conf.Validator,
		loader:      conf.Loader,
		caseTimeout: conf.CaseTimeout,
		logger:      conf.Logger,
		observer:    conf.Observer,
	}
	if g.validator == nil {
		g.validator = validator.New(nil, nil)
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	return g
}

// Progress is called after each case finishes
type Progress func(Result)

// Grade validates the source at sourcePath and runs fn against every case of
// p. A nil fn stands for a submission without its entry point.
func (g *Grader) Grade(ctx context.Context, fn Func, p *catalog.Problem, sourcePath string, progress Progress) []Result {
	if rt, ok := g.gate(p, sourcePath); !ok {
		return g.finish(p, rt)
	}
	if fn == nil {
		return g.finish(p, []Result{errRecord(StatusNotFound, MsgNotFound)})
	}
	return g.finish(p, g.run(ctx, fn, p, progress))
}

// GradeSubmission validates, loads and runs a submission. A rejected source
// is never loaded.
func (g *Grader) GradeSubmission(ctx context.Context, sub Submission, p *catalog.Problem, progress Progress) []Result {
	if rt, ok := g.gate(p, sub.Path); !ok {
		return g.finish(p, rt)
	}
	if g.loader == nil {
		return g.finish(p, []Result{errRecord(StatusLoadFailed, MsgLoad+": no loader configured")})
	}

	entry := sub.EntryPoint
	if entry == "" {
		entry = p.Entry()
	}
	fn, err := g.loader.Load(ctx, sub.Path, entry)
	switch {
	case errors.Is(err, ErrNotFound):
		g.logger.Debug("entry point not found", zap.String("entry", entry), zap.Error(err))
		return g.finish(p, []Result{errRecord(StatusNotFound, MsgNotFound)})
	case err != nil:
		g.logger.Debug("load failed", zap.String("path", sub.Path), zap.Error(err))
		msg := err.Error()
		if !errors.Is(err, ErrLoad) {
			msg = MsgLoad + ": " + msg
		}
		return g.finish(p, []Result{errRecord(StatusLoadFailed, msg)})
	case fn == nil:
		return g.finish(p, []Result{errRecord(StatusNotFound, MsgNotFound)})
	}
	return g.finish(p, g.run(ctx, fn, p, progress))
}

func (g *Grader) finish(p *catalog.Problem, rt []Result) []Result {
	if g.observer != nil {
		g.observer(p, rt)
	}
	return rt
}

// gate runs the validator, the returned records are only set on rejection
func (g *Grader) gate(p *catalog.Problem, sourcePath string) ([]Result, bool) {
	if p.Technique == "" {
		return nil, true
	}
	src, err := os.ReadFile(sourcePath)
	if err != nil {
		return []Result{errRecord(StatusLoadFailed, fmt.Sprintf("%s: %v", MsgLoad, err))}, false
	}
	v := g.validator.Validate(string(src), p.Technique)
	if !v.Admit {
		g.logger.Debug("submission rejected",
			zap.String("algorithm", p.Algorithm),
			zap.Int("problem", p.ID),
			zap.String("reason", v.Reason))
		return []Result{errRecord(StatusRejected, v.Reason)}, false
	}
	return nil, true
}

func errRecord(s Status, msg string) Result {
	return Result{Status: s, Error: msg}
}

func (g *Grader) run(ctx context.Context, fn Func, p *catalog.Problem, progress Progress) []Result {
	cases := p.Cases()
	results := make([]Result, 0, len(cases))
	for i, c := range cases {
		r := g.runCase(ctx, fn, p, i+1, c)
		g.logger.Debug("case finished",
			zap.String("algorithm", p.Algorithm),
			zap.Int("problem", p.ID),
			zap.Int("test", r.Test),
			zap.Stringer("status", r.Status),
			zap.Duration("time", r.Time))
		results = append(results, r)
		if progress != nil {
			progress(r)
		}
	}
	return results
}

func (g *Grader) runCase(ctx context.Context, fn Func, p *catalog.Problem, index int, c catalog.TestCase) Result {
	r := Result{
		Test:     index,
		Input:    value.Normalize(c.Input),
		Expected: value.Normalize(c.Output),
	}

	var (
		input   any = value.Normalize(c.Input)
		counter *seq.Counter
	)
	if p.TrackMutations {
		elems, ok := input.([]any)
		if !ok {
			r.Status = StatusCaseError
			r.Error = fmt.Sprintf("input %s is not a sequence", catalog.Render(c.Input))
			r.Output = r.Error
			return r
		}
		counter = new(seq.Counter)
		input = seq.New(elems, counter)
	}

	start := time.Now()
	out, err := g.invoke(ctx, fn, input)
	r.Time = time.Since(start)
	if counter != nil {
		swaps := counter.Load()
		r.Swaps = &swaps
	}

	switch {
	case errors.Is(err, errTimeLimit):
		r.Status = StatusTimeLimitExceeded
		r.Error = err.Error()
		r.Output = r.Error
	case err != nil:
		r.Status = StatusCaseError
		r.Error = err.Error()
		if r.Error == "" {
			r.Error = "unknown error"
		}
		r.Output = r.Error
	default:
		if s, ok := out.(*seq.Slice); ok && s != nil {
			out = s.Values()
		}
		r.Output = value.Normalize(out)
		r.Passed = value.Equal(r.Expected, r.Output)
		if r.Passed {
			r.Status = StatusPassed
		} else {
			r.Status = StatusFailed
			g.logger.Debug("output mismatch", zap.Int("test", index), zap.String("diff", value.Diff(r.Expected, r.Output)))
		}
	}
	return r
}
