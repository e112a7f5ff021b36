package grader

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var errTimeLimit = errors.New("time limit exceeded")

type invokeResult struct {
	out any
	err error
}

// invoke calls fn under the case deadline. Interpreted code cannot be
// stopped, a case that exceeds the deadline keeps its goroutine until it
// returns on its own.
func (g *Grader) invoke(ctx context.Context, fn Func, input any) (any, error) {
	if g.caseTimeout <= 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return call(fn, input)
	}

	ctx, cancel := context.WithTimeout(ctx, g.caseTimeout)
	defer cancel()

	ch := make(chan invokeResult, 1)
	go func() {
		out, err := call(fn, input)
		ch <- invokeResult{out: out, err: err}
	}()

	select {
	case r := <-ch:
		return r.out, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %v", errTimeLimit, g.caseTimeout.Round(time.Millisecond))
		}
		return nil, ctx.Err()
	}
}

// call converts panics into errors
func call(fn Func, input any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	return fn(input)
}
