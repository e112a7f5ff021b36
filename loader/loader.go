// Package loader evaluates a Go submission with the yaegi interpreter and
// binds its entry point as a grader.Func.
//
// Every load uses a fresh interpreter that is dropped once the returned
// function is no longer referenced, so no state is shared between
// submissions. Top-level code, including a main function, runs while
// loading. That is accepted: the loader restricts imports but does not
// sandbox the submission.
package loader

import (
	"context"
	"fmt"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path"

	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/seq"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
	"go.uber.org/zap"
)

// DefaultAllowed lists the standard library packages a submission may import
var DefaultAllowed = []string{
	"bytes",
	"container/heap",
	"container/list",
	"errors",
	"fmt",
	"math",
	"slices",
	"sort",
	"strconv",
	"strings",
	"unicode",
	"unicode/utf8",
}

// Config defines loader configuration
type Config struct {
	// Allowed overrides DefaultAllowed when not nil
	Allowed []string
	// Stdout receives the output of the submission, discarded when nil
	Stdout io.Writer
	Logger *zap.Logger
}

// Loader loads submissions from source files
type Loader struct {
	symbols interp.Exports
	stdout  io.Writer
	logger  *zap.Logger
}

var _ grader.Loader = &Loader{}

// New creates a loader
func New(conf Config) *Loader {
	allowed := conf.Allowed
	if allowed == nil {
		allowed = DefaultAllowed
	}
	l := &Loader{
		symbols: filterSymbols(allowed),
		stdout:  conf.Stdout,
		logger:  conf.Logger,
	}
	if l.stdout == nil {
		l.stdout = io.Discard
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	return l
}

// filterSymbols keeps the stdlib exports of allowed import paths.
// Export keys have the form "import/path/name".
func filterSymbols(allowed []string) interp.Exports {
	ok := make(map[string]bool, len(allowed))
	for _, p := range allowed {
		ok[p] = true
	}
	e := make(interp.Exports)
	for k, v := range stdlib.Symbols {
		if ok[path.Dir(k)] {
			e[k] = v
		}
	}
	return e
}

// Load evaluates the file at p and returns the function bound to entry
func (l *Loader) Load(ctx context.Context, p, entry string) (grader.Func, error) {
	src, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grader.ErrLoad, err)
	}
	return l.LoadSource(ctx, string(src), entry)
}

// LoadSource evaluates src and returns the function bound to entry
func (l *Loader) LoadSource(ctx context.Context, src, entry string) (fn grader.Func, err error) {
	src, err = asMain(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", grader.ErrLoad, err)
	}

	// the interpreter may panic on code it fails to handle
	defer func() {
		if r := recover(); r != nil {
			fn, err = nil, fmt.Errorf("%w: %v", grader.ErrLoad, r)
		}
	}()

	i := interp.New(interp.Options{
		Stdout: l.stdout,
		Stderr: l.stdout,
	})
	if err := i.Use(l.symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", grader.ErrLoad, err)
	}
	if err := i.Use(seq.Symbols); err != nil {
		return nil, fmt.Errorf("%w: %v", grader.ErrLoad, err)
	}
	if _, err := i.EvalWithContext(ctx, src); err != nil {
		return nil, fmt.Errorf("%w: %v", grader.ErrLoad, err)
	}

	for _, name := range candidates(entry) {
		v, err := i.EvalWithContext(ctx, "main."+name)
		if err != nil || !v.IsValid() {
			continue
		}
		f, err := adapt(v)
		if err != nil {
			l.logger.Debug("entry point not usable", zap.String("name", name), zap.Error(err))
			continue
		}
		l.logger.Debug("entry point bound", zap.String("entry", entry), zap.String("name", name))
		return f, nil
	}
	return nil, fmt.Errorf("%w: %s", grader.ErrNotFound, entry)
}

// asMain rewrites the package clause to package main, adding one when the
// submission has none
func asMain(src string) (string, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", src, parser.PackageClauseOnly)
	if err != nil {
		// keep line numbers aligned with the submitted text
		return "package main; " + src, nil
	}
	if f.Name.Name == "main" {
		return src, nil
	}
	start := fset.Position(f.Name.Pos()).Offset
	end := fset.Position(f.Name.End()).Offset
	if start < 0 || end > len(src) || start > end {
		return "", fmt.Errorf("invalid package clause")
	}
	return src[:start] + "main" + src[end:], nil
}
