package loader

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/seq"
	"github.com/algoflow/judge/value"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	sliceType = reflect.TypeOf((*seq.Slice)(nil))

	// ErrUntracked is returned when a counted sequence would reach the
	// solution only as an uncounted copy
	ErrUntracked = errors.New("tracked problem requires a *seq.Slice parameter")
)

// candidates returns the names tried for entry, in order
func candidates(entry string) []string {
	names := []string{entry, camel(entry, true), camel(entry, false), "Solve", "solve"}
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// camel converts snake_case to CamelCase or lowerCamel
func camel(s string, upper bool) string {
	var b strings.Builder
	next := upper
	for _, r := range s {
		if r == '_' || r == '-' || r == ' ' {
			next = true
			continue
		}
		if next {
			r = unicode.ToUpper(r)
			next = false
		} else if b.Len() == 0 {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}

// adapt wraps an interpreted function of any shape with at least one
// parameter into a grader.Func
func adapt(fn reflect.Value) (grader.Func, error) {
	if fn.Kind() != reflect.Func {
		return nil, fmt.Errorf("%s is not a function", fn.Type())
	}
	ft := fn.Type()
	if ft.NumIn() == 0 {
		return nil, errors.New("function takes no input")
	}
	if ft.IsVariadic() {
		return nil, errors.New("variadic functions are not supported")
	}
	if ft.NumOut() > 2 || (ft.NumOut() == 2 && ft.Out(1) != errorType) {
		return nil, fmt.Errorf("unsupported results of %s", ft)
	}

	return func(input any) (any, error) {
		args, err := arguments(ft, input)
		if err != nil {
			return nil, err
		}
		res := fn.Call(args)
		return results(ft, res)
	}, nil
}

func arguments(ft reflect.Type, input any) ([]reflect.Value, error) {
	n := ft.NumIn()
	if n == 1 {
		v, err := convert(input, ft.In(0))
		if err != nil {
			return nil, err
		}
		return []reflect.Value{v}, nil
	}

	// spread the input over the parameters
	var elems []any
	switch in := input.(type) {
	case []any:
		elems = in
	case *seq.Slice:
		if in.Tracked() {
			return nil, fmt.Errorf("%w, %s spreads it over %d arguments", ErrUntracked, ft, n)
		}
		elems = in.Values()
	}
	if len(elems) != n {
		return nil, fmt.Errorf("solution takes %d arguments, input has %d elements", n, len(elems))
	}
	args := make([]reflect.Value, n)
	for i, e := range elems {
		v, err := convert(e, ft.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		args[i] = v
	}
	return args, nil
}

// convert builds a value of type t from the input. The tracking container
// is passed through only to parameters declared as *seq.Slice. A counted
// container offered to any other parameter type is an error, an uncounted
// one is converted to a copy.
func convert(input any, t reflect.Type) (reflect.Value, error) {
	if t == sliceType {
		switch in := input.(type) {
		case *seq.Slice:
			return reflect.ValueOf(in), nil
		case []any:
			return reflect.ValueOf(seq.New(in, nil)), nil
		}
		return reflect.Value{}, fmt.Errorf("input %T is not a sequence", input)
	}
	if s, ok := input.(*seq.Slice); ok {
		if s.Tracked() {
			return reflect.Value{}, fmt.Errorf("%w, got %s", ErrUntracked, t)
		}
		input = s.Values()
	}
	if t.Kind() == reflect.Interface {
		if input == nil {
			return reflect.Zero(t), nil
		}
		if v := reflect.ValueOf(input); v.Type().AssignableTo(t) {
			return v, nil
		}
	}
	return value.Into(input, t)
}

func results(ft reflect.Type, res []reflect.Value) (any, error) {
	if ft.NumOut() == 0 {
		return nil, nil
	}
	if ft.NumOut() == 2 {
		if e, ok := res[1].Interface().(error); ok && e != nil {
			return nil, e
		}
	}
	out := res[0].Interface()
	// a nil slice is an empty sequence, not a missing value
	if v := reflect.ValueOf(out); v.Kind() == reflect.Slice && v.IsNil() {
		return []any{}, nil
	}
	if s, ok := out.(*seq.Slice); ok {
		if s == nil {
			return nil, nil
		}
		return value.Normalize(s.Values()), nil
	}
	return value.FromJSON(out)
}
