// Package validator gates a submission against the technique a problem
// requires before any of its code runs.
//
// Two checks are applied in order: a raw text scan for forbidden tokens
// (library sort or min/max helpers) and a shape scan over the parsed syntax
// tree counting iteration constructs and comparison expressions. Forbidden
// tokens of the form "pkg.Name(" are also matched against package member
// references in the syntax tree, so a method value such as
// "f := sort.Ints; f(a)" or a renamed import is rejected as well.
//
// Neither check follows values across declarations: a forbidden function
// reached through reflection or a bare builtin such as min assigned to a
// variable is not detected.
//
// The shape scan is a heuristic and not a proof. It accepts any program with
// enough loops and comparisons, even one that does something else, and it
// rejects correct but unconventional implementations such as a recursive
// bubble sort without loops. Thresholds are configured per technique.
package validator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Rejection reasons
const (
	ReasonForbidden = "forbidden function used"
	ReasonShape     = "does not appear to implement"
)

// Rule defines the constraints of a single technique
type Rule struct {
	Name           string   `yaml:"name" json:"name"`
	Forbidden      []string `yaml:"forbidden" json:"forbidden,omitempty"`
	MinLoops       int      `yaml:"min_loops" json:"minLoops"`
	MinComparisons int      `yaml:"min_comparisons" json:"minComparisons"`
}

// Verdict is the result of a validation
type Verdict struct {
	Admit  bool
	Reason string
}

// Admitted is the verdict for an accepted submission
var Admitted = Verdict{Admit: true}

// Reject creates a rejecting verdict
func Reject(reason string) Verdict {
	return Verdict{Reason: reason}
}

// Counts holds the node kinds counted by the shape scan
type Counts struct {
	Loops       int
	Comparisons int
}

// Validator checks submissions against a set of technique rules
type Validator struct {
	rules  map[string]Rule
	logger *zap.Logger
}

// New creates a validator for the given rules keyed by technique id
func New(rules map[string]Rule, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := make(map[string]Rule, len(rules))
	for k, v := range rules {
		if v.Name == "" {
			v.Name = strings.ReplaceAll(k, "_", " ")
		}
		r[k] = v
	}
	return &Validator{rules: r, logger: logger}
}

// Rule returns the rule registered for technique
func (v *Validator) Rule(technique string) (Rule, bool) {
	r, ok := v.rules[technique]
	return r, ok
}

// Validate decides whether source is admissible for technique.
// An empty technique admits everything.
func (v *Validator) Validate(source, technique string) Verdict {
	if technique == "" {
		return Admitted
	}
	rule, ok := v.rules[technique]
	if !ok {
		return Reject(fmt.Sprintf("unknown technique %q", technique))
	}
	return rule.Check(source, v.logger)
}

// Check applies the rule to source
func (r Rule) Check(source string, logger *zap.Logger) Verdict {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tok, ok := r.forbiddenToken(source); ok {
		logger.Debug("forbidden token", zap.String("technique", r.Name), zap.String("token", tok))
		return Reject(fmt.Sprintf("%s: %s", ReasonForbidden, strings.TrimSuffix(tok, "(")))
	}
	if ref, ok := r.forbiddenReference(source); ok {
		logger.Debug("forbidden reference", zap.String("technique", r.Name), zap.String("reference", ref))
		return Reject(fmt.Sprintf("%s: %s", ReasonForbidden, ref))
	}
	if r.MinLoops <= 0 && r.MinComparisons <= 0 {
		return Admitted
	}

	c, err := Shape(source)
	if err != nil {
		logger.Debug("shape scan parse failed", zap.String("technique", r.Name), zap.Error(err))
		return Reject(fmt.Sprintf("%s %s: %v", ReasonShape, r.Name, err))
	}
	logger.Debug("shape scan",
		zap.String("technique", r.Name),
		zap.Int("loops", c.Loops),
		zap.Int("comparisons", c.Comparisons))
	if c.Loops < r.MinLoops || c.Comparisons < r.MinComparisons {
		return Reject(fmt.Sprintf("%s %s", ReasonShape, r.Name))
	}
	return Admitted
}

func (r Rule) forbiddenToken(source string) (string, bool) {
	for _, tok := range r.Forbidden {
		if tok != "" && strings.Contains(source, tok) {
			return tok, true
		}
	}
	return "", false
}

// forbiddenReference looks for pkg.Name selectors whose call form is a
// forbidden token, resolving renamed imports to the package name. Sources
// that fail to parse are left to the shape scan.
func (r Rule) forbiddenReference(source string) (string, bool) {
	members := make(map[string]bool, len(r.Forbidden))
	for _, tok := range r.Forbidden {
		if name, ok := strings.CutSuffix(tok, "("); ok && strings.Contains(name, ".") {
			members[name] = true
		}
	}
	if len(members) == 0 {
		return "", false
	}
	f, err := parseSource(source)
	if err != nil {
		return "", false
	}

	imports := make(map[string]string, len(f.Imports))
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		local := path.Base(p)
		if spec.Name != nil {
			local = spec.Name.Name
		}
		imports[local] = path.Base(p)
	}

	var found string
	ast.Inspect(f, func(n ast.Node) bool {
		if found != "" {
			return false
		}
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		pkg, ok := imports[id.Name]
		if !ok {
			pkg = id.Name
		}
		if name := pkg + "." + sel.Sel.Name; members[name] {
			found = name
		}
		return true
	})
	return found, found != ""
}

// Shape parses source and counts iteration and comparison nodes anywhere
// in the tree. The package clause is optional.
func Shape(source string) (Counts, error) {
	f, err := parseSource(source)
	if err != nil {
		return Counts{}, err
	}
	var c Counts
	ast.Walk(&shapeVisitor{counts: &c}, f)
	return c, nil
}

func parseSource(source string) (*ast.File, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "submission.go", source, parser.SkipObjectResolution)
	if err == nil {
		return f, nil
	}
	if HasPackageClause(source) {
		return nil, err
	}
	// the line count stays aligned with the original text
	return parser.ParseFile(fset, "submission.go", "package main; "+source, parser.SkipObjectResolution)
}

// HasPackageClause reports whether source declares its package
func HasPackageClause(source string) bool {
	fset := token.NewFileSet()
	_, err := parser.ParseFile(fset, "", source, parser.PackageClauseOnly)
	return err == nil
}

type shapeVisitor struct {
	counts *Counts
}

func (v *shapeVisitor) Visit(n ast.Node) ast.Visitor {
	switch node := n.(type) {
	case *ast.ForStmt, *ast.RangeStmt:
		v.counts.Loops++
	case *ast.BinaryExpr:
		switch node.Op {
		case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
			v.counts.Comparisons++
		}
	}
	return v
}
