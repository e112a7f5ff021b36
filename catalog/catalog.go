// Package catalog provides the immutable problem records a submission is
// graded against.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/algoflow/judge/validator"
	"github.com/algoflow/judge/value"
	"github.com/goccy/go-yaml"
)

//go:embed problems.yaml
var defaultProblems []byte

// ErrNotFound is returned when a problem does not exist in the catalog
var ErrNotFound = errors.New("problem not found")

// TestCase defines a single input / expected output pair
type TestCase struct {
	Input  any `yaml:"input" json:"input"`
	Output any `yaml:"output" json:"output"`
}

// Problem defines a single problem of an algorithm
type Problem struct {
	ID          int        `yaml:"id" json:"id"`
	Title       string     `yaml:"title" json:"title"`
	Description string     `yaml:"description" json:"description"`
	InputDesc   string     `yaml:"input_desc" json:"inputDesc"`
	OutputDesc  string     `yaml:"output_desc" json:"outputDesc"`
	Constraints []string   `yaml:"constraints" json:"constraints"`
	Examples    []TestCase `yaml:"examples" json:"examples"`
	Hidden      []TestCase `yaml:"hidden_tests" json:"-"`

	// grading parameters
	Technique      string `yaml:"technique" json:"technique,omitempty"`
	TrackMutations bool   `yaml:"track_mutations" json:"trackMutations"`
	EntryPoint     string `yaml:"entry_point" json:"entryPoint,omitempty"`

	// Algorithm is filled from the enclosing section
	Algorithm string `yaml:"-" json:"algorithm"`
}

// Cases returns the examples followed by the hidden tests
func (p *Problem) Cases() []TestCase {
	c := make([]TestCase, 0, len(p.Examples)+len(p.Hidden))
	c = append(c, p.Examples...)
	return append(c, p.Hidden...)
}

// Entry returns the entry point name a submission must define
func (p *Problem) Entry() string {
	if p.EntryPoint != "" {
		return p.EntryPoint
	}
	return p.Algorithm
}

type algorithm struct {
	Name     string     `yaml:"name"`
	Problems []*Problem `yaml:"problems"`
}

type catalogFile struct {
	Techniques map[string]validator.Rule `yaml:"techniques"`
	Algorithms []algorithm                `yaml:"algorithms"`
}

// Catalog holds problems keyed by algorithm name
type Catalog struct {
	order      []string
	problems   map[string][]*Problem
	techniques map[string]validator.Rule
}

// Load decodes a catalog from YAML
func Load(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	c := &Catalog{
		problems:   make(map[string][]*Problem, len(f.Algorithms)),
		techniques: f.Techniques,
	}
	if c.techniques == nil {
		c.techniques = make(map[string]validator.Rule)
	}
	for _, a := range f.Algorithms {
		if a.Name == "" {
			return nil, errors.New("catalog: algorithm without name")
		}
		if _, ok := c.problems[a.Name]; ok {
			return nil, fmt.Errorf("catalog: duplicated algorithm %s", a.Name)
		}
		seen := make(map[int]bool, len(a.Problems))
		for _, p := range a.Problems {
			if seen[p.ID] {
				return nil, fmt.Errorf("catalog: %s: duplicated problem id %d", a.Name, p.ID)
			}
			seen[p.ID] = true
			if p.Technique != "" {
				if _, ok := c.techniques[p.Technique]; !ok {
					return nil, fmt.Errorf("catalog: %s #%d: unknown technique %q", a.Name, p.ID, p.Technique)
				}
			}
			p.Algorithm = a.Name
			normalizeCases(p.Examples)
			normalizeCases(p.Hidden)
		}
		c.order = append(c.order, a.Name)
		c.problems[a.Name] = a.Problems
	}
	return c, nil
}

func normalizeCases(cs []TestCase) {
	for i := range cs {
		cs[i].Input = value.Normalize(cs[i].Input)
		cs[i].Output = value.Normalize(cs[i].Output)
	}
}

// LoadFile loads a catalog from path
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return Load(b)
}

// Default returns the catalog shipped with the binary
func Default() (*Catalog, error) {
	return Load(defaultProblems)
}

// Algorithms returns algorithm names in declaration order
func (c *Catalog) Algorithms() []string {
	return append([]string(nil), c.order...)
}

// List returns problems of algorithm in order, empty if unknown
func (c *Catalog) List(algorithm string) []*Problem {
	return append([]*Problem(nil), c.problems[algorithm]...)
}

// Get finds a problem by algorithm and id
func (c *Catalog) Get(algorithm, id string) (*Problem, bool) {
	id = strings.TrimSpace(id)
	for _, p := range c.problems[algorithm] {
		if strconv.Itoa(p.ID) == id {
			return p, true
		}
	}
	return nil, false
}

// Techniques returns the technique rules declared by the catalog
func (c *Catalog) Techniques() map[string]validator.Rule {
	r := make(map[string]validator.Rule, len(c.techniques))
	for k, v := range c.techniques {
		r[k] = v
	}
	return r
}
