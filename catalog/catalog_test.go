package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"bubble_sort", "merge_sort", "selection_sort", "insertion_sort"}, c.Algorithms())

	for _, a := range c.Algorithms() {
		ps := c.List(a)
		assert.NotEmpty(t, ps, a)
		for _, p := range ps {
			assert.Equal(t, a, p.Algorithm)
			assert.NotEmpty(t, p.Title)
			assert.NotEmpty(t, p.Examples, "%s #%d", a, p.ID)
			assert.NotEmpty(t, p.Entry())
		}
	}
	assert.Contains(t, c.Techniques(), "bubble_sort")
}

func TestGet(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	p, ok := c.Get("bubble_sort", "1")
	require.True(t, ok)
	assert.Equal(t, 1, p.ID)
	assert.True(t, p.TrackMutations)
	assert.Equal(t, "BubbleSort", p.Entry())

	p, ok = c.Get("bubble_sort", " 2 ")
	require.True(t, ok)
	assert.Equal(t, 2, p.ID)

	_, ok = c.Get("bubble_sort", "99")
	assert.False(t, ok)
	_, ok = c.Get("bubble_sort", "one")
	assert.False(t, ok)
	_, ok = c.Get("quick_sort", "1")
	assert.False(t, ok)
	assert.Empty(t, c.List("quick_sort"))
}

func TestCasesOrderAndNormalisation(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	p, ok := c.Get("bubble_sort", "1")
	require.True(t, ok)

	cases := p.Cases()
	require.Len(t, cases, len(p.Examples)+len(p.Hidden))
	assert.Equal(t, []any{6, 3, 2, 5, 9}, cases[0].Input)
	assert.Equal(t, []any{3, 1, 2}, cases[len(p.Examples)].Input)

	p, ok = c.Get("selection_sort", "4")
	require.True(t, ok)
	first := p.Examples[0].Input.([]any)[0]
	assert.Equal(t, map[string]any{"name": "Alice", "score": 85}, first)
}

const minimal = `
techniques:
  scan:
    min_loops: 1
algorithms:
  - name: sum
    problems:
      - id: 1
        title: Sum
        technique: scan
        examples:
          - input: [1, 2]
            output: 3
        hidden_tests:
          - input: [-1, 1.0]
            output: 0
`

func TestLoad(t *testing.T) {
	c, err := Load([]byte(minimal))
	require.NoError(t, err)

	p, ok := c.Get("sum", "1")
	require.True(t, ok)
	assert.Equal(t, "sum", p.Entry())
	assert.Equal(t, []any{-1, 1}, p.Hidden[0].Input)
	assert.Equal(t, 0, p.Hidden[0].Output)

	// the returned techniques are a copy
	r := c.Techniques()
	delete(r, "scan")
	assert.Contains(t, c.Techniques(), "scan")
}

func TestLoadErrors(t *testing.T) {
	for name, data := range map[string]string{
		"syntax":            "algorithms: [",
		"missing name":      "algorithms:\n  - problems: []\n",
		"duplicate name":    "algorithms:\n  - name: a\n  - name: a\n",
		"duplicate id":      "algorithms:\n  - name: a\n    problems:\n      - id: 1\n      - id: 1\n",
		"unknown technique": "algorithms:\n  - name: a\n    problems:\n      - id: 1\n        technique: quick\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load([]byte(data))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "problems.yaml")
	require.NoError(t, os.WriteFile(p, []byte(minimal), 0o644))
	c, err := LoadFile(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"sum"}, c.Algorithms())

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	p, _ := c.Get("bubble_sort", "1")

	s := Format(p)
	assert.True(t, strings.HasPrefix(s, "Problem 1: Bubble Sort Basic Algorithm\n"))
	assert.Contains(t, s, "Input: [6,3,2,5,9]\nOutput: [2,3,5,6,9]\n")
	assert.NotContains(t, s, "[3,1,2]", "hidden tests must not be shown")
}

func TestProblemJSONHidesTests(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	p, _ := c.Get("bubble_sort", "1")

	b, err := json.Marshal(p)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "hidden")
	assert.Contains(t, string(b), `"algorithm":"bubble_sort"`)
	assert.Equal(t, `[1,"a"]`, Render([]any{1, "a"}))
}
