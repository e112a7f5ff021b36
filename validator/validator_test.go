package validator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const bubbleSort = `package main

func BubbleSort(arr []int) []int {
	for i := 0; i < len(arr); i++ {
		for j := 0; j < len(arr)-1-i; j++ {
			if arr[j] > arr[j+1] {
				arr[j], arr[j+1] = arr[j+1], arr[j]
			}
		}
	}
	return arr
}
`

const librarySort = `package main

import "sort"

func BubbleSort(arr []int) []int {
	sort.Ints(arr)
	return arr
}
`

const singleLoop = `package main

func BubbleSort(arr []int) []int {
	for i := 0; i < len(arr)-1; i++ {
		if arr[i] > arr[i+1] {
			arr[i], arr[i+1] = arr[i+1], arr[i]
		}
	}
	return arr
}
`

var testRules = map[string]Rule{
	"bubble_sort": {
		Forbidden:      []string{"sort.Ints(", "slices.Sort(", "min(", "max("},
		MinLoops:       2,
		MinComparisons: 1,
	},
	"tokens_only": {
		Name:      "tokens only",
		Forbidden: []string{"sort."},
	},
}

func newValidator(t *testing.T) *Validator {
	return New(testRules, zaptest.NewLogger(t))
}

func TestValidateAdmitsNestedLoops(t *testing.T) {
	v := newValidator(t)
	assert.Equal(t, Admitted, v.Validate(bubbleSort, "bubble_sort"))
}

func TestValidateRejectsForbidden(t *testing.T) {
	v := newValidator(t)
	got := v.Validate(librarySort, "bubble_sort")
	require.False(t, got.Admit)
	assert.Contains(t, got.Reason, ReasonForbidden)
	assert.Contains(t, got.Reason, "sort.Ints")
}

// The token scan runs on raw text, so it rejects even when the source does
// not parse.
func TestValidateForbiddenBeforeParse(t *testing.T) {
	v := newValidator(t)
	got := v.Validate("func broken( { x := min(1, 2) ", "bubble_sort")
	require.False(t, got.Admit)
	assert.True(t, strings.HasPrefix(got.Reason, ReasonForbidden))
}

func TestValidateRejectsForbiddenReference(t *testing.T) {
	tests := []struct {
		name string
		src  string
		ref  string
	}{
		{"method value", "package main\n\nimport \"sort\"\n\nfunc BubbleSort(arr []int) []int {\n\tf := sort.Ints\n\tf(arr)\n\treturn arr\n}\n", "sort.Ints"},
		{"renamed import", "package main\n\nimport s \"sort\"\n\nfunc BubbleSort(arr []int) []int {\n\ts.Ints(arr)\n\treturn arr\n}\n", "sort.Ints"},
		{"generic value", "import \"slices\"\n\nvar sorter = slices.Sort[[]int]\n", "slices.Sort"},
	}
	v := newValidator(t)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := v.Validate(tc.src, "bubble_sort")
			require.False(t, got.Admit)
			assert.Equal(t, ReasonForbidden+": "+tc.ref, got.Reason)
		})
	}

	// other members of the same package stay allowed
	src := strings.Replace(bubbleSort, "package main\n", "package main\n\nimport \"sort\"\n\nvar _ = sort.SearchInts\n", 1)
	assert.Equal(t, Admitted, v.Validate(src, "bubble_sort"))
}

func TestValidateRejectsShape(t *testing.T) {
	v := newValidator(t)
	got := v.Validate(singleLoop, "bubble_sort")
	require.False(t, got.Admit)
	assert.Equal(t, "does not appear to implement bubble sort", got.Reason)
}

func TestValidateParseError(t *testing.T) {
	v := newValidator(t)
	got := v.Validate("package main\nfunc (", "bubble_sort")
	require.False(t, got.Admit)
	assert.True(t, strings.HasPrefix(got.Reason, "does not appear to implement bubble sort: "))
}

func TestValidateWithoutTechnique(t *testing.T) {
	v := newValidator(t)
	assert.True(t, v.Validate(librarySort, "").Admit)
	assert.False(t, v.Validate(bubbleSort, "quantum_sort").Admit)
}

func TestValidateTokensOnly(t *testing.T) {
	v := newValidator(t)
	assert.True(t, v.Validate(singleLoop, "tokens_only").Admit)
	assert.False(t, v.Validate(librarySort, "tokens_only").Admit)
}

func TestShape(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		loops int
		cmps  int
	}{
		{"nested for", bubbleSort, 2, 3},
		{"range and for", "func f(a []int) { for range a { for i := 0; i != 3; i++ {} } }", 2, 1},
		{"no package clause", "func f() bool { return 1 == 2 }", 0, 1},
		{"arithmetic only", "package p\nfunc f(a, b int) int { return a + b*2 }", 0, 0},
		{"comparison inside closure", "package p\nvar f = func(a, b int) bool { return a <= b && b >= 0 }", 0, 2},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, err := Shape(tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.loops, c.Loops)
			assert.Equal(t, tc.cmps, c.Comparisons)
		})
	}
}

func TestDefaultRuleName(t *testing.T) {
	v := newValidator(t)
	r, ok := v.Rule("bubble_sort")
	require.True(t, ok)
	assert.Equal(t, "bubble sort", r.Name)
	r, _ = v.Rule("tokens_only")
	assert.Equal(t, "tokens only", r.Name)
}
