package value

import (
	"math"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	in := []any{int64(1), uint64(2), float64(3), 2.5, "x", []int{4, 5}, map[string]any{"k": int32(6)}}
	want := []any{1, 2, 3, 2.5, "x", []any{4, 5}, map[string]any{"k": 6}}
	assert.Equal(t, want, Normalize(in))
}

func TestNormalizeLargeUnsigned(t *testing.T) {
	assert.Equal(t, math.MaxInt, Normalize(uint64(math.MaxInt)))
	assert.Equal(t, float64(1<<63), Normalize(uint64(1<<63)))
	assert.Equal(t, float64(math.MaxUint64), Normalize(uint64(math.MaxUint64)))
	assert.Equal(t, float64(math.MaxUint), Normalize(uint(math.MaxUint)))

	v, ok := Normalize(uint64(math.MaxUint64)).(float64)
	require.True(t, ok)
	assert.Positive(t, v)
}

func TestNormalizeCopies(t *testing.T) {
	in := []any{1, []any{2, 3}}
	out := Normalize(in).([]any)
	out[0] = 9
	out[1].([]any)[0] = 9
	assert.Equal(t, []any{1, []any{2, 3}}, in)
}

func TestFromJSON(t *testing.T) {
	type student struct {
		Name  string `json:"name"`
		Score int    `json:"score"`
	}
	v, err := FromJSON([]student{{"Bob", 92}})
	require.NoError(t, err)
	assert.Equal(t, []any{map[string]any{"name": "Bob", "score": 92}}, v)

	_, err = FromJSON(make(chan int))
	assert.Error(t, err)
}

func TestInto(t *testing.T) {
	v, err := Into([]any{3, 1, 2}, reflect.TypeOf([]int(nil)))
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 2}, v.Interface())

	_, err = Into([]any{"a"}, reflect.TypeOf([]int(nil)))
	assert.Error(t, err)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal([]any{int64(1), uint64(2)}, []int{1, 2}))
	assert.True(t, Equal(float64(4), 4))
	assert.False(t, Equal([]any{1, 2}, []any{2, 1}))
	assert.NotEmpty(t, Diff([]any{1}, []any{2}))
	assert.Empty(t, Diff([]any{1}, []int{1}))
}
