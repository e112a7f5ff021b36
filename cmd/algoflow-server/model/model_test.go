package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestProblemID(t *testing.T) {
	for _, body := range []string{
		`{"algorithm":"bubble_sort","problemId":1,"code":"x"}`,
		`{"algorithm":"bubble_sort","problemId":"1","code":"x"}`,
	} {
		var r Request
		require.NoError(t, json.Unmarshal([]byte(body), &r))
		assert.Equal(t, ProblemID("1"), r.ProblemID)
	}

	var r Request
	assert.Error(t, json.Unmarshal([]byte(`{"problemId":[1]}`), &r))
}

func TestConvertRequest(t *testing.T) {
	wr, err := ConvertRequest(&Request{RequestID: "a", Algorithm: "bubble_sort", ProblemID: "2", Code: "code", EntryPoint: "F"})
	require.NoError(t, err)
	assert.Equal(t, &worker.Request{RequestID: "a", Algorithm: "bubble_sort", ProblemID: "2", Code: "code", EntryPoint: "F"}, wr)

	_, err = ConvertRequest(&Request{ProblemID: "1", Code: "code"})
	assert.Error(t, err)
	_, err = ConvertRequest(&Request{Algorithm: "a", ProblemID: "1"})
	assert.Error(t, err)
	_, err = ConvertRequest(&Request{Algorithm: "a", ProblemID: "one", Code: "code"})
	assert.Error(t, err)
}

func TestConvertResponse(t *testing.T) {
	r := ConvertResponse(worker.Response{
		RequestID: "a",
		Algorithm: "bubble_sort",
		ProblemID: 1,
		Results:   []grader.Result{{Status: grader.StatusRejected, Error: "forbidden function used: sort.Ints"}},
		Time:      time.Millisecond,
	})
	assert.True(t, r.Rejected)
	assert.Equal(t, uint64(time.Millisecond), r.Time)
	assert.Empty(t, r.Error)

	r = ConvertResponse(worker.Response{RequestID: "b", Error: errors.New("problem not found")})
	assert.Equal(t, "problem not found", r.Error)
	assert.NotNil(t, r.Results)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{"requestId":"b","algorithm":"","problemId":0,"results":[],"passed":0,"total":0,"rejected":false,"time":0,"error":"problem not found"}`, string(b))
}
