package restexecutor

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/algoflow/judge/cmd/algoflow-server/model"
	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/worker"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mockWorker is a mock implementation of the worker.Worker interface
type mockWorker struct {
	// The response to send back when Submit is called
	Response worker.Response
	Requests []*worker.Request
	worker.Worker
}

func (m *mockWorker) Submit(_ context.Context, req *worker.Request) <-chan worker.Response {
	m.Requests = append(m.Requests, req)
	rtCh := make(chan worker.Response, 1)
	rt := m.Response
	rt.RequestID = req.RequestID
	rtCh <- rt
	return rtCh
}

func postGrade(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/grade", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestHandleGrade(t *testing.T) {
	router := gin.Default()
	mw := &mockWorker{Response: worker.Response{
		Algorithm: "bubble_sort",
		ProblemID: 1,
		Results: []grader.Result{
			{Test: 1, Input: []any{3, 1, 2}, Output: []any{1, 2, 3}, Expected: []any{1, 2, 3}, Passed: true, Status: grader.StatusPassed},
		},
		Passed: 1,
		Total:  1,
	}}
	NewGradeHandle(mw, zaptest.NewLogger(t)).Register(router)

	recorder := postGrade(t, router, map[string]any{
		"requestId": "qwq",
		"algorithm": "bubble_sort",
		"problemId": 1,
		"code":      "package main",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	var resp model.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, "qwq", resp.RequestID)
	assert.Equal(t, 1, resp.Passed)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, grader.StatusPassed, resp.Results[0].Status)

	require.Len(t, mw.Requests, 1)
	assert.Equal(t, "1", mw.Requests[0].ProblemID)
}

func TestHandleGradeBadRequest(t *testing.T) {
	router := gin.Default()
	mw := &mockWorker{}
	NewGradeHandle(mw, zaptest.NewLogger(t)).Register(router)

	recorder := postGrade(t, router, map[string]any{"algorithm": "bubble_sort", "problemId": 1})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)

	req := httptest.NewRequest(http.MethodPost, "/grade", bytes.NewReader([]byte("{")))
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, mw.Requests)
}

func TestHandleGradeProblemNotFound(t *testing.T) {
	router := gin.Default()
	mw := &mockWorker{Response: worker.Response{Error: worker.ErrProblemNotFound}}
	NewGradeHandle(mw, zaptest.NewLogger(t)).Register(router)

	recorder := postGrade(t, router, map[string]any{"algorithm": "bubble_sort", "problemId": "42", "code": "x"})
	assert.Equal(t, http.StatusNotFound, recorder.Code)

	var resp model.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Equal(t, worker.ErrProblemNotFound.Error(), resp.Error)
}
