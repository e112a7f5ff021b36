package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/algoflow/judge/worker"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestTokenAuth(t *testing.T) {
	r := gin.New()
	r.Use(tokenAuth("secret"))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })

	for header, code := range map[string]int{
		"":              http.StatusUnauthorized,
		"secret":        http.StatusUnauthorized,
		"Bearer wrong":  http.StatusUnauthorized,
		"Bearer secret": http.StatusOK,
	} {
		req := httptest.NewRequest(http.MethodGet, "/ok", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, code, w.Code, header)
	}
}

func TestGradeOutcome(t *testing.T) {
	assert.Equal(t, "passed", gradeOutcome(worker.Response{Passed: 2, Total: 2}))
	assert.Equal(t, "failed", gradeOutcome(worker.Response{Passed: 1, Total: 2}))
	assert.Equal(t, "failed", gradeOutcome(worker.Response{}))
}
