// Package restexecutor provides the REST handles of the grading server.
package restexecutor

import "github.com/gin-gonic/gin"

// Register registers the handler
type Register interface {
	Register(*gin.Engine)
}
