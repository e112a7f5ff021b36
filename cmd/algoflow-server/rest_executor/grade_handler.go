package restexecutor

import (
	"errors"
	"net/http"

	"github.com/algoflow/judge/cmd/algoflow-server/model"
	"github.com/algoflow/judge/worker"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type gradeHandle struct {
	worker worker.Worker
	logger *zap.Logger
}

// NewGradeHandle creates a new grade handle
func NewGradeHandle(worker worker.Worker, logger *zap.Logger) Register {
	return &gradeHandle{
		worker: worker,
		logger: logger,
	}
}

func (g *gradeHandle) Register(r *gin.Engine) {
	r.POST("/grade", g.handleGrade)
}

func (g *gradeHandle) handleGrade(ctx *gin.Context) {
	var req model.Request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}
	r, err := model.ConvertRequest(&req)
	if err != nil {
		ctx.Error(err)
		ctx.AbortWithStatusJSON(http.StatusBadRequest, err.Error())
		return
	}

	rt := <-g.worker.Submit(ctx.Request.Context(), r)
	g.logger.Sugar().Debugf("response: %v", rt)
	if rt.Error != nil {
		ctx.Error(rt.Error)
		code := http.StatusInternalServerError
		if errors.Is(rt.Error, worker.ErrProblemNotFound) {
			code = http.StatusNotFound
		}
		ctx.AbortWithStatusJSON(code, model.ConvertResponse(rt))
		return
	}
	ctx.JSON(http.StatusOK, model.ConvertResponse(rt))
}
