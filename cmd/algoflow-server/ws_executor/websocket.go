// Package wsexecutor streams grading progress over websocket.
//
// Every text message received is a grading request. The handle answers with
// one case event per finished test case followed by a single result event.
package wsexecutor

import (
	"context"
	"net/http"
	"time"

	"github.com/algoflow/judge/cmd/algoflow-server/model"
	"github.com/algoflow/judge/grader"
	"github.com/algoflow/judge/worker"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Register registers web socket handle /ws
type Register interface {
	Register(*gin.Engine)
}

// New creates new websocket handle
func New(worker worker.Worker, logger *zap.Logger) Register {
	return &wsHandle{
		worker: worker,
		logger: logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type wsHandle struct {
	worker worker.Worker
	logger *zap.Logger
}

func (h *wsHandle) Register(r *gin.Engine) {
	r.GET("/ws", h.handleWS)
}

func (h *wsHandle) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	eventCh := make(chan model.Event, 128)

	send := func(e model.Event) {
		select {
		case eventCh <- e:
		case <-ctx.Done():
		}
	}

	// read request
	go func() {
		defer cancel()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			req := new(model.Request)
			if err := conn.ReadJSON(req); err != nil {
				h.logger.Sugar().Debug("ws read error: ", err)
				return
			}
			r, err := model.ConvertRequest(req)
			if err != nil {
				h.logger.Sugar().Warn("convert error: ", err)
				send(model.Event{
					Type:      model.EventResult,
					RequestID: req.RequestID,
					Response:  &model.Response{RequestID: req.RequestID, Results: []grader.Result{}, Error: err.Error()},
				})
				continue
			}
			id := req.RequestID
			r.Progress = func(res grader.Result) {
				send(model.Event{Type: model.EventCase, RequestID: id, Case: &res})
			}
			go func() {
				ret := <-h.worker.Submit(ctx, r)
				resp := model.ConvertResponse(ret)
				send(model.Event{Type: model.EventResult, RequestID: resp.RequestID, Response: &resp})
			}()
		}
	}()

	// write result
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case e := <-eventCh:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(e); err != nil {
					h.logger.Sugar().Warn("ws write error: ", err)
					cancel()
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					cancel()
					return
				}
			}
		}
	}()
}
