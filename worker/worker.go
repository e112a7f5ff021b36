// Package worker runs grading requests on a fixed number of goroutines.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/algoflow/judge/catalog"
	"github.com/algoflow/judge/filestore"
	"github.com/algoflow/judge/grader"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxWaiting = 512

// Problems resolves problems of a request
type Problems interface {
	Get(algorithm, id string) (*catalog.Problem, bool)
}

// Grader grades a stored submission
type Grader interface {
	GradeSubmission(ctx context.Context, sub grader.Submission, p *catalog.Problem, progress grader.Progress) []grader.Result
}

// Config defines worker configuration
type Config struct {
	FileStore    filestore.FileStore
	Problems     Problems
	Grader       Grader
	Parallelism  int
	Logger       *zap.Logger
	ExecObserver func(Response)
}

// Worker defines interface for grading worker
type Worker interface {
	Start()
	Submit(context.Context, *Request) <-chan Response
	Execute(context.Context, *Request) <-chan Response
	Shutdown()
}

// worker defines grading worker
type worker struct {
	fs          filestore.FileStore
	problems    Problems
	grader      Grader
	parallelism int
	logger      *zap.Logger

	execObserver func(Response)

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	workCh    chan workRequest
	done      chan struct{}
}

type workRequest struct {
	*Request
	context.Context
	resultCh chan<- Response
}

// New creates new worker
func New(conf Config) Worker {
	w := &worker{
		fs:           conf.FileStore,
		problems:     conf.Problems,
		grader:       conf.Grader,
		parallelism:  conf.Parallelism,
		logger:       conf.Logger,
		execObserver: conf.ExecObserver,
	}
	if w.parallelism <= 0 {
		w.parallelism = 1
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w
}

// Start starts worker loops with given parallelism
func (w *worker) Start() {
	w.startOnce.Do(func() {
		w.workCh = make(chan workRequest, maxWaiting)
		w.done = make(chan struct{})
		w.wg.Add(w.parallelism)
		for i := 0; i < w.parallelism; i++ {
			go w.loop()
		}
	})
}

// Submit queues a single request
func (w *worker) Submit(ctx context.Context, req *Request) <-chan Response {
	ch := make(chan Response, 1)
	assignID(req)
	select {
	case w.workCh <- workRequest{
		Request:  req,
		Context:  ctx,
		resultCh: ch,
	}:
	case <-ctx.Done():
		ch <- Response{RequestID: req.RequestID, Error: ctx.Err()}
	}
	return ch
}

// Execute will grade the request in new goroutine (bypass the parallelism limit)
func (w *worker) Execute(ctx context.Context, req *Request) <-chan Response {
	ch := make(chan Response, 1)
	assignID(req)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.workDo(workRequest{
			Request:  req,
			Context:  ctx,
			resultCh: ch,
		})
	}()
	return ch
}

// Shutdown waits all worker to finish
func (w *worker) Shutdown() {
	w.stopOnce.Do(func() {
		if w.done != nil {
			close(w.done)
		}
		w.wg.Wait()
	})
}

func assignID(req *Request) {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
}

func (w *worker) loop() {
	defer w.wg.Done()
	for {
		select {
		case req, ok := <-w.workCh:
			if !ok {
				return
			}
			w.workDo(req)
		case <-w.done:
			return
		}
	}
}

func (w *worker) workDo(req workRequest) {
	start := time.Now()
	rt := w.grade(req.Context, req.Request)
	rt.RequestID = req.RequestID
	rt.Time = time.Since(start)
	if w.execObserver != nil {
		w.execObserver(rt)
	}
	req.resultCh <- rt
}

func (w *worker) grade(ctx context.Context, req *Request) (rt Response) {
	rt.Algorithm = req.Algorithm
	if err := ctx.Err(); err != nil {
		rt.Error = err
		return
	}
	p, ok := w.problems.Get(req.Algorithm, req.ProblemID)
	if !ok {
		rt.Error = ErrProblemNotFound
		return
	}
	rt.ProblemID = p.ID

	id, path, err := w.fs.Add("solution.go", []byte(req.Code))
	if err != nil {
		rt.Error = err
		return
	}
	defer w.fs.Remove(id)

	w.logger.Debug("grading",
		zap.String("requestId", req.RequestID),
		zap.String("algorithm", p.Algorithm),
		zap.Int("problem", p.ID))
	rt.Results = w.grader.GradeSubmission(ctx, grader.Submission{
		Path:       path,
		EntryPoint: req.EntryPoint,
	}, p, req.Progress)
	rt.Passed, rt.Total = grader.Summary(rt.Results)
	return
}
