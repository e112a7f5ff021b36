package main

import (
	"os"
	"sync"

	"github.com/algoflow/judge/filestore"
	"github.com/algoflow/judge/worker"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "algoflow"
)

var (
	// 1ms -> 10s
	timeBuckets = []float64{
		0.001, 0.002, 0.005, 0.008, 0.010, 0.025, 0.050, 0.075, 0.1, 0.2,
		0.4, 0.6, 0.8, 1.0, 1.5, 2, 5, 10,
	}

	// 64 byte (1<<6) -> 1m (1<<20)
	fileSizeBucket = prometheus.ExponentialBuckets(1<<6, 2, 15)

	gradeErrorCount = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "grade_error",
		Help:      "Number of grade requests returning error",
	})

	gradeTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "grade_time_seconds",
		Help:      "Histogram for the time of a whole grading",
		Buckets:   timeBuckets,
	}, []string{"outcome"})

	caseTimeHist = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "case_time_seconds",
		Help:      "Histogram for the running time of a test case",
		Buckets:   timeBuckets,
	}, []string{"status"})

	caseCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "case_total",
		Help:      "Number of grade records by status",
	}, []string{"status"})

	fsSizeHist = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "file_size_bytes",
		Help:      "Histgram for the submission size in the file store",
		Buckets:   fileSizeBucket,
	})

	fsTotalCount = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "file_current_total",
		Help:      "Total number of current files in the file store",
	})
)

func init() {
	prometheus.MustRegister(gradeErrorCount, gradeTimeHist)
	prometheus.MustRegister(caseTimeHist, caseCount)
	prometheus.MustRegister(fsSizeHist, fsTotalCount)
}

func gradeOutcome(res worker.Response) string {
	switch {
	case res.Rejected():
		return "rejected"
	case res.Total > 0 && res.Passed == res.Total:
		return "passed"
	default:
		return "failed"
	}
}

func execObserve(res worker.Response) {
	if res.Error != nil {
		gradeErrorCount.Inc()
		return
	}
	gradeTimeHist.WithLabelValues(gradeOutcome(res)).Observe(res.Time.Seconds())
	for _, r := range res.Results {
		status := r.Status.String()
		caseCount.WithLabelValues(status).Inc()
		if !r.Status.Gated() {
			caseTimeHist.WithLabelValues(status).Observe(r.Time.Seconds())
		}
	}
}

var _ filestore.FileStore = &metricsFileStore{}

type metricsFileStore struct {
	mu sync.Mutex
	filestore.FileStore
	fileSize map[string]int64
}

func newMetricsFileStore(fs filestore.FileStore) filestore.FileStore {
	return &metricsFileStore{
		FileStore: fs,
		fileSize:  make(map[string]int64),
	}
}

func (m *metricsFileStore) Add(name string, content []byte) (string, string, error) {
	id, path, err := m.FileStore.Add(name, content)
	if err != nil {
		return "", "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	fi, err := os.Stat(path)
	if err != nil {
		return id, path, nil
	}
	m.fileSize[id] = fi.Size()
	fsSizeHist.Observe(float64(fi.Size()))
	fsTotalCount.Inc()
	return id, path, nil
}

func (m *metricsFileStore) Remove(id string) bool {
	success := m.FileStore.Remove(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.fileSize[id]; !ok {
		return success
	}
	delete(m.fileSize, id)
	fsTotalCount.Dec()
	return success
}
