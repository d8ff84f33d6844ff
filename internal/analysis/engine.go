package analysis

import (
	"sync"
	"time"

	domain "goeda/domain/analysis"
	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal"
	"goeda/internal/config"
)

// Session accumulates results across analyses. Each operation keeps its
// latest result only; running the same operation again overwrites the
// previous entry. The caller owns the session and passes it into every call,
// so the engine itself stays stateless and safe to share.
type Session struct {
	id        core.SessionID
	createdAt time.Time

	mu      sync.RWMutex
	results map[domain.Operation]domain.Result
}

// NewSession returns an empty session with a fresh identifier.
func NewSession() *Session {
	return &Session{
		id:        core.SessionID(core.NewID()),
		createdAt: time.Now().UTC(),
		results:   make(map[domain.Operation]domain.Result),
	}
}

func (s *Session) ID() core.SessionID   { return s.id }
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// Store records a result under its operation, replacing any previous one.
// Error-variant results are stored too: the session reflects the last
// outcome of each operation, whatever it was.
func (s *Session) Store(r domain.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[r.Operation] = r
}

// Result returns the latest result for an operation.
func (s *Session) Result(op domain.Operation) (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[op]
	return r, ok
}

// Results returns a snapshot of all accumulated results keyed by operation.
func (s *Session) Results() map[domain.Operation]domain.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[domain.Operation]domain.Result, len(s.results))
	for op, r := range s.results {
		out[op] = r
	}
	return out
}

// Engine is the analysis facade. It holds no per-dataset state: callers pass
// the dataset and session into each call.
type Engine struct {
	cfg config.AnalysisConfig
	log *internal.Logger

	stats      *StatisticalAnalyzer
	clusters   *ClusterAnalyzer
	importance *FeatureImportanceAnalyzer
	timeseries *TimeSeriesAnalyzer
}

func NewEngine(cfg config.AnalysisConfig, logger *internal.Logger) *Engine {
	return &Engine{
		cfg:        cfg,
		log:        logger.Named("engine"),
		stats:      NewStatisticalAnalyzer(cfg),
		clusters:   NewClusterAnalyzer(cfg),
		importance: NewFeatureImportanceAnalyzer(cfg),
		timeseries: NewTimeSeriesAnalyzer(cfg),
	}
}

// StatisticalAnalysis runs the descriptive/correlation/hypothesis pass and
// stores the outcome in the session.
func (e *Engine) StatisticalAnalysis(sess *Session, ds *dataset.Dataset) domain.Result {
	e.log.Info("statistical analysis: dataset=%s rows=%d", ds.Name, ds.Rows())
	return e.store(sess, e.stats.Analyze(ds))
}

// ClusteringAnalysis clusters the numeric columns. nClusters <= 0 selects the
// cluster count automatically.
func (e *Engine) ClusteringAnalysis(sess *Session, ds *dataset.Dataset, nClusters int) domain.Result {
	e.log.Info("clustering analysis: dataset=%s rows=%d k=%d", ds.Name, ds.Rows(), nClusters)
	return e.store(sess, e.clusters.Analyze(ds, nClusters))
}

// FeatureImportanceAnalysis ranks predictors of the target column. task ""
// lets the engine infer classification vs regression from the target.
func (e *Engine) FeatureImportanceAnalysis(sess *Session, ds *dataset.Dataset, target string, task domain.TaskType) domain.Result {
	e.log.Info("feature importance analysis: dataset=%s target=%s", ds.Name, target)
	return e.store(sess, e.importance.Analyze(ds, target, task))
}

// TimeSeriesAnalysis summarizes valueCol indexed by dateCol.
func (e *Engine) TimeSeriesAnalysis(sess *Session, ds *dataset.Dataset, dateCol, valueCol string) domain.Result {
	e.log.Info("time series analysis: dataset=%s date=%s value=%s", ds.Name, dateCol, valueCol)
	return e.store(sess, e.timeseries.Analyze(ds, dateCol, valueCol))
}

func (e *Engine) store(sess *Session, r domain.Result) domain.Result {
	if r.IsError() {
		e.log.Warn("%s analysis returned error result: %s", r.Operation, r.Err.Reason)
	}
	sess.Store(r)
	return r
}
