package ui

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"

	"goeda/domain/core"
	"goeda/domain/dataset"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	"goeda/internal/insights"
)

// Server exposes the analysis engine over a JSON API. Sessions are held in
// memory: each one pairs a loaded dataset with its accumulated results.
type Server struct {
	router   *gin.Engine
	engine   *analysis.Engine
	insights *insights.Generator
	cfg      *config.Config
	log      *internal.Logger

	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionState
}

type sessionState struct {
	session *analysis.Session
	ds      *dataset.Dataset
}

// NewServer wires the engine and routes.
func NewServer(cfg *config.Config, logger *internal.Logger) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router:   gin.New(),
		engine:   analysis.NewEngine(cfg.Analysis, logger),
		insights: insights.NewGenerator(),
		cfg:      cfg,
		log:      logger.Named("ui"),
		sessions: make(map[core.SessionID]*sessionState),
	}
	s.router.Use(gin.Recovery())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/health", s.handleHealth)

	api := s.router.Group("/api")
	{
		api.POST("/sessions", s.handleCreateSession)
		api.GET("/sessions/:id", s.handleGetSession)

		api.POST("/sessions/:id/preprocess", s.handlePreprocess)

		api.POST("/sessions/:id/analyze/statistical", s.handleStatistical)
		api.POST("/sessions/:id/analyze/clustering", s.handleClustering)
		api.POST("/sessions/:id/analyze/importance", s.handleImportance)
		api.POST("/sessions/:id/analyze/timeseries", s.handleTimeSeries)

		api.GET("/sessions/:id/results", s.handleResults)
		api.GET("/sessions/:id/insights", s.handleInsights)
		api.GET("/sessions/:id/insights/html", s.handleInsightsHTML)
		api.POST("/sessions/:id/ask", s.handleAsk)
	}
}

// Run blocks serving HTTP on the configured port.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.cfg.Server.Port)
	s.log.Info("listening on %s", addr)
	return s.router.Run(addr)
}

// Router exposes the handler for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// lookup returns the session and a snapshot of its current dataset. The
// dataset pointer is captured under the lock because preprocessing can swap
// it mid-flight.
func (s *Server) lookup(id string) (*sessionState, *dataset.Dataset, bool) {
	sid, err := core.ParseSessionID(id)
	if err != nil {
		return nil, nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sid]
	if !ok {
		return nil, nil, false
	}
	return state, state.ds, true
}

func (s *Server) register(ds *dataset.Dataset) *sessionState {
	state := &sessionState{session: analysis.NewSession(), ds: ds}
	s.mu.Lock()
	s.sessions[state.session.ID()] = state
	s.mu.Unlock()
	return state
}
