package ui

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal/preprocess"
	"goeda/ports"

	"goeda/adapters/ingest"
)

type createSessionRequest struct {
	// Path to a .csv or .xlsx file readable by the server.
	Source string `json:"source" binding:"required"`
	Sheet  string `json:"sheet"`
}

type preprocessRequest struct {
	DropDuplicates  *bool  `json:"drop_duplicates"`
	Outliers        string `json:"outliers"`
	Impute          string `json:"impute"`
	Encode          string `json:"encode"`
	Scale           string `json:"scale"`
	MaxOneHotLevels int    `json:"max_onehot_levels"`
}

type clusteringRequest struct {
	NClusters int `json:"n_clusters"`
}

type importanceRequest struct {
	Target string `json:"target" binding:"required"`
	Task   string `json:"task"`
}

type timeSeriesRequest struct {
	DateColumn  string `json:"date_column" binding:"required"`
	ValueColumn string `json:"value_column" binding:"required"`
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reader ports.DataReader
	switch strings.ToLower(filepath.Ext(req.Source)) {
	case ".csv":
		reader = ingest.NewCSVReader(req.Source)
	case ".xlsx":
		reader = ingest.NewExcelReader(req.Source, req.Sheet)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "source must be a .csv or .xlsx file"})
		return
	}

	ds, err := reader.Read(c.Request.Context())
	if err != nil {
		s.log.Error("load %s: %v", reader.Source(), err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	state := s.register(ds)
	c.JSON(http.StatusCreated, gin.H{
		"session_id": state.session.ID().String(),
		"dataset":    datasetProfile(ds),
	})
}

func (s *Server) handleGetSession(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": state.session.ID().String(),
		"created_at": state.session.CreatedAt(),
		"dataset":    datasetProfile(ds),
	})
}

// handlePreprocess runs the cleaning pipeline and replaces the session's
// dataset with the cleaned copy. Later analyses see the cleaned data.
func (s *Server) handlePreprocess(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	req := preprocessRequest{Outliers: preprocess.OutliersIQR, Impute: preprocess.ImputeAuto}
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	opts := preprocess.Options{
		DropDuplicates:  req.DropDuplicates == nil || *req.DropDuplicates,
		Outliers:        req.Outliers,
		Impute:          req.Impute,
		Encode:          req.Encode,
		Scale:           req.Scale,
		MaxOneHotLevels: req.MaxOneHotLevels,
	}
	cleaned, steps, err := preprocess.New(opts).Run(ds)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.mu.Lock()
	state.ds = cleaned
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"applied": steps,
		"dataset": datasetProfile(cleaned),
	})
}

func (s *Server) handleStatistical(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	writeResult(c, s.engine.StatisticalAnalysis(state.session, ds))
}

func (s *Server) handleClustering(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req clusteringRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeResult(c, s.engine.ClusteringAnalysis(state.session, ds, req.NClusters))
}

func (s *Server) handleImportance(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req importanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var task domain.TaskType
	switch req.Task {
	case "":
	case string(domain.TaskClassification):
		task = domain.TaskClassification
	case string(domain.TaskRegression):
		task = domain.TaskRegression
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "task must be classification or regression"})
		return
	}

	writeResult(c, s.engine.FeatureImportanceAnalysis(state.session, ds, req.Target, task))
}

func (s *Server) handleTimeSeries(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req timeSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	writeResult(c, s.engine.TimeSeriesAnalysis(state.session, ds, req.DateColumn, req.ValueColumn))
}

func (s *Server) handleResults(c *gin.Context) {
	state, _, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, state.session.Results())
}

func (s *Server) handleInsights(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, s.insights.Generate(ds, state.session.Results()))
}

func (s *Server) handleInsightsHTML(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	report := s.insights.Generate(ds, state.session.Results())
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML())
}

func (s *Server) handleAsk(c *gin.Context) {
	state, ds, ok := s.lookup(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	answer := s.insights.AskQuestion(ds, state.session.Results(), req.Question)
	c.JSON(http.StatusOK, gin.H{"question": req.Question, "answer": answer})
}

// writeResult maps the result union onto HTTP: recoverable analysis errors
// are 200 responses carrying the error variant, matching the engine's
// "errors are results" contract.
func writeResult(c *gin.Context, r domain.Result) {
	c.JSON(http.StatusOK, r)
}

func datasetProfile(ds *dataset.Dataset) gin.H {
	cols := make([]gin.H, 0, len(ds.Columns()))
	for _, col := range ds.Columns() {
		cols = append(cols, gin.H{
			"name":     col.Name,
			"kind":     col.Kind,
			"distinct": col.DistinctCount(),
			"missing":  col.MissingCount(),
		})
	}
	return gin.H{
		"name":         ds.Name,
		"rows":         ds.Rows(),
		"columns":      cols,
		"missing_rate": ds.MissingRate(),
	}
}
