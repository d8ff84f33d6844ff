package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "goeda/domain/analysis"
	"goeda/internal"
	"goeda/internal/config"
	"goeda/internal/testkit"
)

func newTestEngine() *Engine {
	return NewEngine(config.DefaultAnalysisConfig(), internal.NewLogger(internal.LogLevelError))
}

func TestEngineSessionAccumulates(t *testing.T) {
	engine := newTestEngine()
	sess := NewSession()
	ds := testkit.RetailDataset(1, 120)

	engine.StatisticalAnalysis(sess, ds)
	engine.ClusteringAnalysis(sess, ds, 2)
	engine.TimeSeriesAnalysis(sess, ds, "date", "sales")

	results := sess.Results()
	require.Len(t, results, 3)
	assert.Contains(t, results, domain.OpStatistical)
	assert.Contains(t, results, domain.OpClustering)
	assert.Contains(t, results, domain.OpTimeSeries)

	stat, ok := sess.Result(domain.OpStatistical)
	require.True(t, ok)
	require.False(t, stat.IsError())
	assert.NotEmpty(t, stat.Statistical.Descriptive)
}

func TestEngineSessionOverwritesSameOperation(t *testing.T) {
	engine := newTestEngine()
	sess := NewSession()
	ds := testkit.RetailDataset(2, 90)

	first := engine.ClusteringAnalysis(sess, ds, 2)
	require.False(t, first.IsError())

	second := engine.ClusteringAnalysis(sess, ds, 3)
	require.False(t, second.IsError())

	stored, ok := sess.Result(domain.OpClustering)
	require.True(t, ok)
	assert.Equal(t, 3, stored.Clustering.KMeans.NClusters, "repeat runs must overwrite, not append")
	assert.Len(t, sess.Results(), 1)
}

func TestEngineStoresErrorResults(t *testing.T) {
	engine := newTestEngine()
	sess := NewSession()
	ds := testkit.MustDataset("thin",
		testkit.Numeric("only", []float64{1, 2, 3}),
	)

	result := engine.ClusteringAnalysis(sess, ds, 0)
	require.True(t, result.IsError())

	stored, ok := sess.Result(domain.OpClustering)
	require.True(t, ok, "error results are still session entries")
	assert.True(t, stored.IsError())
}

func TestEngineFeatureImportanceThroughSession(t *testing.T) {
	engine := newTestEngine()
	sess := NewSession()
	ds := testkit.RetailDataset(3, 150)

	result := engine.FeatureImportanceAnalysis(sess, ds, "sales", "")
	require.False(t, result.IsError())
	assert.Equal(t, domain.TaskRegression, result.Importance.TaskType)

	stored, ok := sess.Result(domain.OpFeatureImportance)
	require.True(t, ok)
	assert.NotEmpty(t, stored.Importance.TopFeatures)
}

func TestSessionIDsAreUnique(t *testing.T) {
	a, b := NewSession(), NewSession()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.NotEmpty(t, a.ID().String())
}
