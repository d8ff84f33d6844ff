package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"goeda/adapters/ingest"
	domain "goeda/domain/analysis"
	"goeda/domain/dataset"
	"goeda/internal"
	"goeda/internal/analysis"
	"goeda/internal/config"
	"goeda/internal/insights"
	"goeda/internal/preprocess"
	"goeda/ports"
	"goeda/ui"
)

func main() {
	// Local .env overrides are optional.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "goeda",
		Short: "Exploratory data analysis engine",
		Long:  "goeda profiles tabular data: descriptive statistics, correlations, hypothesis tests, clustering, feature importance and time series structure.",
	}

	rootCmd.AddCommand(
		newInfoCmd(),
		newCleanCmd(),
		newAnalyzeCmd(),
		newReportCmd(),
		newServeCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadDataset(ctx context.Context, source, sheet, query string) (*dataset.Dataset, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if source == "" {
		source = cfg.Data.DefaultSource
	}
	if source == "" {
		return nil, fmt.Errorf("no data source: pass a file path or set DATA_SOURCE")
	}

	var reader ports.DataReader
	switch {
	case query != "":
		db, err := ingest.OpenPostgres(cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		reader = ingest.NewSQLReader(db, source, query)
	case strings.EqualFold(filepath.Ext(source), ".csv"):
		reader = ingest.NewCSVReader(source)
	case strings.EqualFold(filepath.Ext(source), ".xlsx"):
		reader = ingest.NewExcelReader(source, sheet)
	default:
		return nil, fmt.Errorf("unsupported source %q: expected .csv, .xlsx, or --query", source)
	}

	return reader.Read(ctx)
}

func newInfoCmd() *cobra.Command {
	var sheet, query string

	cmd := &cobra.Command{
		Use:   "info [source]",
		Short: "Profile a dataset's columns and missingness",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			ds, err := loadDataset(cmd.Context(), source, sheet, query)
			if err != nil {
				return err
			}

			fmt.Printf("Dataset: %s\n", ds.Name)
			fmt.Printf("Rows: %d  Columns: %d  Missing: %.1f%%\n\n", ds.Rows(), len(ds.Columns()), ds.MissingRate()*100)
			for _, col := range ds.Columns() {
				fmt.Printf("  %-24s %-12s distinct=%-6d missing=%d\n",
					col.Name, col.Kind, col.DistinctCount(), col.MissingCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet name (default Sheet1)")
	cmd.Flags().StringVar(&query, "query", "", "SQL query to ingest instead of a file")
	return cmd
}

func newCleanCmd() *cobra.Command {
	var sheet, query, out string
	var outliers, impute, encode, scale string
	var keepDuplicates bool
	var maxOneHot int

	cmd := &cobra.Command{
		Use:   "clean [source]",
		Short: "Run the preprocessing pipeline and emit cleaned CSV",
		Long: `Clean a dataset: deduplicate rows, treat outliers, impute missing values,
and optionally encode categoricals and scale numerics. The cleaned data is
written as CSV; the applied transformations are logged to stderr.

Example: goeda clean sales.csv --impute median --scale standard --out cleaned.csv`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			ds, err := loadDataset(cmd.Context(), source, sheet, query)
			if err != nil {
				return err
			}

			opts := preprocess.Options{
				DropDuplicates:  !keepDuplicates,
				Outliers:        outliers,
				Impute:          impute,
				Encode:          encode,
				Scale:           scale,
				MaxOneHotLevels: maxOneHot,
			}
			cleaned, steps, err := preprocess.New(opts).Run(ds)
			if err != nil {
				return err
			}
			for _, step := range steps {
				fmt.Fprintln(os.Stderr, step)
			}

			w := os.Stdout
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return ingest.WriteCSV(w, cleaned)
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet name (default Sheet1)")
	cmd.Flags().StringVar(&query, "query", "", "SQL query to ingest instead of a file")
	cmd.Flags().StringVar(&out, "out", "", "Output CSV path (default stdout)")
	cmd.Flags().BoolVar(&keepDuplicates, "keep-duplicates", false, "Keep exact duplicate rows")
	cmd.Flags().StringVar(&outliers, "outliers", preprocess.OutliersIQR, "Outlier strategy: iqr, zscore, or empty to skip")
	cmd.Flags().StringVar(&impute, "impute", preprocess.ImputeAuto, "Imputation strategy: auto, mean, median, mode, or empty to skip")
	cmd.Flags().StringVar(&encode, "encode", "", "Categorical encoding: onehot, label, or empty to skip")
	cmd.Flags().StringVar(&scale, "scale", "", "Numeric scaling: standard, minmax, or empty to skip")
	cmd.Flags().IntVar(&maxOneHot, "max-onehot", 10, "Cardinality ceiling for one-hot encoding")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var sheet, query string
	var operations []string
	var target, task, dateCol, valueCol string
	var nClusters int

	cmd := &cobra.Command{
		Use:   "analyze [source]",
		Short: "Run analyses and print results as JSON",
		Long: `Run one or more analyses over a dataset. Results accumulate in a session
and print as a single JSON document keyed by operation.

Example: goeda analyze sales.csv --ops statistical,clustering,importance --target revenue`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			ds, err := loadDataset(cmd.Context(), source, sheet, query)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine := analysis.NewEngine(cfg.Analysis, internal.DefaultLogger)
			sess := analysis.NewSession()

			for _, op := range operations {
				switch strings.TrimSpace(op) {
				case string(domain.OpStatistical):
					engine.StatisticalAnalysis(sess, ds)
				case string(domain.OpClustering):
					engine.ClusteringAnalysis(sess, ds, nClusters)
				case string(domain.OpFeatureImportance), "importance":
					if target == "" {
						return fmt.Errorf("feature importance needs --target")
					}
					switch task {
					case "", string(domain.TaskClassification), string(domain.TaskRegression):
					default:
						return fmt.Errorf("--task must be classification or regression")
					}
					engine.FeatureImportanceAnalysis(sess, ds, target, domain.TaskType(task))
				case string(domain.OpTimeSeries), "timeseries":
					if dateCol == "" || valueCol == "" {
						return fmt.Errorf("time series needs --date-column and --value-column")
					}
					engine.TimeSeriesAnalysis(sess, ds, dateCol, valueCol)
				default:
					return fmt.Errorf("unknown operation %q", op)
				}
			}

			out, err := json.MarshalIndent(sess.Results(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet name (default Sheet1)")
	cmd.Flags().StringVar(&query, "query", "", "SQL query to ingest instead of a file")
	cmd.Flags().StringSliceVar(&operations, "ops", []string{"statistical"}, "Operations: statistical, clustering, importance, timeseries")
	cmd.Flags().StringVar(&target, "target", "", "Target column for feature importance")
	cmd.Flags().StringVar(&task, "task", "", "Force classification or regression")
	cmd.Flags().StringVar(&dateCol, "date-column", "", "Temporal column for time series")
	cmd.Flags().StringVar(&valueCol, "value-column", "", "Numeric column for time series")
	cmd.Flags().IntVar(&nClusters, "clusters", 0, "Cluster count (0 selects automatically)")
	return cmd
}

func newReportCmd() *cobra.Command {
	var sheet, query, target, dateCol, valueCol string
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "report [source]",
		Short: "Run the full analysis suite and print an insights report",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ""
			if len(args) > 0 {
				source = args[0]
			}
			ds, err := loadDataset(cmd.Context(), source, sheet, query)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			engine := analysis.NewEngine(cfg.Analysis, internal.DefaultLogger)
			sess := analysis.NewSession()

			engine.StatisticalAnalysis(sess, ds)
			engine.ClusteringAnalysis(sess, ds, 0)
			if target != "" {
				engine.FeatureImportanceAnalysis(sess, ds, target, "")
			}
			if dateCol != "" && valueCol != "" {
				engine.TimeSeriesAnalysis(sess, ds, dateCol, valueCol)
			}

			report := insights.NewGenerator().Generate(ds, sess.Results())
			if asHTML {
				fmt.Println(string(report.HTML()))
			} else {
				fmt.Println(report.Markdown())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheet, "sheet", "", "Excel sheet name (default Sheet1)")
	cmd.Flags().StringVar(&query, "query", "", "SQL query to ingest instead of a file")
	cmd.Flags().StringVar(&target, "target", "", "Target column for feature importance")
	cmd.Flags().StringVar(&dateCol, "date-column", "", "Temporal column for time series")
	cmd.Flags().StringVar(&valueCol, "value-column", "", "Numeric column for time series")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Render the report as HTML")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return ui.NewServer(cfg, internal.DefaultLogger).Run()
		},
	}
}
