// Package pipeline runs the study end to end: acquisition, alignment,
// enrichment, quality checks, descriptive statistics, model fitting,
// comparison and persistence of every artifact.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/sartorproj/pcestudy/analysis"
	"github.com/sartorproj/pcestudy/config"
	"github.com/sartorproj/pcestudy/errs"
	"github.com/sartorproj/pcestudy/panel"
	"github.com/sartorproj/pcestudy/quality"
	"github.com/sartorproj/pcestudy/regression"
	"github.com/sartorproj/pcestudy/stats"
	"github.com/sartorproj/pcestudy/timeseries"
)

// Artifact file names.
const (
	FileCPI           = "cpi.csv"
	FilePCE           = "pce.csv"
	FileIntegrated    = "integrated.csv"
	FileQualityReport = "quality_report.json"
	FileModelResults  = "model_results.json"
	FileDescriptive   = "descriptive_stats.csv"
	FileCorrelations  = "correlation_matrix.csv"
	FileStationarity  = "stationarity.json"
)

// growthColumns are summarized by the descriptive statistics.
var growthColumns = []string{panel.ColCPIYoY, panel.ColPCEYoY, panel.ColRealPCEYoY}

// Fetcher downloads one named series.
type Fetcher interface {
	Fetch(ctx context.Context, source, seriesID, name string, start, end time.Time) (*timeseries.Series, error)
}

// Pipeline holds the collaborators of one run.
type Pipeline struct {
	cfg     *config.Config
	log     *logrus.Entry
	fetcher Fetcher
	store   *Store
	runID   string
}

// New creates a pipeline with a fresh run id. fetcher may be nil when the
// raw series are supplied to Run directly.
func New(cfg *config.Config, logger *logrus.Logger, fetcher Fetcher) *Pipeline {
	runID := uuid.New().String()
	return &Pipeline{
		cfg:     cfg,
		log:     logger.WithField("run_id", runID),
		fetcher: fetcher,
		store:   NewStore(runID),
		runID:   runID,
	}
}

// RunID identifies this run in logs and metadata.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Outcome collects everything a successful run produced.
type Outcome struct {
	RunID        string
	Enriched     *panel.Enriched
	Quality      *quality.Report
	Description  *stats.Description
	Correlations *stats.CorrelationMatrix
	Stationarity []stats.StationarityResult
	ModelPanel   *panel.ModelPanel
	Baseline     *regression.Model
	Lagged       *regression.Model
	Results      *analysis.Results
	Artifacts    []string
}

// fail logs err once and makes sure it carries a stage.
func (p *Pipeline) fail(stage string, err error) error {
	if _, ok := errs.StageOf(err); !ok {
		err = errs.Wrap(stage, err)
	}
	p.log.WithField("stage", stage).WithError(err).Error("stage failed")
	return err
}

func (p *Pipeline) path(dir, name string) string {
	return filepath.Join(dir, name)
}

// Acquire downloads CPI and PCE concurrently and persists both raw series.
// The first failure cancels the other download.
func (p *Pipeline) Acquire(ctx context.Context) (cpi, pce *timeseries.Series, err error) {
	if p.fetcher == nil {
		return nil, nil, p.fail(errs.StageAcquire, fmt.Errorf("no fetcher configured"))
	}
	start, end, err := p.cfg.Window()
	if err != nil {
		return nil, nil, p.fail(errs.StageAcquire, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s := p.cfg.Series.CPI
		var err error
		cpi, err = p.fetcher.Fetch(gctx, s.Source, s.SeriesID, panel.ColCPI, start, end)
		return err
	})
	g.Go(func() error {
		s := p.cfg.Series.PCE
		var err error
		pce, err = p.fetcher.Fetch(gctx, s.Source, s.SeriesID, panel.ColPCE, start, end)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, p.fail(errs.StageAcquire, err)
	}

	for _, raw := range []struct {
		series *timeseries.Series
		file   string
		cfg    config.SeriesConfig
	}{
		{cpi, FileCPI, p.cfg.Series.CPI},
		{pce, FilePCE, p.cfg.Series.PCE},
	} {
		path := p.path(p.cfg.Directories.Raw, raw.file)
		_, err := p.store.WriteCSV(path, Metadata{
			Description: raw.cfg.Description,
			SeriesID:    raw.cfg.SeriesID,
			Source:      raw.cfg.Source,
			RowCount:    raw.series.Len(),
			Columns:     []string{"date", raw.series.Name},
		}, func(w io.Writer) error {
			return timeseries.WriteCSV(w, raw.series)
		})
		if err != nil {
			return nil, nil, p.fail(errs.StagePersist, err)
		}
		p.log.WithFields(logrus.Fields{
			"stage":     errs.StageAcquire,
			"series_id": raw.cfg.SeriesID,
			"rows":      raw.series.Len(),
			"path":      path,
		}).Info("raw series saved")
	}
	return cpi, pce, nil
}

// Run executes every stage after acquisition on the given raw series.
// Artifacts of a stage are written only once that stage has succeeded.
func (p *Pipeline) Run(ctx context.Context, cpi, pce *timeseries.Series) (*Outcome, error) {
	out := &Outcome{RunID: p.runID}
	dirs := p.cfg.Directories

	aligned, err := panel.Align(cpi, pce)
	if err != nil {
		return nil, p.fail(errs.StageAlign, err)
	}
	p.log.WithFields(logrus.Fields{"stage": errs.StageAlign, "rows": aligned.Len()}).Info("series aligned")

	anchor, err := p.cfg.Anchor()
	if err != nil {
		return nil, p.fail(errs.StageEnrich, err)
	}
	enriched, err := panel.NewEnricher(anchor).Enrich(aligned)
	if err != nil {
		return nil, p.fail(errs.StageEnrich, err)
	}
	out.Enriched = enriched

	integrated := p.path(dirs.Processed, FileIntegrated)
	if _, err := p.store.WriteCSV(integrated, Metadata{
		Description: fmt.Sprintf("CPI and PCE aligned monthly, CPI rebased to 100 at %s", timeseries.DateKey(anchor)),
		RowCount:    enriched.Len(),
		Columns:     panel.Columns,
	}, enriched.WriteCSV); err != nil {
		return nil, p.fail(errs.StagePersist, err)
	}
	out.Artifacts = append(out.Artifacts, integrated)
	p.log.WithFields(logrus.Fields{"stage": errs.StageEnrich, "rows": enriched.Len(), "path": integrated}).Info("panel enriched")

	report := quality.NewChecker(p.cfg.Thresholds()).Check(enriched)
	out.Quality = report
	reportPath := p.path(dirs.Results, FileQualityReport)
	if err := p.store.WriteJSON(reportPath, report); err != nil {
		return nil, p.fail(errs.StagePersist, err)
	}
	out.Artifacts = append(out.Artifacts, reportPath)
	for _, w := range report.Warnings {
		p.log.WithField("stage", errs.StageQuality).Warn(w)
	}
	if !report.Passed() {
		return nil, p.fail(errs.StageQuality, fmt.Errorf("%w: %s", errs.ErrQualityCheck, strings.Join(report.Errors, "; ")))
	}
	p.log.WithFields(logrus.Fields{"stage": errs.StageQuality, "warnings": len(report.Warnings)}).Info("quality check passed")

	if err := ctx.Err(); err != nil {
		return nil, p.fail(errs.StagePrepare, err)
	}

	if paths, err := p.describe(out); err != nil {
		p.log.WithField("stage", "describe").WithError(err).Warn("descriptive statistics skipped")
	} else {
		out.Artifacts = append(out.Artifacts, paths...)
	}
	if path, err := p.stationarity(out); err != nil {
		p.log.WithField("stage", "stationarity").WithError(err).Warn("unit root tests skipped")
	} else {
		out.Artifacts = append(out.Artifacts, path)
	}

	modelPanel, err := panel.Prepare(enriched, panel.MinModelObs)
	if err != nil {
		return nil, p.fail(errs.StagePrepare, err)
	}
	out.ModelPanel = modelPanel
	p.log.WithFields(logrus.Fields{"stage": errs.StagePrepare, "rows": modelPanel.Len()}).Info("model panel ready")

	if out.Baseline, err = regression.Fit(regression.Baseline, modelPanel); err != nil {
		return nil, p.fail(errs.StageRegress, err)
	}
	if out.Lagged, err = regression.Fit(regression.Lagged, modelPanel); err != nil {
		return nil, p.fail(errs.StageRegress, err)
	}
	for _, m := range []*regression.Model{out.Baseline, out.Lagged} {
		p.log.WithFields(logrus.Fields{
			"stage":  errs.StageRegress,
			"spec":   m.Spec,
			"n":      m.NObs,
			"r2":     m.RSquared,
			"adj_r2": m.AdjRSquared,
			"aic":    m.AIC,
			"bic":    m.BIC,
		}).Info("model fitted")
	}

	results, err := analysis.Analyze(out.Baseline, out.Lagged)
	if err != nil {
		return nil, p.fail(errs.StageInterpret, err)
	}
	out.Results = results
	p.log.WithFields(logrus.Fields{
		"stage":       errs.StageInterpret,
		"recommended": results.ModelComparison.Recommended,
	}).Info(results.Interpretation.Summary)

	resultsPath := p.path(dirs.Results, FileModelResults)
	if err := p.store.WriteJSON(resultsPath, results); err != nil {
		return nil, p.fail(errs.StagePersist, err)
	}
	out.Artifacts = append(out.Artifacts, resultsPath)

	for _, m := range []*regression.Model{out.Baseline, out.Lagged} {
		summaryPath := p.path(dirs.Results, m.Spec+"_model_summary.txt")
		if err := p.store.WriteText(summaryPath, m.Summary()); err != nil {
			return nil, p.fail(errs.StagePersist, err)
		}
		out.Artifacts = append(out.Artifacts, summaryPath)
	}

	p.log.WithField("artifacts", len(out.Artifacts)).Info("run complete")
	return out, nil
}

// describe computes and persists summary statistics of the growth rates.
func (p *Pipeline) describe(out *Outcome) ([]string, error) {
	df, err := stats.CompleteFrame(out.Enriched, growthColumns...)
	if err != nil {
		return nil, err
	}
	desc, err := stats.Describe(df)
	if err != nil {
		return nil, err
	}
	corr, err := stats.Correlations(df)
	if err != nil {
		return nil, err
	}

	descPath := p.path(p.cfg.Directories.Results, FileDescriptive)
	if _, err := p.store.WriteCSV(descPath, Metadata{
		Description: "Summary statistics of year-over-year growth rates",
		RowCount:    len(desc.Statistics),
		Columns:     append([]string{"statistic"}, desc.Columns...),
	}, desc.WriteCSV); err != nil {
		return nil, err
	}

	corrPath := p.path(p.cfg.Directories.Results, FileCorrelations)
	if _, err := p.store.WriteCSV(corrPath, Metadata{
		Description: "Pearson correlations of year-over-year growth rates",
		RowCount:    len(corr.Columns),
		Columns:     append([]string{""}, corr.Columns...),
	}, corr.WriteCSV); err != nil {
		return nil, err
	}

	out.Description = desc
	out.Correlations = corr
	p.log.WithFields(logrus.Fields{"stage": "describe", "rows": df.Nrow()}).Info("descriptive statistics saved")
	return []string{descPath, corrPath}, nil
}

// stationarity runs unit root tests on the growth rates that enter the models.
func (p *Pipeline) stationarity(out *Outcome) (string, error) {
	results, err := stats.Stationarity(out.Enriched, growthColumns...)
	if err != nil {
		return "", err
	}
	path := p.path(p.cfg.Directories.Results, FileStationarity)
	if err := p.store.WriteJSON(path, results); err != nil {
		return "", err
	}
	out.Stationarity = results
	for _, r := range results {
		p.log.WithFields(logrus.Fields{
			"stage":   "stationarity",
			"column":  r.Column,
			"adf_p":   r.ADF.PValue,
			"kpss_p":  r.KPSS.PValue,
			"verdict": r.Verdict,
		}).Info("unit root tests")
	}
	return path, nil
}
