// Command pcestudy runs the inflation and consumer spending study.
//
// By default both series are downloaded from FRED. Local CSV files can be
// supplied instead with -cpi and -pce, or -offline reuses the raw files of a
// previous run.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/sartorproj/pcestudy/config"
	"github.com/sartorproj/pcestudy/fred"
	"github.com/sartorproj/pcestudy/panel"
	"github.com/sartorproj/pcestudy/pipeline"
	"github.com/sartorproj/pcestudy/timeseries"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default: ./config.yaml if present)")
	cpiPath := flag.String("cpi", "", "read CPI from this CSV instead of downloading")
	pcePath := flag.String("pce", "", "read PCE from this CSV instead of downloading")
	offline := flag.Bool("offline", false, "reuse raw CSVs from the configured raw directory")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pcestudy: %v\n", err)
		os.Exit(2)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	logger := pipeline.NewLogger(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, *cpiPath, *pcePath, *offline); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, cpiPath, pcePath string, offline bool) error {
	if offline {
		cpiPath = filepath.Join(cfg.Directories.Raw, pipeline.FileCPI)
		pcePath = filepath.Join(cfg.Directories.Raw, pipeline.FilePCE)
	}

	var p *pipeline.Pipeline
	var cpi, pce *timeseries.Series
	var err error

	switch {
	case cpiPath != "" && pcePath != "":
		p = pipeline.New(cfg, logger, nil)
		if cpi, err = loadSeries(cpiPath, panel.ColCPI); err != nil {
			logger.WithError(err).Error("load cpi")
			return err
		}
		if pce, err = loadSeries(pcePath, panel.ColPCE); err != nil {
			logger.WithError(err).Error("load pce")
			return err
		}
	case cpiPath != "" || pcePath != "":
		err = errors.New("-cpi and -pce must be given together")
		logger.Error(err)
		return err
	default:
		client, err := newClient(cfg, logger)
		if err != nil {
			logger.WithError(err).Error("fred client")
			return err
		}
		p = pipeline.New(cfg, logger, client)
		if cpi, pce, err = p.Acquire(ctx); err != nil {
			return err
		}
	}

	out, err := p.Run(ctx, cpi, pce)
	if err != nil {
		return err
	}
	printReport(out)
	return nil
}

func loadSeries(path, name string) (*timeseries.Series, error) {
	opts := timeseries.DefaultCSVOptions()
	opts.Name = name
	return timeseries.LoadCSV(path, opts)
}

// newClient builds the FRED client. Series configured for the JSON API fall
// back to the keyless CSV export when no key is available.
func newClient(cfg *config.Config, logger *logrus.Logger) (*fred.Client, error) {
	key, err := cfg.APIKey()
	if err != nil {
		return nil, err
	}
	client := fred.NewClient(fred.Options{
		APIKey:     key,
		BaseURL:    cfg.FRED.BaseURL,
		GraphURL:   cfg.FRED.GraphURL,
		Timeout:    cfg.FRED.Timeout,
		MaxRetries: uint(cfg.FRED.MaxRetries),
	}, logger)

	if !client.HasAPIKey() {
		for _, s := range []*config.SeriesConfig{&cfg.Series.CPI, &cfg.Series.PCE} {
			if s.Source == fred.SourceAPI {
				logger.WithField("series_id", s.SeriesID).Warn("no FRED api key, using fredgraph csv")
				s.Source = fred.SourceGraph
			}
		}
	}
	return client, nil
}

func printReport(out *pipeline.Outcome) {
	res := out.Results
	fmt.Println(strings.Repeat("=", 60))
	fmt.Println("MODEL COMPARISON")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("%-20s %12s %12s %10s\n", "Metric", "Baseline", "Lagged", "Better")
	fmt.Println(strings.Repeat("-", 60))
	b, l, w := res.ModelComparison.Baseline, res.ModelComparison.Lagged, res.ModelComparison.Winners
	fmt.Printf("%-20s %12.4f %12.4f %10s\n", "R-squared", b.RSquared, l.RSquared, w.RSquared)
	fmt.Printf("%-20s %12.4f %12.4f %10s\n", "Adj. R-squared", b.AdjRSquared, l.AdjRSquared, w.AdjRSquared)
	fmt.Printf("%-20s %12.2f %12.2f %10s\n", "AIC", b.AIC, l.AIC, w.AIC)
	fmt.Printf("%-20s %12.2f %12.2f %10s\n", "BIC", b.BIC, l.BIC, w.BIC)
	fmt.Printf("%-20s %12.2f %12.2f\n", "F-statistic", b.FStatistic, l.FStatistic)
	fmt.Printf("\nRECOMMENDED MODEL: %s\n\n", strings.ToUpper(res.ModelComparison.Recommended))

	fmt.Println(res.Interpretation.Summary)
	fmt.Println("\nKey Findings:")
	for i, f := range res.Interpretation.KeyFindings {
		fmt.Printf("  %d. %s\n", i+1, f)
	}
	for _, q := range []string{"q1", "q2", "q3"} {
		a := res.Interpretation.ResearchQuestions[q]
		fmt.Printf("\n%s\n  %s\n", a.Question, a.Answer)
	}

	if len(out.Stationarity) > 0 {
		fmt.Println("\nStationarity (ADF / KPSS p-values):")
		for _, s := range out.Stationarity {
			fmt.Printf("  %-18s %6.3f %6.3f  %s\n", s.Column, s.ADF.PValue, s.KPSS.PValue, s.Verdict)
		}
	}

	fmt.Println("\nArtifacts:")
	for _, a := range out.Artifacts {
		fmt.Printf("  %s\n", a)
	}
}
