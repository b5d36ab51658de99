package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/petfriends-verifier/internal/config"
	"github.com/samvad-hq/petfriends-verifier/internal/logger"
	"github.com/samvad-hq/petfriends-verifier/internal/storage"
	"github.com/samvad-hq/petfriends-verifier/internal/suite"
	"github.com/samvad-hq/petfriends-verifier/internal/verifier"
	"github.com/samvad-hq/petfriends-verifier/pkg/fixtures"
	"github.com/samvad-hq/petfriends-verifier/pkg/petfriends"
	"github.com/samvad-hq/petfriends-verifier/pkg/publishers"
	"github.com/spf13/afero"
)

// Checker runs the verification suite against one PetFriends deployment,
// keeps outcome history, and publishes a report of every run.
type Checker struct {
	cfg    *config.Config
	env    suite.Env
	store  storage.Store
	fanout *publishers.Fanout
	log    logger.Logger
	now    func() time.Time
}

// RunOptions tunes a single run.
type RunOptions struct {
	Filter     verifier.Filter
	TestLogger verifier.TestLogger
	// Strict makes known defects fail the run. The strict_defects setting
	// enables it as well.
	Strict bool
}

// NewChecker builds a checker runtime from config.
func NewChecker(ctx context.Context, cfg *config.Config, log logger.Logger) (*Checker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	fs := afero.NewOsFs()
	client, err := petfriends.New(petfriends.Options{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.RequestTimeout,
		Photos:  fs,
		Logger:  log,
	})
	if err != nil {
		return nil, fmt.Errorf("init petfriends client: %w", err)
	}

	fixtureReg := fixtures.Defaults()
	if strings.TrimSpace(cfg.FixturesFile) != "" {
		fixtureReg, err = fixtures.Load(fs, cfg.FixturesFile)
		if err != nil {
			return nil, fmt.Errorf("load fixtures: %w", err)
		}
	}
	log.InfoObj("fixtures loaded", "fixtures_meta", map[string]any{
		"count": len(fixtureReg.All()),
		"file":  cfg.FixturesFile,
	})

	fanout, err := buildFanout(ctx, fs, cfg.ReportersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		OutcomeTTL:      cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
	})
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"outcome_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	return &Checker{
		cfg: cfg,
		env: suite.Env{
			API:       client,
			Valid:     petfriends.Credentials{Email: cfg.ValidEmail, Password: cfg.ValidPassword},
			Invalid:   petfriends.Credentials{Email: cfg.InvalidEmail, Password: cfg.InvalidPassword},
			Fixtures:  fixtureReg,
			PhotosDir: cfg.PhotosDir,
		},
		store:  store,
		fanout: fanout,
		log:    log,
		now:    time.Now,
	}, nil
}

// buildFanout loads report sinks. Reporting is optional, so an empty path
// yields an empty fanout.
func buildFanout(ctx context.Context, fs afero.Fs, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		log.InfoObj("no reporters configured", "reporters_file", path)
		return publishers.NewFanout(nil), nil
	}

	reg, err := publishers.LoadReporters(fs, path)
	if err != nil {
		return nil, fmt.Errorf("load reporters: %w", err)
	}
	enabled := reg.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build reporters: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("reporters registry loaded", "reporters_meta", map[string]any{
		"count":     len(summaries),
		"reporters": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Run executes the suite once. The returned results and report are complete
// even when history or publishing fail; those errors are joined into err.
func (c *Checker) Run(ctx context.Context, opts RunOptions) (verifier.Results, publishers.Report, error) {
	if c == nil || c.env.API == nil {
		return verifier.Results{}, publishers.Report{}, fmt.Errorf("checker is not initialized")
	}
	if !c.cfg.HasValidCredentials() {
		c.log.WarnObj("valid credentials are not configured", "hint", "set VALID_EMAIL and VALID_PASSWORD")
	}

	strict := opts.Strict || c.cfg.StrictDefects
	report := publishers.Report{
		RunID:     uuid.NewString(),
		BaseURL:   c.env.API.BaseURL(),
		StartedAt: c.now().UTC(),
		Strict:    strict,
	}
	c.log.InfoObj("verification run started", "run_meta", map[string]any{
		"run_id":   report.RunID,
		"base_url": report.BaseURL,
		"strict":   strict,
	})

	results := suite.Run(ctx, c.env, opts.Filter, opts.TestLogger)

	report.FinishedAt = c.now().UTC()
	report.OK = results.OK(strict)
	sum := results.Summary()
	report.Summary = publishers.Summary{
		Total:   sum.Total,
		Passed:  sum.Passed,
		Failed:  sum.Failed,
		Defects: sum.Defects,
		Skipped: sum.Skipped,
	}

	var errs []error
	for _, res := range results.Leaves() {
		sc := scenarioReport(res)
		if res.Outcome != verifier.OutcomeSkipped {
			if err := c.trackHistory(&sc); err != nil {
				errs = append(errs, err)
			}
		}
		report.Scenarios = append(report.Scenarios, sc)
	}

	c.log.InfoObj("verification run completed", "run_summary", map[string]any{
		"run_id":     report.RunID,
		"ok":         report.OK,
		"summary":    report.Summary,
		"changed":    len(report.Changed()),
		"elapsed_ms": report.FinishedAt.Sub(report.StartedAt).Milliseconds(),
	})

	if c.fanout.Size() > 0 {
		delivered, err := c.fanout.Publish(ctx, report)
		if err != nil {
			c.log.ErrorObj("report publish failed", "error", err)
			errs = append(errs, fmt.Errorf("publish report: %w", err))
		}
		c.log.InfoObj("report published", "publish_meta", map[string]any{
			"run_id":    report.RunID,
			"delivered": delivered,
			"reporters": c.fanout.Size(),
		})
	}

	return results, report, errors.Join(errs...)
}

// trackHistory compares sc with the stored outcome and records the new one.
func (c *Checker) trackHistory(sc *publishers.ScenarioReport) error {
	previous, found, err := c.store.LastOutcome(sc.ID)
	if err != nil {
		return fmt.Errorf("read history for %s: %w", sc.ID, err)
	}
	if found {
		sc.Previous = previous
		sc.Changed = previous != sc.Outcome
	}
	if sc.Changed {
		c.log.WarnObj("scenario outcome changed", "scenario_change", map[string]any{
			"scenario": sc.ID,
			"previous": sc.Previous,
			"current":  sc.Outcome,
		})
	}
	if err := c.store.RecordOutcome(sc.ID, sc.Outcome); err != nil {
		return fmt.Errorf("record history for %s: %w", sc.ID, err)
	}
	return nil
}

// Close releases storage and reporters.
func (c *Checker) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := c.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func scenarioReport(r verifier.TestResult) publishers.ScenarioReport {
	sc := publishers.ScenarioReport{
		ID:        r.TestID.String(),
		Outcome:   string(r.Outcome),
		Defects:   r.Defects,
		ElapsedMs: r.Elapsed.Milliseconds(),
	}
	for _, err := range r.Errors {
		sc.Errors = append(sc.Errors, err.Error())
	}
	return sc
}
