package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/anneal"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/forcefield"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/worker"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/config"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/models"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/utils"
)

func newOptimizeCmd(flags *globalFlags) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Run the configured annealing optimizer and print a JSON run summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			summary, runErr := runOptimize(cmd.Context(), cfg, runOptions{
				registry:    reg,
				metricsAddr: metricsAddr,
				logger:      logger.Default,
			})
			if summary != nil {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(summary); err != nil {
					return fmt.Errorf("failed to encode run summary: %w", err)
				}
			}
			if runErr != nil && !errors.Is(runErr, context.Canceled) {
				return runErr
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /healthz and /metrics on this address while optimizing")
	return cmd
}

type runOptions struct {
	registry    *prometheus.Registry
	metricsAddr string
	logger      *slog.Logger
}

// runOptimize runs every configured epoch, saves the results under
// <output_directory>/<run id> and summarizes the run. Results are saved
// even when the run fails or is cancelled.
func runOptimize(ctx context.Context, cfg *config.Config, opts runOptions) (*models.RunSummary, error) {
	start := time.Now()
	runID := utils.GenerateRunID()
	log := opts.logger.With("run_id", runID)
	outDir := filepath.Join(cfg.OutputDirectory, runID)

	if opts.registry == nil {
		opts.registry = prometheus.NewRegistry()
	}
	ins := metrics.NewInstruments(opts.registry)

	modelOpts := []evaluator.Option{evaluator.WithInstruments(ins), evaluator.WithLogger(log)}
	if len(cfg.Evaluation.Remote) > 0 {
		client, err := worker.NewClient(cfg.Evaluation.Remote)
		if err != nil {
			return nil, err
		}
		defer client.Close()
		modelOpts = append(modelOpts, evaluator.WithRunner(client))
		log.Info("evaluating on remote workers", "workers", cfg.Evaluation.Remote)
	}
	model, err := evaluator.NewModel(cfg, modelOpts...)
	if err != nil {
		return nil, err
	}
	params, err := forcefield.NewSet(cfg.Parameters)
	if err != nil {
		return nil, err
	}

	if opts.metricsAddr != "" {
		srv := &http.Server{
			Addr:              opts.metricsAddr,
			Handler:           worker.NewHTTPServer(model, opts.registry, log).Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics server listening", "addr", opts.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	collector := metrics.NewCollector().WithInstruments(ins, cfg.Algorithm.Name)
	opt, err := anneal.New(cfg.Algorithm, params, model,
		anneal.WithRand(utils.NewRandSource(cfg.Seed)),
		anneal.WithLogger(log),
		anneal.WithCollector(collector),
	)
	if err != nil {
		return nil, err
	}

	log.Info("optimization started", "algorithm", opt.Kind(), "epochs", cfg.Algorithm.Epoch,
		"parameters", params.Len(), "objectives", len(model.Objectives()))
	collector.Start()
	res, runErr := anneal.Run(ctx, opt, cfg.Algorithm.Epoch)
	collector.Stop()

	summary := &models.RunSummary{
		ID:         runID,
		Algorithm:  string(opt.Kind()),
		Status:     models.RunStatusCompleted,
		Objectives: model.Objectives(),
		OutputDir:  outDir,
		Metrics:    collector.GetSummary(),
	}
	if res != nil {
		summary.Epochs = res.Epoch + 1
		summary.StopReason = string(res.StopReason)
		summary.InitialError = res.InitialError
		summary.InitialFitness = res.InitialFitness
		summary.BestError = res.BestError
		summary.ArchiveSize = res.ArchiveSize
		summary.Removed = res.Removed
	}
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled):
		summary.Status = models.RunStatusCancelled
		log.Warn("optimization cancelled", "error", runErr)
	default:
		summary.Status = models.RunStatusFailed
		summary.Error = runErr.Error()
		log.Error("optimization failed", "error", runErr)
	}

	if err := opt.SaveParameters(outDir); err != nil {
		return summary, errors.Join(runErr, fmt.Errorf("save parameters: %w", err))
	}
	if err := opt.SaveErrors(outDir); err != nil {
		return summary, errors.Join(runErr, fmt.Errorf("save error trace: %w", err))
	}

	summary.Duration = utils.FormatDuration(time.Since(start))
	log.Info("optimization finished", "status", summary.Status, "duration", summary.Duration, "output_directory", outDir)
	return summary, runErr
}
