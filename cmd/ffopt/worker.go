package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/GoSim-25-26J-441/ffoptimum/internal/evaluator"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/metrics"
	"github.com/GoSim-25-26J-441/ffoptimum/internal/worker"
	"github.com/GoSim-25-26J-441/ffoptimum/pkg/logger"
)

func newWorkerCmd(flags *globalFlags) *cobra.Command {
	var grpcAddr, httpAddr string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Serve system evaluations over gRPC for remote optimizers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			model, err := evaluator.NewModel(cfg)
			if err != nil {
				return err
			}

			grpcLis, err := net.Listen("tcp", grpcAddr)
			if err != nil {
				return fmt.Errorf("listen gRPC: %w", err)
			}
			httpLis, err := net.Listen("tcp", httpAddr)
			if err != nil {
				grpcLis.Close()
				return fmt.Errorf("listen HTTP: %w", err)
			}
			return serveWorker(cmd.Context(), model, grpcLis, httpLis, logger.Default)
		},
	}
	cmd.Flags().StringVar(&grpcAddr, "grpc-addr", ":50051", "gRPC listen address")
	cmd.Flags().StringVar(&httpAddr, "http-addr", ":8080", "HTTP listen address")
	return cmd
}

// serveWorker runs the gRPC and HTTP servers until ctx is done or one of
// them fails, then stops both. It returns the first server error.
func serveWorker(ctx context.Context, model *evaluator.Model, grpcLis, httpLis net.Listener, l *slog.Logger) error {
	reg := prometheus.NewRegistry()
	ins := metrics.NewInstruments(reg)

	grpcServer := grpc.NewServer()
	worker.RegisterEvaluationServer(grpcServer, worker.NewGRPCServer(model, ins, l))

	httpSrv := &http.Server{
		Handler:           worker.NewHTTPServer(model, reg, l).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		l.Info("gRPC server listening", "addr", grpcLis.Addr().String(), "systems", model.Systems())
		if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			l.Error("gRPC server error", "error", err)
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		l.Info("HTTP server listening", "addr", httpLis.Addr().String())
		if err := httpSrv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("HTTP server error", "error", err)
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		l.Info("shutdown requested")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			l.Error("HTTP shutdown error", "error", err)
		}
		return nil
	})
	return g.Wait()
}
