package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/limaJavier/timetabling-memetic/pkg/config"
	"github.com/limaJavier/timetabling-memetic/pkg/experiment"
	"github.com/limaJavier/timetabling-memetic/pkg/logger"
	"github.com/limaJavier/timetabling-memetic/pkg/observability"
	"github.com/limaJavier/timetabling-memetic/pkg/progress"
	"github.com/limaJavier/timetabling-memetic/pkg/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand(stdout io.Writer) *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:          "benchmark",
		Short:        "Runs the experiment matrix of a configuration file",
		Long:         `Runs every instance of a configuration file through the swept engine configurations, either as plain runs or as ban-and-repair runs, and writes the results as CSV.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			return runExperiment(cmd.Context(), cfg, stdout)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "benchmark.toml", "path to the TOML configuration file")

	root.AddCommand(newBestCommand(&configFile, stdout))
	root.AddCommand(newResultsCommand(&configFile, stdout))
	return root
}

func runExperiment(ctx context.Context, cfg *config.Config, stdout io.Writer) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("cannot build logger: %w", err)
	}
	defer log.Sync()

	sink := progress.NewAsync(log.Named("progress"), 0)
	defer sink.Close()

	hooks := observability.NewPrometheusHooks()
	options := []experiment.Option{
		experiment.WithLogger(log),
		experiment.WithSink(sink),
		experiment.WithHooks(hooks),
	}

	if cfg.Metrics.Address != "" {
		shutdown, err := serveMetrics(cfg.Metrics.Address, hooks.Handler(), log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	if cfg.Store.DSN != "" {
		db, err := store.Open(cfg.Store.DSN)
		if err != nil {
			return err
		}
		defer db.Close()
		options = append(options, experiment.WithRepository(store.NewResultRepository(db)))
	}

	runner := experiment.NewRunner(cfg, options...)
	records, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	if err := writeResults(cfg.Experiment.Output, cfg.Experiment.Mode, records); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "run %v: %d records written to %v\n", runner.RunID(), len(records), cfg.Experiment.Output)
	return nil
}

func writeResults(output, mode string, records []experiment.Record) error {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}
	file, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	if err := experiment.WriteCSV(file, mode, records); err != nil {
		return fmt.Errorf("cannot write CSV file: %w", err)
	}
	return nil
}

// serveMetrics exposes the collectors at /metrics until the returned function is called
func serveMetrics(address string, handler http.Handler, log *zap.Logger) (func(), error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("cannot listen on %v: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("address", listener.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Warn("metrics server shutdown", zap.Error(err))
		}
	}, nil
}

func openRepository(configFile string) (*store.ResultRepository, func() error, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Store.DSN == "" {
		return nil, nil, errors.New("the configuration has no result store")
	}
	db, err := store.Open(cfg.Store.DSN)
	if err != nil {
		return nil, nil, err
	}
	return store.NewResultRepository(db), db.Close, nil
}

func newBestCommand(configFile *string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "best <instance>...",
		Short: "Shows the stored result with the fewest weighted violations of each instance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository, closeStore, err := openRepository(*configFile)
			if err != nil {
				return err
			}
			defer closeStore()

			results := make([]store.Result, 0, len(args))
			for _, instance := range args {
				result, err := repository.Best(cmd.Context(), instance)
				if err != nil {
					return fmt.Errorf("%v: %w", instance, err)
				}
				results = append(results, *result)
			}
			return printResults(stdout, results)
		},
	}
}

func newResultsCommand(configFile *string, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "results <run>",
		Short: "Lists the stored results of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repository, closeStore, err := openRepository(*configFile)
			if err != nil {
				return err
			}
			defer closeStore()

			results, err := repository.ListByRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printResults(stdout, results)
		},
	}
}

func printResults(stdout io.Writer, results []store.Result) error {
	writer := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "INSTANCE\tSEED\tFIX\tLOCAL SEARCH\tV(W)\tV(H)\tV(S)\tDURATION")
	for _, result := range results {
		fmt.Fprintf(writer, "%v\t%d\t%v\t%v\t%d\t%d\t%d\t%v\n",
			result.Instance,
			result.Seed,
			result.FixMethod,
			result.LocalSearch,
			result.WeightedViolations,
			result.HardViolations,
			result.SoftViolations,
			time.Duration(result.DurationMs)*time.Millisecond,
		)
	}
	return writer.Flush()
}
