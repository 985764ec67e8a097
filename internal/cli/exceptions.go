package cli

import (
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/leshachaplin/tracklog/internal/domain"
	"github.com/leshachaplin/tracklog/internal/sink/redpanda"
)

var (
	exceptionsCmd = &cobra.Command{
		Use:   "exceptions",
		Short: "Inspect reported exceptions",
	}

	tailCmd = &cobra.Command{
		Use:   "tail",
		Short: "Print exceptions from the sink topic as JSON lines",
		RunE:  runTail,
	}
)

func init() {
	rootCmd.AddCommand(exceptionsCmd)
	exceptionsCmd.AddCommand(tailCmd)
}

func runTail(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.ExceptionSink.Enabled() {
		return errors.New("exception_sink.brokers and exception_sink.topic must be set")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	consumer, err := redpanda.NewConsumer(ctx, cfg.ExceptionSink, logger)
	if err != nil {
		return err
	}
	defer consumer.Close()

	records := make(chan domain.ExceptionRecord)
	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		defer close(records)
		return consumer.Consume(gCtx, records)
	})
	group.Go(func() error {
		enc := json.NewEncoder(cmd.OutOrStdout())
		for rec := range records {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	})
	return group.Wait()
}
