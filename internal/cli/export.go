package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/leshachaplin/tracklog/internal/config"
	"github.com/leshachaplin/tracklog/internal/domain"
	"github.com/leshachaplin/tracklog/internal/storage/kv"
	"github.com/leshachaplin/tracklog/internal/storage/stream"
)

var (
	exportCmd = &cobra.Command{
		Use:   "export",
		Short: "Write the buffered records of one stream as a JSON array",
		Long: `Write the buffered records of one stream as a JSON array.
Without --stream the names of the stored streams are listed instead.`,
		RunE:  runExport,
	}

	exportStreamName string
	exportOut        string
	exportClear      bool
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportStreamName, "stream", "", "Stream to export, lists stored streams when empty")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file, stdout when empty")
	exportCmd.Flags().BoolVar(&exportClear, "clear", false, "Clear the stream after a successful export")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		out = f
	}

	if exportStreamName == "" {
		return listStreams(cmd.Context(), cfg, out)
	}
	return exportStream(cmd.Context(), cfg, exportStreamName, exportClear, out)
}

func listStreams(ctx context.Context, cfg config.Config, out io.Writer) error {
	substrate, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer substrate.Close()

	keys, err := substrate.Keys(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		if _, err = fmt.Fprintln(out, k); err != nil {
			return err
		}
	}
	return nil
}

func exportStream(ctx context.Context, cfg config.Config, name string, clearAfter bool, out io.Writer) error {
	substrate, err := kv.Open(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	defer substrate.Close()

	store := stream.New(substrate, zerolog.New(os.Stderr))
	records := store.ReadAll(ctx, name)
	if records == nil {
		records = []domain.Record{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err = enc.Encode(records); err != nil {
		return fmt.Errorf("encode stream %s: %w", name, err)
	}

	if clearAfter {
		return store.Clear(ctx, name)
	}
	return nil
}
