package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/madcourses/skillmatch/internal/config"
	"github.com/madcourses/skillmatch/internal/domain/course"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and publish the course catalog",
}

var catalogStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Load the catalog and print statistics",
	RunE:  runCatalogStats,
}

var catalogPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Copy the catalog from one store to another",
	Long:  "Loads and validates the catalog from --from, then writes it to --to (redis or file).",
	RunE:  runCatalogPublish,
}

var (
	publishFrom string
	publishTo   string
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogStatsCmd)
	catalogCmd.AddCommand(catalogPublishCmd)

	catalogPublishCmd.Flags().StringVar(&publishFrom, "from", config.StorePostgres, "source store: redis, postgres or file")
	catalogPublishCmd.Flags().StringVar(&publishTo, "to", config.StoreRedis, "target store: redis or file")
}

func runCatalogStats(cmd *cobra.Command, _ []string) error {
	d := newDeps(globalCfg, globalLogger)
	defer d.Close()

	cache, err := d.catalogCache(cmd.Context())
	if err != nil {
		return err
	}
	cat, err := cache.Get(cmd.Context())
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	printStats(cmd.OutOrStdout(), cat.Stats())
	return nil
}

// catalogWriter is a store a catalog can be published to.
type catalogWriter interface {
	Save(ctx context.Context, entries []course.Entry) error
}

func runCatalogPublish(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if publishFrom == publishTo {
		return fmt.Errorf("--from and --to must differ")
	}

	d := newDeps(globalCfg, globalLogger)
	defer d.Close()

	src, err := d.loader(ctx, publishFrom)
	if err != nil {
		return fmt.Errorf("source store: %w", err)
	}
	dst, err := d.loader(ctx, publishTo)
	if err != nil {
		return fmt.Errorf("target store: %w", err)
	}
	w, ok := dst.(catalogWriter)
	if !ok {
		return fmt.Errorf("store %q is read-only", publishTo)
	}

	entries, err := src.Load(ctx)
	if err != nil {
		return fmt.Errorf("load from %s: %w", publishFrom, err)
	}
	// Refuse to publish a catalog the server would reject.
	cat, err := course.NewCatalog(entries, globalCfg.Catalog.Dimensions, src.Name())
	if err != nil {
		return fmt.Errorf("validate catalog: %w", err)
	}
	if err := w.Save(ctx, cat.Entries()); err != nil {
		return fmt.Errorf("save to %s: %w", publishTo, err)
	}

	globalLogger.Info("Catalog published",
		zap.String("from", publishFrom),
		zap.String("to", publishTo),
		zap.Int("courses", cat.Len()),
		zap.Int("dimensions", cat.Dim()),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "published %d courses from %s to %s\n", cat.Len(), publishFrom, publishTo)
	return nil
}

func printStats(w io.Writer, st course.Stats) {
	fmt.Fprintf(w, "source:     %s\n", st.Source)
	fmt.Fprintf(w, "loaded at:  %s\n", st.LoadedAt.Format(time.RFC3339))
	fmt.Fprintf(w, "courses:    %d\n", st.Courses)
	fmt.Fprintf(w, "dimensions: %d\n", st.Dimensions)
	fmt.Fprintf(w, "subjects:   %d (%s)\n", len(st.Subjects), strings.Join(st.Subjects, ", "))
	fmt.Fprintf(w, "terms:      %s\n", strings.Join(st.Terms, ", "))
}
