// Command pricefeed builds the marketplace feed, product pages and sitemaps
// from the vendor price list and serves the resulting catalog.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/yourusername/pricefeed/config"
	"github.com/yourusername/pricefeed/internal/delivery/api"
	"github.com/yourusername/pricefeed/internal/delivery/scheduler"
	"github.com/yourusername/pricefeed/internal/domain/entity"
	"github.com/yourusername/pricefeed/internal/usecase"
)

var (
	outputDir    string
	priceURL     string
	inputFile    string
	httpAddr     string
	historyLimit int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pricefeed",
		Short: "Generate a YML feed, product pages and sitemaps from the 1C price list",
		Long: `pricefeed downloads the vendor price list, turns it into a Yandex YML feed,
one HTML page per product, sitemaps and robots.txt, then notifies search engines.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (default: OUTPUT_DIR or dist)")
	rootCmd.PersistentFlags().StringVar(&priceURL, "price-url", "", "Price list archive URL (default: PRICE_URL)")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the pipeline once",
		Args:  cobra.NoArgs,
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVarP(&inputFile, "file", "f", "", "Use a local .xls/.xlsx file instead of downloading")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the catalog API and output files, regenerating on a schedule",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "Listen address (default: HTTP_ADDR or :3000)")

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")

	rootCmd.AddCommand(generateCmd, serveCmd, historyCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config yuklanmadi: %w", err)
	}
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	if priceURL != "" {
		cfg.PriceURL = priceURL
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}
	return cfg, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	var run *entity.Run
	if inputFile != "" {
		if _, statErr := os.Stat(inputFile); os.IsNotExist(statErr) {
			return fmt.Errorf("file not found: %s", inputFile)
		}
		run, err = a.feed.GenerateFromFile(ctx, inputFile)
	} else {
		run, err = a.feed.Generate(ctx)
	}
	if err != nil {
		return err
	}

	if run.Status == entity.RunEmpty {
		log.Println("⚠️ No offers found, nothing was written")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sched, err := scheduler.New(ctx, cfg.GenerateSchedule, a.feed)
	if err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	// Birinchi generatsiya fonda: tugaguncha /api/catalog 503 qaytaradi
	go func() {
		if _, err := a.feed.Generate(ctx); err != nil && !errors.Is(err, usecase.ErrRunInProgress) {
			log.Printf("❌ Initial generation failed: %v", err)
		}
	}()

	if cfg.DownloadKey == "" {
		log.Println("⚠️ DOWNLOAD_KEY is not set, site files download is disabled")
	}

	server := api.NewServer(api.Options{
		Catalog:     a.catalog,
		Feed:        a.feed,
		OutputDir:   cfg.OutputDir,
		DownloadKey: cfg.DownloadKey,
		Archive:     a.output,
	})
	return server.Run(ctx, cfg.HTTPAddr)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	runs, closeRuns, err := openLedger(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRuns()

	list, err := runs.ListRuns(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}
	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tSTATUS\tOFFERS\tCATEGORIES\tDURATION\tSOURCE\tERROR")
	for _, r := range list {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.Offers, r.Categories,
			r.Duration().Round(time.Millisecond), r.Source, r.Error)
	}
	return w.Flush()
}
