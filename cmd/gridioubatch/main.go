// gridioubatch compares every reference/predicted pair listed in a manifest
// and writes one tab-delimited row of agreement metrics per pair to stdout, in
// manifest order. A failure in one pair is logged and recorded in that pair's
// row; it does not stop the batch. A summary across all pairs is written to
// stderr.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gridiou"
	"github.com/carbocation/gridiou/compileinfo"
	"github.com/carbocation/gridiou/logging"
	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/gridiou/rasterio"
	"github.com/carbocation/gridiou/report"
	"github.com/rs/zerolog"
)

const maxLoadAttempts = 10

// Safe for concurrent use by multiple goroutines
var client *storage.Client

func init() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), compileinfo.Get())
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
	}
}

func main() {
	start := time.Now()

	var manifest, configPath, credentials, logLevel string
	var bqTarget gridiou.BigQueryTarget
	var concurrency int
	var logJSON bool

	flag.StringVar(&manifest, "manifest", "", "Path to a delimited manifest with columns id, reference, predicted and optionally reference_nodata, predicted_nodata. Local path or gs:// URL.")
	flag.StringVar(&configPath, "config", "", "(Optional) JSONConfig file. Its manifest, credentials and bigquery settings are used unless overridden by flags.")
	flag.StringVar(&credentials, "credentials", "", "(Optional) Service account JSON for Google Storage and BigQuery.")
	flag.StringVar(&bqTarget.Project, "bq-project", "", "(Optional) BigQuery project to insert rows into.")
	flag.StringVar(&bqTarget.Dataset, "bq-dataset", "", "(Optional) BigQuery dataset to insert rows into.")
	flag.StringVar(&bqTarget.Table, "bq-table", "", "(Optional) BigQuery table to insert rows into. Created if missing.")
	flag.IntVar(&concurrency, "concurrency", 4*runtime.NumCPU(), "Number of pairs to compare at once.")
	flag.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	flag.BoolVar(&logJSON, "log-json", false, "(Optional) Log one JSON object per line instead of console output.")
	flag.Parse()

	newLogger := logging.New
	if logJSON {
		newLogger = logging.NewJSON
	}
	logger, err := newLogger(os.Stderr, logLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(1)
	}
	compileinfo.Log(logger)

	logger.Info().Msg("gridioubatch start")
	defer func() {
		logger.Info().Float64("seconds", time.Since(start).Seconds()).Msg("gridioubatch end")
	}()

	cfg := gridiou.JSONConfig{}
	if configPath != "" {
		cfg, err = gridiou.ParseJSONConfigFromPath(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("could not parse config")
		}
	}
	if manifest != "" {
		cfg.ManifestPath = manifest
	}
	if credentials != "" {
		cfg.Credentials = credentials
	}
	if bqTarget.Enabled() {
		cfg.BigQuery = bqTarget
	}

	if cfg.ManifestPath == "" || concurrency < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, concurrency, logger); err != nil {
		logger.Fatal().Err(err).Msg("batch failed")
	}
}

func run(ctx context.Context, cfg gridiou.JSONConfig, concurrency int, logger zerolog.Logger) error {
	// Initialize the Google Storage client only if we're pointing to Google
	// Storage paths. The manifest is read first with whatever client its own
	// path needs.
	var err error
	client, err = gridiou.NewStorageClient(ctx, cfg.Credentials, cfg.ManifestPath)
	if err != nil {
		return err
	}

	entries, err := readManifest(ctx, cfg.ManifestPath)
	if err != nil {
		return err
	}
	logger.Info().Int("pairs", len(entries)).Str("manifest", cfg.ManifestPath).Msg("read manifest")

	if client == nil {
		paths := make([]string, 0, 2*len(entries))
		for _, entry := range entries {
			paths = append(paths, entry.ReferencePath, entry.PredictedPath)
		}
		client, err = gridiou.NewStorageClient(ctx, cfg.Credentials, paths...)
		if err != nil {
			return err
		}
	}
	if client != nil {
		defer client.Close()
	}

	rows := runSlice(ctx, entries, concurrency, logger)

	if err := report.WriteRows(os.Stdout, rows, '\t'); err != nil {
		return err
	}

	if err := report.WriteSummary(os.Stderr, report.Summarize(rows)); err != nil {
		return err
	}

	if cfg.BigQuery.Enabled() {
		bq, err := report.NewBigQuery(ctx, cfg.BigQuery, cfg.Credentials)
		if err != nil {
			return err
		}
		defer bq.Close()

		if err := bq.EnsureTable(); err != nil {
			return err
		}
		if err := bq.Insert(rows); err != nil {
			return err
		}
		logger.Info().Int("rows", len(rows)).Str("table", cfg.BigQuery.Project+"."+cfg.BigQuery.Dataset+"."+cfg.BigQuery.Table).Msg("inserted rows into BigQuery")
	}

	return nil
}

func readManifest(ctx context.Context, path string) ([]gridiou.ManifestEntry, error) {
	f, err := gridiou.MaybeOpenFromGoogleStorage(ctx, path, client)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return gridiou.ReadManifest(f)
}

// runSlice compares every entry, at most concurrency at a time. Each
// goroutine owns exactly one slot of the output, so rows come back in
// manifest order without locking.
func runSlice(ctx context.Context, entries []gridiou.ManifestEntry, concurrency int, logger zerolog.Logger) []report.Row {
	rows := make([]report.Row, len(entries))

	sem := make(chan bool, concurrency)

	// Process every pair in the manifest
	for i, entry := range entries {
		sem <- true
		go func(i int, entry gridiou.ManifestEntry) {
			defer func() { <-sem }()

			res, err := processOnePairWithRetry(ctx, entry, logger)
			if err != nil {
				logger.Error().Err(err).Str("id", entry.ID).Msg("comparison failed")
			}
			logging.Warnings(logger, entry.ID, res.Warnings)

			rows[i] = report.NewRow(entry.ID, report.Labels{Reference: entry.ReferencePath, Predicted: entry.PredictedPath}, res, err)
		}(i, entry)

		if (i+1)%1000 == 0 {
			logger.Info().Int("processed", i+1).Msg("progress")
		}
	}

	for i := 0; i < cap(sem); i++ {
		sem <- true
	}

	return rows
}

// The main purpose of this loop is to handle a specific filesystem error
// (input/output error) that largely happens with GCSFuse, and retry a few
// times before giving up.
func processOnePairWithRetry(ctx context.Context, entry gridiou.ManifestEntry, logger zerolog.Logger) (raster.Result, error) {
	var res raster.Result
	var err error

	for loadAttempts := 1; loadAttempts <= maxLoadAttempts; loadAttempts++ {
		res, err = processOnePair(ctx, entry)

		if err != nil && loadAttempts < maxLoadAttempts && strings.Contains(err.Error(), "input/output error") {
			logger.Warn().Err(err).Str("id", entry.ID).Int("attempt", loadAttempts).Msg("sleeping 5s to recover")
			time.Sleep(5 * time.Second)
			continue
		}

		// Success, or an error that retrying won't fix
		break
	}

	return res, err
}

func processOnePair(ctx context.Context, entry gridiou.ManifestEntry) (raster.Result, error) {
	refNoData, predNoData, err := entry.NoData()
	if err != nil {
		return raster.Result{}, err
	}

	reference, err := rasterio.Load(ctx, entry.ReferencePath, client, refNoData)
	if err != nil {
		return raster.Result{}, err
	}

	predicted, err := rasterio.Load(ctx, entry.PredictedPath, client, predNoData)
	if err != nil {
		return raster.Result{}, err
	}

	return raster.Compare(reference, predicted)
}
