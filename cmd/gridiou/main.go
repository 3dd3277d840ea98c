// gridiou compares a predicted binary classification grid (e.g., a flood
// map) against a reference grid and reports IoU, precision, recall, F1 and
// overall accuracy. Cells equal to 1 are positive; every other value,
// including no-data, is negative.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"cloud.google.com/go/storage"
	"github.com/carbocation/gridiou"
	"github.com/carbocation/gridiou/compileinfo"
	"github.com/carbocation/gridiou/logging"
	"github.com/carbocation/gridiou/raster"
	"github.com/carbocation/gridiou/rasterio"
	"github.com/carbocation/gridiou/report"
	"github.com/rs/zerolog"
)

func init() {
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), compileinfo.Get())
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()

		fmt.Fprintln(flag.CommandLine.Output(), "Example JSONConfig file layout:")
		nodata := -9999.0
		bts, err := json.MarshalIndent(gridiou.JSONConfig{
			ReferencePath:   "gs://bucket/reference.tif",
			PredictedPath:   "predicted.csv.gz",
			PredictedNoData: &nodata,
			Format:          "text",
		}, "", "  ")
		if err == nil {
			fmt.Fprintln(flag.CommandLine.Output(), string(bts))
		}
	}
}

// optionalFloat is a flag that records whether it was set at all.
type optionalFloat struct {
	value *float64
}

func (o *optionalFloat) String() string {
	if o == nil || o.value == nil {
		return ""
	}
	return strconv.FormatFloat(*o.value, 'g', -1, 64)
}

func (o *optionalFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	o.value = &v
	return nil
}

func main() {
	var referencePath, predictedPath, configPath, referenceLabel, predictedLabel, output, format, credentials, logLevel string
	var referenceNoData, predictedNoData optionalFloat
	var logJSON bool

	flag.StringVar(&referencePath, "reference", "", "Path to the reference (ground truth) grid. Local path or gs:// URL.")
	flag.StringVar(&predictedPath, "predicted", "", "Path to the predicted (classified) grid. Local path or gs:// URL.")
	flag.StringVar(&configPath, "config", "", "(Optional) JSONConfig file. Flags override its values.")
	flag.StringVar(&referenceLabel, "reference-label", "", "(Optional) Name of the reference grid in the report. Defaults to its path.")
	flag.StringVar(&predictedLabel, "predicted-label", "", "(Optional) Name of the predicted grid in the report. Defaults to its path.")
	flag.Var(&referenceNoData, "reference-nodata", "(Optional) No-data value declared by the reference grid. Recorded only; no-data cells count as negative.")
	flag.Var(&predictedNoData, "predicted-nodata", "(Optional) No-data value declared by the predicted grid. Recorded only; no-data cells count as negative.")
	flag.StringVar(&output, "output", "", "(Optional) Also save the report to this local path or gs:// URL.")
	flag.StringVar(&format, "format", "", "(Optional) Report format: text, tsv or csv. Default text.")
	flag.StringVar(&credentials, "credentials", "", "(Optional) Service account JSON for Google Storage and BigQuery.")
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

	cfg := gridiou.JSONConfig{}
	if configPath != "" {
		cfg, err = gridiou.ParseJSONConfigFromPath(configPath)
		if err != nil {
			logger.Fatal().Err(err).Str("config", configPath).Msg("could not parse config")
		}
	}

	overrideString(&cfg.ReferencePath, referencePath)
	overrideString(&cfg.PredictedPath, predictedPath)
	overrideString(&cfg.ReferenceLabel, referenceLabel)
	overrideString(&cfg.PredictedLabel, predictedLabel)
	overrideString(&cfg.OutputPath, output)
	overrideString(&cfg.Format, format)
	overrideString(&cfg.Credentials, credentials)
	if referenceNoData.value != nil {
		cfg.ReferenceNoData = referenceNoData.value
	}
	if predictedNoData.value != nil {
		cfg.PredictedNoData = predictedNoData.value
	}
	if cfg.Format == "" {
		cfg.Format = "text"
	}

	if cfg.ReferencePath == "" || cfg.PredictedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("comparison failed")
	}
}

func overrideString(dst *string, flagValue string) {
	if flagValue != "" {
		*dst = flagValue
	}
}

func run(ctx context.Context, cfg gridiou.JSONConfig, logger zerolog.Logger) error {
	client, err := gridiou.NewStorageClient(ctx, cfg.Credentials, cfg.ReferencePath, cfg.PredictedPath, cfg.OutputPath)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	res, err := compare(ctx, cfg, client, logger)
	if err != nil {
		return err
	}

	labels := report.Labels{Reference: cfg.ReferenceLabel, Predicted: cfg.PredictedLabel}
	if labels.Reference == "" {
		labels.Reference = cfg.ReferencePath
	}
	if labels.Predicted == "" {
		labels.Predicted = cfg.PredictedPath
	}

	body, err := render(cfg.Format, res, labels)
	if err != nil {
		return err
	}

	if _, err := os.Stdout.Write(body); err != nil {
		return err
	}

	if cfg.OutputPath != "" {
		if err := report.Save(ctx, cfg.OutputPath, body, client); err != nil {
			return err
		}
		logger.Info().Str("output", cfg.OutputPath).Msg("saved report")
	}

	if cfg.BigQuery.Enabled() {
		if err := insertBigQuery(ctx, cfg, report.NewRow("", labels, res, nil)); err != nil {
			return err
		}
		logger.Info().Str("table", cfg.BigQuery.Project+"."+cfg.BigQuery.Dataset+"."+cfg.BigQuery.Table).Msg("inserted row into BigQuery")
	}

	return nil
}

func compare(ctx context.Context, cfg gridiou.JSONConfig, client *storage.Client, logger zerolog.Logger) (raster.Result, error) {
	reference, err := rasterio.Load(ctx, cfg.ReferencePath, client, cfg.ReferenceNoData)
	if err != nil {
		return raster.Result{}, err
	}
	logger.Debug().Str("path", cfg.ReferencePath).Stringer("shape", reference.Shape()).Msg("loaded reference grid")

	predicted, err := rasterio.Load(ctx, cfg.PredictedPath, client, cfg.PredictedNoData)
	if err != nil {
		return raster.Result{}, err
	}
	logger.Debug().Str("path", cfg.PredictedPath).Stringer("shape", predicted.Shape()).Msg("loaded predicted grid")

	res, err := raster.Compare(reference, predicted)
	logging.Warnings(logger, "", res.Warnings)

	return res, err
}

func render(format string, res raster.Result, labels report.Labels) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case "text":
		if err := report.WriteText(&buf, res, labels); err != nil {
			return nil, err
		}
	case "tsv":
		if err := report.WriteRows(&buf, []report.Row{report.NewRow("", labels, res, nil)}, '\t'); err != nil {
			return nil, err
		}
	case "csv":
		if err := report.WriteRows(&buf, []report.Row{report.NewRow("", labels, res, nil)}, ','); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("Unknown format %q. Expected text, tsv or csv", format)
	}

	return buf.Bytes(), nil
}

func insertBigQuery(ctx context.Context, cfg gridiou.JSONConfig, row report.Row) error {
	bq, err := report.NewBigQuery(ctx, cfg.BigQuery, cfg.Credentials)
	if err != nil {
		return err
	}
	defer bq.Close()

	if err := bq.EnsureTable(); err != nil {
		return err
	}

	return bq.Insert([]report.Row{row})
}
