package report

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/carbocation/gridiou"
	"github.com/carbocation/pfx"
	"google.golang.org/api/option"
)

// WrappedBigQuery streams comparison rows into one table.
type WrappedBigQuery struct {
	Context context.Context
	Client  *bigquery.Client
	Project string
	Dataset string
	Table   string
}

// NewBigQuery connects to the target's project. If credentialsFile is set, it
// is used instead of the application default credentials.
func NewBigQuery(ctx context.Context, target gridiou.BigQueryTarget, credentialsFile string) (*WrappedBigQuery, error) {
	if !target.Enabled() {
		return nil, fmt.Errorf("BigQuery target %s.%s.%s is incomplete", target.Project, target.Dataset, target.Table)
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(gridiou.ExpandHome(credentialsFile)))
	}

	client, err := bigquery.NewClient(ctx, target.Project, opts...)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("connecting to BigQuery: %v", err))
	}

	return &WrappedBigQuery{
		Context: ctx,
		Client:  client,
		Project: target.Project,
		Dataset: target.Dataset,
		Table:   target.Table,
	}, nil
}

// EnsureTable creates the table with the schema inferred from Row if it does
// not already exist.
func (bq *WrappedBigQuery) EnsureTable() error {
	table := bq.Client.Dataset(bq.Dataset).Table(bq.Table)

	if _, err := table.Metadata(bq.Context); err == nil {
		return nil
	}

	schema, err := bigquery.InferSchema(Row{})
	if err != nil {
		return pfx.Err(err)
	}

	if err := table.Create(bq.Context, &bigquery.TableMetadata{Schema: schema}); err != nil {
		return pfx.Err(fmt.Errorf("creating %s.%s.%s: %v", bq.Project, bq.Dataset, bq.Table, err))
	}

	return nil
}

// Insert streams rows into the table in batches.
func (bq *WrappedBigQuery) Insert(rows []Row) error {
	const batchSize = 500

	inserter := bq.Client.Dataset(bq.Dataset).Table(bq.Table).Inserter()

	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}

		if err := inserter.Put(bq.Context, rows[start:end]); err != nil {
			return pfx.Err(fmt.Errorf("inserting rows %d-%d into %s.%s.%s: %v", start, end, bq.Project, bq.Dataset, bq.Table, err))
		}
	}

	return nil
}

func (bq *WrappedBigQuery) Close() error {
	return bq.Client.Close()
}
