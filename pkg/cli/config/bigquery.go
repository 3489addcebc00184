package config

import (
	"context"
	"log/slog"

	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/types"
	"github.com/secmon-lab/vanguard/pkg/infra/bq"
	"github.com/urfave/cli/v3"
)

type BigQuery struct {
	projectID types.GoogleProjectID
	datasetID types.BQDatasetID
	tableID   types.BQTableID
}

func (x *BigQuery) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "bigquery-project-id",
			Usage:       "BigQuery project ID",
			Category:    "BigQuery",
			Destination: (*string)(&x.projectID),
			Sources:     cli.EnvVars("VANGUARD_BIGQUERY_PROJECT_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-dataset-id",
			Usage:       "BigQuery dataset ID",
			Category:    "BigQuery",
			Destination: (*string)(&x.datasetID),
			Sources:     cli.EnvVars("VANGUARD_BIGQUERY_DATASET_ID"),
		},
		&cli.StringFlag{
			Name:        "bigquery-table-id",
			Usage:       "BigQuery table ID for scan results",
			Category:    "BigQuery",
			Value:       "scan_results",
			Destination: (*string)(&x.tableID),
			Sources:     cli.EnvVars("VANGUARD_BIGQUERY_TABLE_ID"),
		},
	}
}

func (x *BigQuery) Enabled() bool {
	return x.projectID != "" && x.datasetID != ""
}

// NewClient returns nil without error when BigQuery is not configured; the
// analytics export is optional.
func (x *BigQuery) NewClient(ctx context.Context) (interfaces.Analytics, error) {
	if !x.Enabled() {
		return nil, nil
	}

	client, err := bq.New(ctx, x.projectID, x.datasetID, x.tableID)
	if err != nil {
		return nil, err
	}

	return client, nil
}

func (x *BigQuery) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("projectID", x.projectID),
		slog.Any("datasetID", x.datasetID),
		slog.Any("tableID", x.tableID),
	)
}
