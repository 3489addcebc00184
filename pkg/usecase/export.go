package usecase

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/vanguard/pkg/domain/interfaces"
	"github.com/secmon-lab/vanguard/pkg/domain/model"
)

// exportResult appends the pipeline result to the analytics table. The table
// schema follows the records: new result fields merge into the live schema
// before insert.
func (x *UseCase) exportResult(ctx context.Context, result *model.PipelineResult) error {
	analytics := x.clients.Analytics()
	if analytics == nil {
		return nil
	}

	record := &model.ResultRawRecord{
		PipelineResult: *result,
		Timestamp:      result.CompletedAt.UnixMicro(),
	}

	schema, schemaUpdated, err := createOrUpdateResultTable(ctx, analytics, record)
	if err != nil {
		return err
	}

	if err := analytics.Insert(ctx, schema, record, interfaces.WithRetry(schemaUpdated)); err != nil {
		return goerr.Wrap(err, "failed to insert scan result record")
	}

	return nil
}

func createOrUpdateResultTable(ctx context.Context, analytics interfaces.Analytics, record *model.ResultRawRecord) (schema bigquery.Schema, schemaUpdated bool, err error) {
	schema, err = bqs.Infer(record)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to infer result schema")
	}

	metaData, err := analytics.GetMetadata(ctx)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to get analytics table metadata")
	}
	if metaData == nil {
		if err := analytics.CreateTable(ctx, &bigquery.TableMetadata{
			Schema: schema,
		}); err != nil {
			return nil, false, goerr.Wrap(err, "failed to create analytics table")
		}

		return schema, false, nil
	}

	if bqs.Equal(metaData.Schema, schema) {
		return schema, false, nil
	}

	mergedSchema, err := bqs.Merge(metaData.Schema, schema)
	if err != nil {
		return nil, false, goerr.Wrap(err, "failed to merge analytics schema")
	}
	if err := analytics.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
		Schema: mergedSchema,
	}, metaData.ETag); err != nil {
		return nil, false, goerr.Wrap(err, "failed to update analytics table")
	}

	return mergedSchema, true, nil
}
