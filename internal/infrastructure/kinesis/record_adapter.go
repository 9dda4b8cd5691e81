package kinesis

import (
	"context"
	"fmt"

	lambdaevents "github.com/aws/aws-lambda-go/events"
	"github.com/coderkeshav-yt/Mithila-Bhog-sub000/internal/events"
	"go.uber.org/zap"
)

// ConvertRecord decodes the event envelope carried in a Kinesis record.
// The stream is fed from the storefront-events topic, one envelope per record.
func ConvertRecord(record lambdaevents.KinesisEventRecord) (*events.Event, error) {
	if len(record.Kinesis.Data) == 0 {
		return nil, fmt.Errorf("empty record data")
	}
	return events.Parse(record.Kinesis.Data)
}

// BatchConvert converts every record in a Kinesis event.
// It returns the converted events and one error per record that failed.
func BatchConvert(kinesisEvent lambdaevents.KinesisEvent) ([]*events.Event, []error) {
	var converted []*events.Event
	var errs []error

	for _, record := range kinesisEvent.Records {
		e, err := ConvertRecord(record)
		if err != nil {
			errs = append(errs, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		converted = append(converted, e)
	}
	return converted, errs
}

// NewLambdaHandler adapts an events.Handler to a Kinesis-triggered Lambda that
// reports partial batch failures. Undecodable records are logged and skipped;
// records whose handler fails are reported back for retry.
func NewLambdaHandler(handler events.Handler, logger *zap.Logger) func(ctx context.Context, kinesisEvent lambdaevents.KinesisEvent) (lambdaevents.KinesisEventResponse, error) {
	logger = logger.Named("kinesis")
	return func(ctx context.Context, kinesisEvent lambdaevents.KinesisEvent) (lambdaevents.KinesisEventResponse, error) {
		var failures []lambdaevents.KinesisBatchItemFailure

		for _, record := range kinesisEvent.Records {
			e, err := ConvertRecord(record)
			if err != nil {
				logger.Error("skipping record", zap.String("record_id", record.EventID), zap.Error(err))
				continue
			}
			if err := handler(ctx, e); err != nil {
				logger.Error("event handler failed", zap.String("event_id", e.ID), zap.String("event_type", e.EventType), zap.Error(err))
				failures = append(failures, lambdaevents.KinesisBatchItemFailure{ItemIdentifier: record.Kinesis.SequenceNumber})
			}
		}

		logger.Info("batch processed", zap.Int("records", len(kinesisEvent.Records)), zap.Int("failed", len(failures)))
		return lambdaevents.KinesisEventResponse{BatchItemFailures: failures}, nil
	}
}
