package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cardrail/cardrail-api/internal/db"
	"github.com/cardrail/cardrail-api/internal/logger"
)

// SQSPublisher is the subset of the SQS client used for activity fan-out.
type SQSPublisher interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// ActivityService appends audit-trail entries and fans them out to the
// activity queue. Both writes are best-effort: an execution result is never
// failed because its audit record could not be written.
type ActivityService struct {
	queries     db.Querier
	sqsClient   SQSPublisher
	sqsQueueURL string
	logger      *zap.Logger
}

// NewActivityService creates a new activity service. The SQS client may be
// nil, in which case events are only written to the database.
func NewActivityService(queries db.Querier, sqsClient SQSPublisher, sqsQueueURL string) *ActivityService {
	return &ActivityService{
		queries:     queries,
		sqsClient:   sqsClient,
		sqsQueueURL: sqsQueueURL,
		logger:      logger.Log,
	}
}

// ActivityEvent is the message shape published to the activity queue.
type ActivityEvent struct {
	UserID      string          `json:"user_id"`
	EventType   string          `json:"event_type"`
	Description string          `json:"description"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// Record writes an activity log row and publishes the event. Errors are
// logged and swallowed.
func (s *ActivityService) Record(ctx context.Context, userID uuid.UUID, eventType, description string, metadata map[string]interface{}) {
	var metadataBytes []byte
	if metadata != nil {
		var err error
		metadataBytes, err = json.Marshal(metadata)
		if err != nil {
			s.logger.Error("Failed to marshal activity metadata",
				zap.String("event_type", eventType),
				zap.Error(err))
			metadataBytes = nil
		}
	}

	if _, err := s.queries.CreateActivityLog(ctx, db.CreateActivityLogParams{
		UserID:      userID,
		EventType:   eventType,
		Description: description,
		Metadata:    metadataBytes,
	}); err != nil {
		s.logger.Error("Failed to write activity log",
			zap.String("user_id", userID.String()),
			zap.String("event_type", eventType),
			zap.Error(err))
	}

	if s.sqsClient == nil || s.sqsQueueURL == "" {
		return
	}

	event := ActivityEvent{
		UserID:      userID.String(),
		EventType:   eventType,
		Description: description,
		Metadata:    metadataBytes,
		OccurredAt:  time.Now().UTC(),
	}
	eventBytes, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal activity event", zap.Error(err))
		return
	}

	if _, err := s.sqsClient.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.sqsQueueURL),
		MessageBody: aws.String(string(eventBytes)),
		MessageAttributes: map[string]sqstypes.MessageAttributeValue{
			"EventType": {
				StringValue: aws.String(eventType),
				DataType:    aws.String("String"),
			},
			"UserID": {
				StringValue: aws.String(userID.String()),
				DataType:    aws.String("String"),
			},
		},
	}); err != nil {
		s.logger.Error("Failed to publish activity event",
			zap.String("event_type", eventType),
			zap.Error(err))
	}
}
