package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/juju/clock"
)

// SNSAPI is the slice of the SNS client the publisher needs.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSPublisher publishes events as JSON messages to a topic, with the
// event type as a message attribute so subscribers can filter.
type SNSPublisher struct {
	client   SNSAPI
	topicARN string
	clock    clock.Clock
}

func NewSNSPublisher(client SNSAPI, topicARN string, clk clock.Clock) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN, clock: clk}
}

type snsEvent struct {
	EventType  string                 `json:"eventType"`
	EntityID   string                 `json:"entityId"`
	ActorID    string                 `json:"actorId"`
	Details    map[string]interface{} `json:"details,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

func (s *SNSPublisher) LogEvent(ctx context.Context, refID, eventType, actor string, payload map[string]interface{}) error {
	body, err := json.Marshal(snsEvent{
		EventType:  eventType,
		EntityID:   refID,
		ActorID:    actorOrSystem(actor),
		Details:    payload,
		OccurredAt: s.clock.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"eventType": {
				DataType:    aws.String("String"),
				StringValue: aws.String(eventType),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}
	return nil
}
