// Package notify delivers warning/error events to an SNS topic. Delivery is
// best-effort: a reconciliation never fails because a notification did.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/rs/zerolog"

	"github.com/gllesch/plsync/internal/domain"
)

// publishAPI is the slice of the SNS client Send uses; tests substitute a
// recorder.
type publishAPI interface {
	Publish(ctx context.Context, input *awssns.PublishInput, optFns ...func(*awssns.Options)) (*awssns.PublishOutput, error)
}

type SNS struct {
	client   publishAPI
	topicARN string
	log      zerolog.Logger
}

func NewSNS(cfg aws.Config, topicARN string, log zerolog.Logger) *SNS {
	return &SNS{
		client:   awssns.NewFromConfig(cfg),
		topicARN: topicARN,
		log:      log,
	}
}

// Send publishes one event. With no topic configured, events land in the log
// only. Publish failures are logged and swallowed.
func (n *SNS) Send(ctx context.Context, severity domain.Severity, subject, message string) {
	event := n.log.WithLevel(levelFor(severity)).
		Str("subject", subject).
		Str("notification", message)

	if n.topicARN == "" {
		event.Msg("notification (no topic configured)")
		return
	}

	_, err := n.client.Publish(ctx, &awssns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Subject:  aws.String(fmt.Sprintf("[%s] %s", strings.ToUpper(string(severity)), subject)),
		Message:  aws.String(message),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"severity": {
				DataType:    aws.String("String"),
				StringValue: aws.String(string(severity)),
			},
		},
	})
	if err != nil {
		n.log.Warn().Err(err).Str("topic", n.topicARN).Msg("notification publish failed")
		return
	}
	event.Msg("notification published")
}

func levelFor(severity domain.Severity) zerolog.Level {
	switch severity {
	case domain.SeverityError:
		return zerolog.ErrorLevel
	case domain.SeverityWarning:
		return zerolog.WarnLevel
	default:
		return zerolog.InfoLevel
	}
}
