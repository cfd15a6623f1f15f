package cloud

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// SubscriptionSummary describes one SNS topic subscription.
type SubscriptionSummary struct {
	Protocol string
	Endpoint string
}

// TopicSummary describes one SNS topic and its subscriptions.
type TopicSummary struct {
	ARN           string
	Subscriptions []SubscriptionSummary
}

// QueueSummary is the attribute slice of one SQS queue the suite asserts on.
type QueueSummary struct {
	URL               string
	VisibilityTimeout int
	HasRedrivePolicy  bool
	ApproximateDepth  int
}

// TopicNotFoundError is returned when no topic with the searched name exists.
type TopicNotFoundError struct {
	Name string
}

func (e *TopicNotFoundError) Error() string {
	return fmt.Sprintf("sns topic %q not found", e.Name)
}

// Messaging inspects SNS topics and SQS queues.
type Messaging struct {
	sns SNSAPI
	sqs SQSAPI
	log *zap.SugaredLogger
}

func NewMessaging(snsClient SNSAPI, sqsClient SQSAPI) *Messaging {
	return &Messaging{sns: snsClient, sqs: sqsClient, log: zap.S().Named("cloud.messaging")}
}

// FindTopicByName resolves a topic by its bare name (the last ARN segment)
// and lists its subscriptions.
func (m *Messaging) FindTopicByName(ctx context.Context, name string) (TopicSummary, error) {
	input := &sns.ListTopicsInput{}
	for {
		out, err := m.sns.ListTopics(ctx, input)
		if err != nil {
			return TopicSummary{}, fmt.Errorf("failed to list topics: %w", err)
		}

		for _, topic := range out.Topics {
			arn := aws.ToString(topic.TopicArn)
			if strings.HasSuffix(arn, ":"+name) {
				return m.describeTopic(ctx, arn)
			}
		}

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}
	return TopicSummary{}, &TopicNotFoundError{Name: name}
}

func (m *Messaging) describeTopic(ctx context.Context, arn string) (TopicSummary, error) {
	summary := TopicSummary{ARN: arn}

	input := &sns.ListSubscriptionsByTopicInput{TopicArn: aws.String(arn)}
	for {
		out, err := m.sns.ListSubscriptionsByTopic(ctx, input)
		if err != nil {
			return summary, fmt.Errorf("failed to list subscriptions of %q: %w", arn, err)
		}
		for _, sub := range out.Subscriptions {
			summary.Subscriptions = append(summary.Subscriptions, SubscriptionSummary{
				Protocol: aws.ToString(sub.Protocol),
				Endpoint: aws.ToString(sub.Endpoint),
			})
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	m.log.Debugw("described topic", "arn", arn, "subscriptions", len(summary.Subscriptions))
	return summary, nil
}

// DescribeQueue resolves a queue by name and reads the attributes the suite
// asserts on.
func (m *Messaging) DescribeQueue(ctx context.Context, name string) (QueueSummary, error) {
	urlOut, err := m.sqs.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(name)})
	if err != nil {
		return QueueSummary{}, fmt.Errorf("failed to resolve queue %q: %w", name, err)
	}

	attrOut, err := m.sqs.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl: urlOut.QueueUrl,
		AttributeNames: []sqstypes.QueueAttributeName{
			sqstypes.QueueAttributeNameVisibilityTimeout,
			sqstypes.QueueAttributeNameRedrivePolicy,
			sqstypes.QueueAttributeNameApproximateNumberOfMessages,
		},
	})
	if err != nil {
		return QueueSummary{}, fmt.Errorf("failed to read attributes of queue %q: %w", name, err)
	}

	summary := QueueSummary{URL: aws.ToString(urlOut.QueueUrl)}
	if v, ok := attrOut.Attributes[string(sqstypes.QueueAttributeNameVisibilityTimeout)]; ok {
		summary.VisibilityTimeout, _ = strconv.Atoi(v)
	}
	if v, ok := attrOut.Attributes[string(sqstypes.QueueAttributeNameApproximateNumberOfMessages)]; ok {
		summary.ApproximateDepth, _ = strconv.Atoi(v)
	}
	_, summary.HasRedrivePolicy = attrOut.Attributes[string(sqstypes.QueueAttributeNameRedrivePolicy)]

	return summary, nil
}
