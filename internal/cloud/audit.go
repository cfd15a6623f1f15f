package cloud

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cttypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"go.uber.org/zap"

	"github.com/stackproof/stackproof/internal/probe"
)

// LogGroupSummary describes one CloudWatch log group.
type LogGroupSummary struct {
	Name          string
	RetentionDays int32
}

// TrailSummary describes one CloudTrail trail and whether it is logging.
type TrailSummary struct {
	Name        string
	MultiRegion bool
	S3Bucket    string
	Logging     bool
}

// TrailEvent is one management event from the CloudTrail event history.
type TrailEvent struct {
	Name     string
	Username string
	Time     time.Time
}

// Audit inspects CloudWatch Logs and CloudTrail. Both stores are eventually
// consistent, so the Wait* methods poll through probe.
type Audit struct {
	logs  LogsAPI
	trail CloudTrailAPI
	log   *zap.SugaredLogger
}

func NewAudit(logsClient LogsAPI, trailClient CloudTrailAPI) *Audit {
	return &Audit{logs: logsClient, trail: trailClient, log: zap.S().Named("cloud.audit")}
}

// LogGroups lists log groups whose name starts with prefix.
func (a *Audit) LogGroups(ctx context.Context, prefix string) ([]LogGroupSummary, error) {
	out, err := a.logs.DescribeLogGroups(ctx, &cloudwatchlogs.DescribeLogGroupsInput{
		LogGroupNamePrefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe log groups with prefix %q: %w", prefix, err)
	}

	groups := make([]LogGroupSummary, 0, len(out.LogGroups))
	for _, group := range out.LogGroups {
		groups = append(groups, LogGroupSummary{
			Name:          aws.ToString(group.LogGroupName),
			RetentionDays: aws.ToInt32(group.RetentionInDays),
		})
	}
	return groups, nil
}

// FindLogEvents returns the messages in a log group matching the filter
// pattern since the given time. A single read; see WaitForLogEvent for the
// polling variant.
func (a *Audit) FindLogEvents(ctx context.Context, group, pattern string, since time.Time) ([]string, error) {
	out, err := a.logs.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
		LogGroupName:  aws.String(group),
		FilterPattern: aws.String(pattern),
		StartTime:     aws.Int64(since.UnixMilli()),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to filter events of log group %q: %w", group, err)
	}

	messages := make([]string, 0, len(out.Events))
	for _, event := range out.Events {
		messages = append(messages, aws.ToString(event.Message))
	}
	return messages, nil
}

// WaitForLogEvent polls the log group until at least one event matches the
// filter pattern or the budget is exhausted.
func (a *Audit) WaitForLogEvent(ctx context.Context, cfg probe.Config, group, pattern string, since time.Time) ([]string, error) {
	a.log.Infow("waiting for log event", "group", group, "pattern", pattern)

	return probe.Poll(ctx, cfg, func(ctx context.Context) ([]string, error) {
		messages, err := a.FindLogEvents(ctx, group, pattern, since)
		if err != nil {
			return nil, err
		}
		if len(messages) == 0 {
			return nil, probe.ErrNotReady
		}
		return messages, nil
	})
}

// Trails lists every trail visible in the region together with its logging
// state.
func (a *Audit) Trails(ctx context.Context) ([]TrailSummary, error) {
	out, err := a.trail.DescribeTrails(ctx, &cloudtrail.DescribeTrailsInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to describe trails: %w", err)
	}

	trails := make([]TrailSummary, 0, len(out.TrailList))
	for _, trail := range out.TrailList {
		summary := TrailSummary{
			Name:        aws.ToString(trail.Name),
			MultiRegion: aws.ToBool(trail.IsMultiRegionTrail),
			S3Bucket:    aws.ToString(trail.S3BucketName),
		}

		status, err := a.trail.GetTrailStatus(ctx, &cloudtrail.GetTrailStatusInput{Name: trail.Name})
		if err != nil {
			return nil, fmt.Errorf("failed to get status of trail %q: %w", summary.Name, err)
		}
		summary.Logging = aws.ToBool(status.IsLogging)

		trails = append(trails, summary)
	}
	return trails, nil
}

// FindManagementEvents looks up management events by event name since the
// given time.
func (a *Audit) FindManagementEvents(ctx context.Context, eventName string, since time.Time) ([]TrailEvent, error) {
	out, err := a.trail.LookupEvents(ctx, &cloudtrail.LookupEventsInput{
		LookupAttributes: []cttypes.LookupAttribute{
			{
				AttributeKey:   cttypes.LookupAttributeKeyEventName,
				AttributeValue: aws.String(eventName),
			},
		},
		StartTime: aws.Time(since),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up events named %q: %w", eventName, err)
	}

	events := make([]TrailEvent, 0, len(out.Events))
	for _, event := range out.Events {
		events = append(events, TrailEvent{
			Name:     aws.ToString(event.EventName),
			Username: aws.ToString(event.Username),
			Time:     aws.ToTime(event.EventTime),
		})
	}
	return events, nil
}

// WaitForManagementEvent polls the event history until an event with the
// given name shows up. CloudTrail delivery commonly lags minutes behind the
// action, so callers should budget accordingly.
func (a *Audit) WaitForManagementEvent(ctx context.Context, cfg probe.Config, eventName string, since time.Time) ([]TrailEvent, error) {
	a.log.Infow("waiting for management event", "event", eventName)

	return probe.Poll(ctx, cfg, func(ctx context.Context) ([]TrailEvent, error) {
		events, err := a.FindManagementEvents(ctx, eventName, since)
		if err != nil {
			return nil, err
		}
		if len(events) == 0 {
			return nil, probe.ErrNotReady
		}
		return events, nil
	})
}
