package cloud_test

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudtrail"
	cttypes "github.com/aws/aws-sdk-go-v2/service/cloudtrail/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	logstypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/cloud"
	"github.com/stackproof/stackproof/internal/probe"
)

type fakeLogs struct {
	groups      *cloudwatchlogs.DescribeLogGroupsOutput
	eventsQueue []*cloudwatchlogs.FilterLogEventsOutput

	filterCalls int
}

func (f *fakeLogs) DescribeLogGroups(ctx context.Context, params *cloudwatchlogs.DescribeLogGroupsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.DescribeLogGroupsOutput, error) {
	return f.groups, nil
}

func (f *fakeLogs) FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	out := f.eventsQueue[f.filterCalls]
	f.filterCalls++
	return out, nil
}

type fakeCloudTrail struct {
	trails *cloudtrail.DescribeTrailsOutput
	status *cloudtrail.GetTrailStatusOutput
	events *cloudtrail.LookupEventsOutput
}

func (f *fakeCloudTrail) DescribeTrails(ctx context.Context, params *cloudtrail.DescribeTrailsInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.DescribeTrailsOutput, error) {
	return f.trails, nil
}

func (f *fakeCloudTrail) GetTrailStatus(ctx context.Context, params *cloudtrail.GetTrailStatusInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.GetTrailStatusOutput, error) {
	return f.status, nil
}

func (f *fakeCloudTrail) LookupEvents(ctx context.Context, params *cloudtrail.LookupEventsInput, optFns ...func(*cloudtrail.Options)) (*cloudtrail.LookupEventsOutput, error) {
	return f.events, nil
}

var _ = Describe("Audit", func() {
	var (
		ctx   context.Context
		logs  *fakeLogs
		trail *fakeCloudTrail
		audit *cloud.Audit
	)

	BeforeEach(func() {
		ctx = context.Background()
		logs = &fakeLogs{
			groups: &cloudwatchlogs.DescribeLogGroupsOutput{
				LogGroups: []logstypes.LogGroup{
					{LogGroupName: aws.String("/vault/app"), RetentionInDays: aws.Int32(30)},
					{LogGroupName: aws.String("/vault/api"), RetentionInDays: aws.Int32(14)},
				},
			},
		}
		trail = &fakeCloudTrail{
			trails: &cloudtrail.DescribeTrailsOutput{
				TrailList: []cttypes.Trail{
					{
						Name:               aws.String("vault-trail"),
						IsMultiRegionTrail: aws.Bool(true),
						S3BucketName:       aws.String("vault-audit-logs"),
					},
				},
			},
			status: &cloudtrail.GetTrailStatusOutput{IsLogging: aws.Bool(true)},
		}
		audit = cloud.NewAudit(logs, trail)
	})

	Describe("LogGroups", func() {
		It("should list groups with retention", func() {
			groups, err := audit.LogGroups(ctx, "/vault")

			Expect(err).NotTo(HaveOccurred())
			Expect(groups).To(HaveLen(2))
			Expect(groups[0].Name).To(Equal("/vault/app"))
			Expect(groups[0].RetentionDays).To(Equal(int32(30)))
		})
	})

	Describe("WaitForLogEvent", func() {
		It("should keep polling until an event matches", func() {
			logs.eventsQueue = []*cloudwatchlogs.FilterLogEventsOutput{
				{},
				{},
				{
					Events: []logstypes.FilteredLogEvent{
						{Message: aws.String("upload completed key=report.txt")},
					},
				},
			}

			messages, err := audit.WaitForLogEvent(ctx, probe.Config{Attempts: 3}, "/vault/app", "upload completed", time.Now().Add(-time.Hour))

			Expect(err).NotTo(HaveOccurred())
			Expect(logs.filterCalls).To(Equal(3))
			Expect(messages).To(ConsistOf("upload completed key=report.txt"))
		})

		It("should exhaust the budget when nothing matches", func() {
			logs.eventsQueue = []*cloudwatchlogs.FilterLogEventsOutput{{}, {}}

			_, err := audit.WaitForLogEvent(ctx, probe.Config{Attempts: 2}, "/vault/app", "never", time.Now())

			Expect(probe.IsExhaustedError(err)).To(BeTrue())
			Expect(logs.filterCalls).To(Equal(2))
		})
	})

	Describe("Trails", func() {
		It("should report the trail with its logging status", func() {
			trails, err := audit.Trails(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(trails).To(HaveLen(1))
			Expect(trails[0].Name).To(Equal("vault-trail"))
			Expect(trails[0].MultiRegion).To(BeTrue())
			Expect(trails[0].Logging).To(BeTrue())
		})
	})

	Describe("FindManagementEvents", func() {
		It("should map lookup results", func() {
			now := time.Now().Truncate(time.Second)
			trail.events = &cloudtrail.LookupEventsOutput{
				Events: []cttypes.Event{
					{
						EventName: aws.String("PutObject"),
						Username:  aws.String("vault-app"),
						EventTime: aws.Time(now),
					},
				},
			}

			events, err := audit.FindManagementEvents(ctx, "PutObject", now.Add(-time.Hour))

			Expect(err).NotTo(HaveOccurred())
			Expect(events).To(HaveLen(1))
			Expect(events[0].Name).To(Equal("PutObject"))
			Expect(events[0].Username).To(Equal("vault-app"))
			Expect(events[0].Time).To(Equal(now))
		})
	})
})
