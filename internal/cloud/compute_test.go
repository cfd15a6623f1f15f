package cloud_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/cloud"
)

type fakeEC2 struct {
	instancesPages []*ec2.DescribeInstancesOutput
	vpcs           *ec2.DescribeVpcsOutput
	subnets        *ec2.DescribeSubnetsOutput
	securityGroups *ec2.DescribeSecurityGroupsOutput

	describeInstancesCalls int
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	page := f.instancesPages[f.describeInstancesCalls]
	f.describeInstancesCalls++
	return page, nil
}

func (f *fakeEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return f.vpcs, nil
}

func (f *fakeEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	return f.subnets, nil
}

func (f *fakeEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return f.securityGroups, nil
}

var _ = Describe("Compute", func() {
	var (
		ctx  context.Context
		fake *fakeEC2
	)

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeEC2{}
	})

	Describe("FindInstancesByNamePrefix", func() {
		It("should summarize instances across pages", func() {
			fake.instancesPages = []*ec2.DescribeInstancesOutput{
				{
					Reservations: []ec2types.Reservation{
						{
							Instances: []ec2types.Instance{
								{
									InstanceId:      aws.String("i-0aaa"),
									InstanceType:    ec2types.InstanceTypeT3Micro,
									State:           &ec2types.InstanceState{Name: ec2types.InstanceStateNameRunning},
									PublicIpAddress: aws.String("54.1.2.3"),
									VpcId:           aws.String("vpc-1"),
									SubnetId:        aws.String("subnet-1"),
									Tags: []ec2types.Tag{
										{Key: aws.String("Name"), Value: aws.String("vault-web-1")},
									},
									SecurityGroups: []ec2types.GroupIdentifier{
										{GroupId: aws.String("sg-1")},
									},
								},
							},
						},
					},
					NextToken: aws.String("page-2"),
				},
				{
					Reservations: []ec2types.Reservation{
						{
							Instances: []ec2types.Instance{
								{
									InstanceId: aws.String("i-0bbb"),
									State:      &ec2types.InstanceState{Name: ec2types.InstanceStateNameStopped},
									Tags: []ec2types.Tag{
										{Key: aws.String("Name"), Value: aws.String("vault-web-2")},
									},
								},
							},
						},
					},
				},
			}

			compute := cloud.NewCompute(fake)
			instances, err := compute.FindInstancesByNamePrefix(ctx, "vault-")

			Expect(err).NotTo(HaveOccurred())
			Expect(fake.describeInstancesCalls).To(Equal(2))
			Expect(instances).To(HaveLen(2))
			Expect(instances[0].ID).To(Equal("i-0aaa"))
			Expect(instances[0].Name).To(Equal("vault-web-1"))
			Expect(instances[0].State).To(Equal("running"))
			Expect(instances[0].Type).To(Equal("t3.micro"))
			Expect(instances[0].PublicIP).To(Equal("54.1.2.3"))
			Expect(instances[0].SecurityGroupIDs).To(ConsistOf("sg-1"))
			Expect(instances[1].State).To(Equal("stopped"))
		})
	})

	Describe("DescribeVPC", func() {
		It("should return the vpc summary", func() {
			fake.instancesPages = nil
			fake.vpcs = &ec2.DescribeVpcsOutput{
				Vpcs: []ec2types.Vpc{
					{
						VpcId:     aws.String("vpc-1"),
						CidrBlock: aws.String("10.0.0.0/16"),
						IsDefault: aws.Bool(false),
					},
				},
			}

			compute := cloud.NewCompute(fake)
			vpc, err := compute.DescribeVPC(ctx, "vpc-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(vpc.CIDR).To(Equal("10.0.0.0/16"))
			Expect(vpc.IsDefault).To(BeFalse())
		})

		It("should fail when the vpc does not exist", func() {
			fake.vpcs = &ec2.DescribeVpcsOutput{}

			compute := cloud.NewCompute(fake)
			_, err := compute.DescribeVPC(ctx, "vpc-missing")

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Subnets", func() {
		It("should summarize every subnet of the vpc", func() {
			fake.subnets = &ec2.DescribeSubnetsOutput{
				Subnets: []ec2types.Subnet{
					{
						SubnetId:            aws.String("subnet-app"),
						CidrBlock:           aws.String("10.0.1.0/24"),
						AvailabilityZone:    aws.String("eu-west-1a"),
						MapPublicIpOnLaunch: aws.Bool(false),
					},
					{
						SubnetId:            aws.String("subnet-edge"),
						CidrBlock:           aws.String("10.0.2.0/24"),
						AvailabilityZone:    aws.String("eu-west-1b"),
						MapPublicIpOnLaunch: aws.Bool(true),
					},
				},
			}

			compute := cloud.NewCompute(fake)
			subnets, err := compute.Subnets(ctx, "vpc-1")

			Expect(err).NotTo(HaveOccurred())
			Expect(subnets).To(HaveLen(2))
			Expect(subnets[0].ID).To(Equal("subnet-app"))
			Expect(subnets[0].CIDR).To(Equal("10.0.1.0/24"))
			Expect(subnets[0].AvailabilityZone).To(Equal("eu-west-1a"))
			Expect(subnets[0].AutoAssignPublic).To(BeFalse())
			Expect(subnets[1].AutoAssignPublic).To(BeTrue())
		})

		It("should return no subnets for an empty vpc", func() {
			fake.subnets = &ec2.DescribeSubnetsOutput{}

			compute := cloud.NewCompute(fake)
			subnets, err := compute.Subnets(ctx, "vpc-empty")

			Expect(err).NotTo(HaveOccurred())
			Expect(subnets).To(BeEmpty())
		})
	})

	Describe("OpenIngressRules", func() {
		It("should only report rules open to the whole internet", func() {
			fake.securityGroups = &ec2.DescribeSecurityGroupsOutput{
				SecurityGroups: []ec2types.SecurityGroup{
					{
						GroupId: aws.String("sg-1"),
						IpPermissions: []ec2types.IpPermission{
							{
								IpProtocol: aws.String("tcp"),
								FromPort:   aws.Int32(443),
								ToPort:     aws.Int32(443),
								IpRanges: []ec2types.IpRange{
									{CidrIp: aws.String("0.0.0.0/0")},
								},
							},
							{
								IpProtocol: aws.String("tcp"),
								FromPort:   aws.Int32(22),
								ToPort:     aws.Int32(22),
								IpRanges: []ec2types.IpRange{
									{CidrIp: aws.String("10.0.0.0/8")},
								},
							},
						},
					},
				},
			}

			compute := cloud.NewCompute(fake)
			rules, err := compute.OpenIngressRules(ctx, []string{"sg-1"})

			Expect(err).NotTo(HaveOccurred())
			Expect(rules).To(HaveLen(1))
			Expect(rules[0].FromPort).To(Equal(int32(443)))
			Expect(rules[0].CIDR).To(Equal("0.0.0.0/0"))
		})

		It("should not call the API for an empty group list", func() {
			compute := cloud.NewCompute(fake)
			rules, err := compute.OpenIngressRules(ctx, nil)

			Expect(err).NotTo(HaveOccurred())
			Expect(rules).To(BeEmpty())
		})
	})
})
