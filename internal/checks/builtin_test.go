package checks_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/checks"
	"github.com/stackproof/stackproof/internal/cloud"
	"github.com/stackproof/stackproof/internal/config"
)

type fakeEC2 struct {
	instances *ec2.DescribeInstancesOutput
	vpcs      *ec2.DescribeVpcsOutput
	subnets   *ec2.DescribeSubnetsOutput
}

func (f *fakeEC2) DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	return f.instances, nil
}

func (f *fakeEC2) DescribeVpcs(ctx context.Context, params *ec2.DescribeVpcsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	return f.vpcs, nil
}

func (f *fakeEC2) DescribeSubnets(ctx context.Context, params *ec2.DescribeSubnetsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	return f.subnets, nil
}

func (f *fakeEC2) DescribeSecurityGroups(ctx context.Context, params *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	return &ec2.DescribeSecurityGroupsOutput{}, nil
}

func findCheck(name string) checks.Check {
	for _, c := range checks.All() {
		if c.Name == name {
			return c
		}
	}
	Fail("unknown check " + name)
	return checks.Check{}
}

var _ = Describe("instances on private subnets", func() {
	var (
		ctx  context.Context
		fake *fakeEC2
		deps *checks.Deps
	)

	instance := func(id, vpcID, subnetID string) ec2types.Instance {
		return ec2types.Instance{
			InstanceId: aws.String(id),
			VpcId:      aws.String(vpcID),
			SubnetId:   aws.String(subnetID),
			Tags: []ec2types.Tag{
				{Key: aws.String("Name"), Value: aws.String("vault-" + id)},
			},
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		fake = &fakeEC2{
			instances: &ec2.DescribeInstancesOutput{
				Reservations: []ec2types.Reservation{
					{Instances: []ec2types.Instance{instance("i-1", "vpc-1", "subnet-app")}},
				},
			},
			vpcs: &ec2.DescribeVpcsOutput{
				Vpcs: []ec2types.Vpc{
					{VpcId: aws.String("vpc-1"), IsDefault: aws.Bool(false)},
				},
			},
			subnets: &ec2.DescribeSubnetsOutput{
				Subnets: []ec2types.Subnet{
					{SubnetId: aws.String("subnet-app"), MapPublicIpOnLaunch: aws.Bool(false)},
					{SubnetId: aws.String("subnet-edge"), MapPublicIpOnLaunch: aws.Bool(true)},
				},
			},
		}

		deps = &checks.Deps{
			Compute: cloud.NewCompute(fake),
			Config: &config.Configuration{
				Cloud: config.Cloud{ResourcePrefix: "vault"},
			},
		}
	})

	It("should pass when every instance sits on a private subnet", func() {
		err := findCheck("instances on private subnets").Fn(ctx, deps)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should fail an instance on a subnet that auto-assigns public IPs", func() {
		fake.instances.Reservations[0].Instances = []ec2types.Instance{
			instance("i-2", "vpc-1", "subnet-edge"),
		}

		err := findCheck("instances on private subnets").Fn(ctx, deps)
		Expect(err).To(MatchError(ContainSubstring("subnet-edge")))
		Expect(checks.IsSkipError(err)).To(BeFalse())
	})

	It("should fail an instance running in the default vpc", func() {
		fake.vpcs.Vpcs[0].IsDefault = aws.Bool(true)

		err := findCheck("instances on private subnets").Fn(ctx, deps)
		Expect(err).To(MatchError(ContainSubstring("default vpc")))
	})

	It("should skip when no instances match the prefix", func() {
		fake.instances = &ec2.DescribeInstancesOutput{}

		err := findCheck("instances on private subnets").Fn(ctx, deps)
		Expect(checks.IsSkipError(err)).To(BeTrue())
	})
})
