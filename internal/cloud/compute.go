package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"
)

// InstanceSummary is the slice of instance state the suite asserts on.
type InstanceSummary struct {
	ID               string
	Name             string
	State            string
	Type             string
	PublicIP         string
	VPCID            string
	SubnetID         string
	SecurityGroupIDs []string
}

// VPCSummary describes one VPC.
type VPCSummary struct {
	ID        string
	CIDR      string
	IsDefault bool
}

// SubnetSummary describes one subnet of a VPC.
type SubnetSummary struct {
	ID               string
	CIDR             string
	AvailabilityZone string
	AutoAssignPublic bool
}

// IngressRule is a single security-group ingress permission flattened to one
// CIDR source.
type IngressRule struct {
	GroupID  string
	Protocol string
	FromPort int32
	ToPort   int32
	CIDR     string
}

// Compute inspects EC2 instances and the VPC networking around them.
type Compute struct {
	client EC2API
	log    *zap.SugaredLogger
}

func NewCompute(client EC2API) *Compute {
	return &Compute{client: client, log: zap.S().Named("cloud.compute")}
}

// FindInstancesByNamePrefix returns running and stopped instances whose Name
// tag starts with prefix.
func (c *Compute) FindInstancesByNamePrefix(ctx context.Context, prefix string) ([]InstanceSummary, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("tag:Name"), Values: []string{prefix + "*"}},
		},
	}

	var summaries []InstanceSummary
	for {
		out, err := c.client.DescribeInstances(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances with prefix %q: %w", prefix, err)
		}

		for _, reservation := range out.Reservations {
			for _, instance := range reservation.Instances {
				summaries = append(summaries, summarizeInstance(instance))
			}
		}

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	c.log.Debugw("discovered instances", "prefix", prefix, "count", len(summaries))
	return summaries, nil
}

// DescribeVPC returns the summary of a single VPC.
func (c *Compute) DescribeVPC(ctx context.Context, vpcID string) (VPCSummary, error) {
	out, err := c.client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{VpcIds: []string{vpcID}})
	if err != nil {
		return VPCSummary{}, fmt.Errorf("failed to describe vpc %q: %w", vpcID, err)
	}
	if len(out.Vpcs) == 0 {
		return VPCSummary{}, fmt.Errorf("vpc %q not found", vpcID)
	}

	vpc := out.Vpcs[0]
	return VPCSummary{
		ID:        aws.ToString(vpc.VpcId),
		CIDR:      aws.ToString(vpc.CidrBlock),
		IsDefault: aws.ToBool(vpc.IsDefault),
	}, nil
}

// Subnets lists the subnets of a VPC.
func (c *Compute) Subnets(ctx context.Context, vpcID string) ([]SubnetSummary, error) {
	out, err := c.client.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{
			{Name: aws.String("vpc-id"), Values: []string{vpcID}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe subnets of vpc %q: %w", vpcID, err)
	}

	subnets := make([]SubnetSummary, 0, len(out.Subnets))
	for _, subnet := range out.Subnets {
		subnets = append(subnets, SubnetSummary{
			ID:               aws.ToString(subnet.SubnetId),
			CIDR:             aws.ToString(subnet.CidrBlock),
			AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
			AutoAssignPublic: aws.ToBool(subnet.MapPublicIpOnLaunch),
		})
	}
	return subnets, nil
}

// OpenIngressRules returns the ingress permissions of the given security
// groups that are open to the whole internet (0.0.0.0/0).
func (c *Compute) OpenIngressRules(ctx context.Context, groupIDs []string) ([]IngressRule, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	out, err := c.client.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{GroupIds: groupIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to describe security groups: %w", err)
	}

	var open []IngressRule
	for _, group := range out.SecurityGroups {
		for _, perm := range group.IpPermissions {
			for _, ipRange := range perm.IpRanges {
				if aws.ToString(ipRange.CidrIp) != "0.0.0.0/0" {
					continue
				}
				open = append(open, IngressRule{
					GroupID:  aws.ToString(group.GroupId),
					Protocol: aws.ToString(perm.IpProtocol),
					FromPort: aws.ToInt32(perm.FromPort),
					ToPort:   aws.ToInt32(perm.ToPort),
					CIDR:     aws.ToString(ipRange.CidrIp),
				})
			}
		}
	}
	return open, nil
}

func summarizeInstance(instance ec2types.Instance) InstanceSummary {
	summary := InstanceSummary{
		ID:       aws.ToString(instance.InstanceId),
		Type:     string(instance.InstanceType),
		PublicIP: aws.ToString(instance.PublicIpAddress),
		VPCID:    aws.ToString(instance.VpcId),
		SubnetID: aws.ToString(instance.SubnetId),
	}
	if instance.State != nil {
		summary.State = string(instance.State.Name)
	}
	for _, tag := range instance.Tags {
		if aws.ToString(tag.Key) == "Name" {
			summary.Name = aws.ToString(tag.Value)
		}
	}
	for _, group := range instance.SecurityGroups {
		summary.SecurityGroupIDs = append(summary.SecurityGroupIDs, aws.ToString(group.GroupId))
	}
	return summary
}
