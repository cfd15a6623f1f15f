package checks

import (
	"context"
	"fmt"
)

// Names holds the resource names derived from the configured resource
// prefix, e.g. prefix "vault" yields the "vault-docs" bucket and the
// "vault-db" database instance.
type Names struct {
	Bucket     string
	DBInstance string
	Table      string
	Topic      string
	Queue      string
	Function   string
	Role       string
	LogPrefix  string
}

func NamesFor(prefix string) Names {
	return Names{
		Bucket:     prefix + "-docs",
		DBInstance: prefix + "-db",
		Table:      prefix + "-metadata",
		Topic:      prefix + "-events",
		Queue:      prefix + "-tasks",
		Function:   prefix + "-notifier",
		Role:       prefix + "-app",
		LogPrefix:  "/" + prefix,
	}
}

// All returns the built-in infrastructure checks. Checks whose client
// is not configured skip instead of failing.
func All() []Check {
	return []Check{
		{
			Name:     "document bucket exists",
			Category: "storage",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Storage == nil {
					return Skip("storage client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				exists, err := deps.Storage.BucketExists(ctx, names.Bucket)
				if err != nil {
					return err
				}
				if !exists {
					return fmt.Errorf("bucket %q does not exist", names.Bucket)
				}
				return nil
			},
		},
		{
			Name:     "document bucket hardened",
			Category: "storage",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Storage == nil {
					return Skip("storage client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Storage.DescribeBucket(ctx, names.Bucket)
				if err != nil {
					return err
				}
				if !summary.VersioningEnabled {
					return fmt.Errorf("bucket %q has versioning disabled", names.Bucket)
				}
				if summary.EncryptionAlgorithm == "" {
					return fmt.Errorf("bucket %q has no default encryption", names.Bucket)
				}
				if !summary.PublicAccessBlocked {
					return fmt.Errorf("bucket %q does not block public access", names.Bucket)
				}
				return nil
			},
		},
		{
			Name:     "database available and protected",
			Category: "database",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Database == nil {
					return Skip("database client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Database.DescribeDBInstance(ctx, names.DBInstance)
				if err != nil {
					return err
				}
				if summary.Status != "available" {
					return fmt.Errorf("instance %q is %q, want available", names.DBInstance, summary.Status)
				}
				if !summary.StorageEncrypted {
					return fmt.Errorf("instance %q storage is not encrypted", names.DBInstance)
				}
				if summary.PubliclyAccessible {
					return fmt.Errorf("instance %q is publicly accessible", names.DBInstance)
				}
				return nil
			},
		},
		{
			Name:     "metadata table active with PITR",
			Category: "database",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Database == nil {
					return Skip("database client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Database.DescribeTable(ctx, names.Table)
				if err != nil {
					return err
				}
				if summary.Status != "ACTIVE" {
					return fmt.Errorf("table %q is %q, want ACTIVE", names.Table, summary.Status)
				}
				if !summary.PITREnabled {
					return fmt.Errorf("table %q has point-in-time recovery disabled", names.Table)
				}
				return nil
			},
		},
		{
			Name:     "event topic has subscribers",
			Category: "messaging",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Messaging == nil {
					return Skip("messaging client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Messaging.FindTopicByName(ctx, names.Topic)
				if err != nil {
					return err
				}
				if len(summary.Subscriptions) == 0 {
					return fmt.Errorf("topic %q has no subscriptions", names.Topic)
				}
				return nil
			},
		},
		{
			Name:     "task queue has dead-letter policy",
			Category: "messaging",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Messaging == nil {
					return Skip("messaging client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Messaging.DescribeQueue(ctx, names.Queue)
				if err != nil {
					return err
				}
				if !summary.HasRedrivePolicy {
					return fmt.Errorf("queue %q has no redrive policy", names.Queue)
				}
				return nil
			},
		},
		{
			Name:     "notifier function active",
			Category: "functions",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Functions == nil {
					return Skip("lambda client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Functions.DescribeFunction(ctx, names.Function)
				if err != nil {
					return err
				}
				if summary.State != "Active" {
					return fmt.Errorf("function %q is %q, want Active", names.Function, summary.State)
				}
				return nil
			},
		},
		{
			Name:     "notifier smoke invocation",
			Category: "functions",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Functions == nil {
					return Skip("lambda client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				result, err := deps.Functions.InvokeSmoke(ctx, names.Function, []byte(`{"smoke":true}`))
				if err != nil {
					return err
				}
				if result.Failed() {
					return fmt.Errorf("function %q returned %s: %s", names.Function, result.FunctionError, result.Payload)
				}
				return nil
			},
		},
		{
			Name:     "app role has no destructive permissions",
			Category: "identity",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Identity == nil {
					return Skip("iam client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				summary, err := deps.Identity.DescribeRole(ctx, names.Role)
				if err != nil {
					return err
				}
				decisions, err := deps.Identity.CanPerform(ctx, summary.ARN,
					[]string{"iam:DeleteRole", "s3:DeleteBucket"})
				if err != nil {
					return err
				}
				for action, allowed := range decisions {
					if allowed {
						return fmt.Errorf("role %q is allowed %s", names.Role, action)
					}
				}
				return nil
			},
		},
		{
			Name:     "no world-open ingress",
			Category: "compute",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Compute == nil {
					return Skip("ec2 client not configured")
				}
				instances, err := deps.Compute.FindInstancesByNamePrefix(ctx, deps.Config.Cloud.ResourcePrefix)
				if err != nil {
					return err
				}
				if len(instances) == 0 {
					return Skip("no instances with prefix %q", deps.Config.Cloud.ResourcePrefix)
				}
				var groupIDs []string
				for _, instance := range instances {
					groupIDs = append(groupIDs, instance.SecurityGroupIDs...)
				}
				rules, err := deps.Compute.OpenIngressRules(ctx, groupIDs)
				if err != nil {
					return err
				}
				for _, rule := range rules {
					// 443 is the only port the suite tolerates world-open
					if rule.FromPort != 443 || rule.ToPort != 443 {
						return fmt.Errorf("group %s exposes %d-%d/%s to %s",
							rule.GroupID, rule.FromPort, rule.ToPort, rule.Protocol, rule.CIDR)
					}
				}
				return nil
			},
		},
		{
			Name:     "instances on private subnets",
			Category: "compute",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Compute == nil {
					return Skip("ec2 client not configured")
				}
				instances, err := deps.Compute.FindInstancesByNamePrefix(ctx, deps.Config.Cloud.ResourcePrefix)
				if err != nil {
					return err
				}
				if len(instances) == 0 {
					return Skip("no instances with prefix %q", deps.Config.Cloud.ResourcePrefix)
				}
				autoPublic := map[string]bool{}
				seenVPC := map[string]bool{}
				for _, instance := range instances {
					if instance.VPCID == "" || seenVPC[instance.VPCID] {
						continue
					}
					seenVPC[instance.VPCID] = true
					vpc, err := deps.Compute.DescribeVPC(ctx, instance.VPCID)
					if err != nil {
						return err
					}
					if vpc.IsDefault {
						return fmt.Errorf("instance %s runs in the default vpc %s", instance.ID, vpc.ID)
					}
					subnets, err := deps.Compute.Subnets(ctx, instance.VPCID)
					if err != nil {
						return err
					}
					for _, subnet := range subnets {
						autoPublic[subnet.ID] = subnet.AutoAssignPublic
					}
				}
				for _, instance := range instances {
					if autoPublic[instance.SubnetID] {
						return fmt.Errorf("instance %s is on subnet %s, which auto-assigns public IPs",
							instance.ID, instance.SubnetID)
					}
				}
				return nil
			},
		},
		{
			Name:     "application log group present",
			Category: "audit",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Audit == nil {
					return Skip("logs client not configured")
				}
				names := NamesFor(deps.Config.Cloud.ResourcePrefix)
				groups, err := deps.Audit.LogGroups(ctx, names.LogPrefix)
				if err != nil {
					return err
				}
				if len(groups) == 0 {
					return fmt.Errorf("no log groups under %q", names.LogPrefix)
				}
				return nil
			},
		},
		{
			Name:     "audit trail logging",
			Category: "audit",
			Fn: func(ctx context.Context, deps *Deps) error {
				if deps.Audit == nil {
					return Skip("cloudtrail client not configured")
				}
				trails, err := deps.Audit.Trails(ctx)
				if err != nil {
					return err
				}
				if len(trails) == 0 {
					return fmt.Errorf("no trails configured")
				}
				for _, trail := range trails {
					if trail.Logging {
						return nil
					}
				}
				return fmt.Errorf("no trail is logging")
			},
		},
	}
}
