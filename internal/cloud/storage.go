package cloud

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// BucketSummary is the configuration slice of one S3 bucket the suite
// asserts on.
type BucketSummary struct {
	Name                string
	VersioningEnabled   bool
	EncryptionAlgorithm string
	PublicAccessBlocked bool
	Tags                map[string]string
}

// Storage inspects S3 bucket configuration.
type Storage struct {
	client S3API
	log    *zap.SugaredLogger
}

func NewStorage(client S3API) *Storage {
	return &Storage{client: client, log: zap.S().Named("cloud.storage")}
}

// BucketExists reports whether the bucket is reachable with the suite's
// credentials.
func (s *Storage) BucketExists(ctx context.Context, name string) (bool, error) {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to head bucket %q: %w", name, err)
	}
	return true, nil
}

// DescribeBucket gathers versioning, default encryption, public-access block
// and tags for one bucket. Buckets without tags or encryption config yield
// empty fields rather than errors.
func (s *Storage) DescribeBucket(ctx context.Context, name string) (BucketSummary, error) {
	summary := BucketSummary{Name: name, Tags: map[string]string{}}

	versioning, err := s.client.GetBucketVersioning(ctx, &s3.GetBucketVersioningInput{Bucket: aws.String(name)})
	if err != nil {
		return summary, fmt.Errorf("failed to read versioning of bucket %q: %w", name, err)
	}
	summary.VersioningEnabled = versioning.Status == s3types.BucketVersioningStatusEnabled

	encryption, err := s.client.GetBucketEncryption(ctx, &s3.GetBucketEncryptionInput{Bucket: aws.String(name)})
	if err == nil && encryption.ServerSideEncryptionConfiguration != nil {
		for _, rule := range encryption.ServerSideEncryptionConfiguration.Rules {
			if rule.ApplyServerSideEncryptionByDefault != nil {
				summary.EncryptionAlgorithm = string(rule.ApplyServerSideEncryptionByDefault.SSEAlgorithm)
				break
			}
		}
	}

	publicBlock, err := s.client.GetPublicAccessBlock(ctx, &s3.GetPublicAccessBlockInput{Bucket: aws.String(name)})
	if err == nil && publicBlock.PublicAccessBlockConfiguration != nil {
		cfg := publicBlock.PublicAccessBlockConfiguration
		summary.PublicAccessBlocked = aws.ToBool(cfg.BlockPublicAcls) &&
			aws.ToBool(cfg.BlockPublicPolicy) &&
			aws.ToBool(cfg.IgnorePublicAcls) &&
			aws.ToBool(cfg.RestrictPublicBuckets)
	}

	tagging, err := s.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(name)})
	if err == nil {
		for _, tag := range tagging.TagSet {
			summary.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}

	s.log.Debugw("described bucket", "bucket", name,
		"versioning", summary.VersioningEnabled, "encryption", summary.EncryptionAlgorithm)
	return summary, nil
}
