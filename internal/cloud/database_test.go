package cloud_test

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/stackproof/stackproof/internal/cloud"
)

type fakeRDS struct {
	output *rds.DescribeDBInstancesOutput
}

func (f *fakeRDS) DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error) {
	return f.output, nil
}

type fakeDynamoDB struct {
	table   *dynamodb.DescribeTableOutput
	backups *dynamodb.DescribeContinuousBackupsOutput
}

func (f *fakeDynamoDB) DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return f.table, nil
}

func (f *fakeDynamoDB) DescribeContinuousBackups(ctx context.Context, params *dynamodb.DescribeContinuousBackupsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeContinuousBackupsOutput, error) {
	return f.backups, nil
}

var _ = Describe("Database", func() {
	var (
		ctx      context.Context
		fakeRds  *fakeRDS
		fakeDdb  *fakeDynamoDB
		database *cloud.Database
	)

	BeforeEach(func() {
		ctx = context.Background()
		fakeRds = &fakeRDS{
			output: &rds.DescribeDBInstancesOutput{
				DBInstances: []rdstypes.DBInstance{
					{
						DBInstanceStatus:   aws.String("available"),
						Engine:             aws.String("postgres"),
						EngineVersion:      aws.String("16.3"),
						MultiAZ:            aws.Bool(true),
						StorageEncrypted:   aws.Bool(true),
						PubliclyAccessible: aws.Bool(false),
						Endpoint: &rdstypes.Endpoint{
							Address: aws.String("vault-db.abc.eu-west-1.rds.amazonaws.com"),
							Port:    aws.Int32(5432),
						},
					},
				},
			},
		}
		fakeDdb = &fakeDynamoDB{
			table: &dynamodb.DescribeTableOutput{
				Table: &ddbtypes.TableDescription{
					TableStatus: ddbtypes.TableStatusActive,
					ItemCount:   aws.Int64(12),
					KeySchema: []ddbtypes.KeySchemaElement{
						{AttributeName: aws.String("pk"), KeyType: ddbtypes.KeyTypeHash},
						{AttributeName: aws.String("sk"), KeyType: ddbtypes.KeyTypeRange},
					},
				},
			},
			backups: &dynamodb.DescribeContinuousBackupsOutput{
				ContinuousBackupsDescription: &ddbtypes.ContinuousBackupsDescription{
					PointInTimeRecoveryDescription: &ddbtypes.PointInTimeRecoveryDescription{
						PointInTimeRecoveryStatus: ddbtypes.PointInTimeRecoveryStatusEnabled,
					},
				},
			},
		}
		database = cloud.NewDatabase(fakeRds, fakeDdb)
	})

	Describe("DescribeDBInstance", func() {
		It("should summarize the instance configuration", func() {
			summary, err := database.DescribeDBInstance(ctx, "vault-db")

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Status).To(Equal("available"))
			Expect(summary.Engine).To(Equal("postgres"))
			Expect(summary.MultiAZ).To(BeTrue())
			Expect(summary.StorageEncrypted).To(BeTrue())
			Expect(summary.PubliclyAccessible).To(BeFalse())
			Expect(summary.Endpoint).To(ContainSubstring("rds.amazonaws.com"))
			Expect(summary.Port).To(Equal(int32(5432)))
		})

		It("should fail when no instance matches", func() {
			fakeRds.output = &rds.DescribeDBInstancesOutput{}

			_, err := database.DescribeDBInstance(ctx, "vault-missing")

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("DescribeTable", func() {
		It("should summarize the table including key schema and PITR", func() {
			summary, err := database.DescribeTable(ctx, "vault-metadata")

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.Status).To(Equal("ACTIVE"))
			Expect(summary.HashKey).To(Equal("pk"))
			Expect(summary.RangeKey).To(Equal("sk"))
			Expect(summary.PITREnabled).To(BeTrue())
			Expect(summary.ItemCount).To(Equal(int64(12)))
		})

		It("should report disabled PITR", func() {
			fakeDdb.backups = &dynamodb.DescribeContinuousBackupsOutput{
				ContinuousBackupsDescription: &ddbtypes.ContinuousBackupsDescription{
					PointInTimeRecoveryDescription: &ddbtypes.PointInTimeRecoveryDescription{
						PointInTimeRecoveryStatus: ddbtypes.PointInTimeRecoveryStatusDisabled,
					},
				},
			}

			summary, err := database.DescribeTable(ctx, "vault-metadata")

			Expect(err).NotTo(HaveOccurred())
			Expect(summary.PITREnabled).To(BeFalse())
		})
	})
})
