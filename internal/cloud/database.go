package cloud

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"go.uber.org/zap"
)

// DBInstanceSummary is the configuration slice of one RDS instance.
type DBInstanceSummary struct {
	Identifier         string
	Status             string
	Engine             string
	EngineVersion      string
	MultiAZ            bool
	StorageEncrypted   bool
	PubliclyAccessible bool
	Endpoint           string
	Port               int32
}

// TableSummary is the configuration slice of one DynamoDB table.
type TableSummary struct {
	Name        string
	Status      string
	HashKey     string
	RangeKey    string
	PITREnabled bool
	ItemCount   int64
}

// Database inspects RDS instances and DynamoDB tables.
type Database struct {
	rds      RDSAPI
	dynamodb DynamoDBAPI
	log      *zap.SugaredLogger
}

func NewDatabase(rdsClient RDSAPI, dynamoClient DynamoDBAPI) *Database {
	return &Database{rds: rdsClient, dynamodb: dynamoClient, log: zap.S().Named("cloud.database")}
}

// DescribeDBInstance returns the summary of one RDS instance by identifier.
func (d *Database) DescribeDBInstance(ctx context.Context, identifier string) (DBInstanceSummary, error) {
	out, err := d.rds.DescribeDBInstances(ctx, &rds.DescribeDBInstancesInput{
		DBInstanceIdentifier: aws.String(identifier),
	})
	if err != nil {
		return DBInstanceSummary{}, fmt.Errorf("failed to describe db instance %q: %w", identifier, err)
	}
	if len(out.DBInstances) == 0 {
		return DBInstanceSummary{}, fmt.Errorf("db instance %q not found", identifier)
	}

	instance := out.DBInstances[0]
	summary := DBInstanceSummary{
		Identifier:         identifier,
		Status:             aws.ToString(instance.DBInstanceStatus),
		Engine:             aws.ToString(instance.Engine),
		EngineVersion:      aws.ToString(instance.EngineVersion),
		MultiAZ:            aws.ToBool(instance.MultiAZ),
		StorageEncrypted:   aws.ToBool(instance.StorageEncrypted),
		PubliclyAccessible: aws.ToBool(instance.PubliclyAccessible),
	}
	if instance.Endpoint != nil {
		summary.Endpoint = aws.ToString(instance.Endpoint.Address)
		summary.Port = aws.ToInt32(instance.Endpoint.Port)
	}

	d.log.Debugw("described db instance", "identifier", identifier, "status", summary.Status)
	return summary, nil
}

// DescribeTable returns the summary of one DynamoDB table, including whether
// point-in-time recovery is enabled.
func (d *Database) DescribeTable(ctx context.Context, name string) (TableSummary, error) {
	out, err := d.dynamodb.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err != nil {
		return TableSummary{}, fmt.Errorf("failed to describe table %q: %w", name, err)
	}
	if out.Table == nil {
		return TableSummary{}, fmt.Errorf("table %q not found", name)
	}

	summary := TableSummary{
		Name:      name,
		Status:    string(out.Table.TableStatus),
		ItemCount: aws.ToInt64(out.Table.ItemCount),
	}
	for _, element := range out.Table.KeySchema {
		switch element.KeyType {
		case ddbtypes.KeyTypeHash:
			summary.HashKey = aws.ToString(element.AttributeName)
		case ddbtypes.KeyTypeRange:
			summary.RangeKey = aws.ToString(element.AttributeName)
		}
	}

	backups, err := d.dynamodb.DescribeContinuousBackups(ctx, &dynamodb.DescribeContinuousBackupsInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return summary, fmt.Errorf("failed to describe continuous backups of table %q: %w", name, err)
	}
	if backups.ContinuousBackupsDescription != nil &&
		backups.ContinuousBackupsDescription.PointInTimeRecoveryDescription != nil {
		status := backups.ContinuousBackupsDescription.PointInTimeRecoveryDescription.PointInTimeRecoveryStatus
		summary.PITREnabled = status == ddbtypes.PointInTimeRecoveryStatusEnabled
	}

	return summary, nil
}
