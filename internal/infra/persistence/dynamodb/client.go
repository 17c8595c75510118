// Package dynamodb stores the catalog and the order book in DynamoDB
// tables keyed by id.
package dynamodb

import (
	"context"
	"strconv"
	"strings"

	"storebot/config"
	"storebot/internal/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

const (
	defaultRegion        = "us-east-1"
	defaultProductsTable = "products"
	defaultOrdersTable   = "orders"
)

// NewClient builds a DynamoDB client. Static credentials are used when
// configured, which local DynamoDB requires even though it ignores them;
// otherwise the default AWS chain applies.
func NewClient(ctx context.Context, cfg *config.Config) (*dynamodb.Client, error) {
	ddbCfg := cfg.Storage.DynamoDB

	region := ddbCfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if ddbCfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(ddbCfg.AccessKeyID, ddbCfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS config")
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if ddbCfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(ddbCfg.Endpoint)
		}
	}), nil
}

func tableName(name, def string) string {
	if name == "" {
		return def
	}

	return name
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}

func joinAnd(conds []string) string {
	return strings.Join(conds, " AND ")
}
