package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/smithy-go"

	"github.com/sinclairzx81/linqbox/internal/linq/value"
)

func (ld *Loader) loadDynamoDB(ctx context.Context, s Spec) (value.Value, error) {
	client := ld.dynamo
	if client == nil {
		c, err := newDynamoClient(ctx, s)
		if err != nil {
			return nil, err
		}
		client = c
	}

	out := value.NewArray(0)
	pages := dynamodb.NewScanPaginator(client, &dynamodb.ScanInput{TableName: aws.String(s.Table)})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, describeAPIError(err)
		}
		var items []map[string]any
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return nil, err
		}
		for _, item := range items {
			out = append(out, value.Of(item))
		}
		ld.log.WithField("items", len(page.Items)).Debug("scanned dynamodb page")
	}
	return out, nil
}

// newDynamoClient builds a client from the default AWS configuration. An
// endpoint in the spec points the client at DynamoDB Local with static
// credentials.
func newDynamoClient(ctx context.Context, s Spec) (*dynamodb.Client, error) {
	var opts []func(*config.LoadOptions) error
	if s.Region != "" {
		opts = append(opts, config.WithRegion(s.Region))
	}
	if s.Endpoint != "" {
		if s.Region == "" {
			opts = append(opts, config.WithRegion("localhost"))
		}
		endpoint := s.Endpoint
		opts = append(opts,
			config.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{URL: endpoint}, nil
				})),
			config.WithCredentialsProvider(credentials.StaticCredentialsProvider{
				Value: aws.Credentials{
					AccessKeyID: "local", SecretAccessKey: "local",
					Source: "static credentials for a local endpoint",
				},
			}),
		)
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	return dynamodb.NewFromConfig(cfg), nil
}

func describeAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("dynamodb %s: %s: %w", apiErr.ErrorCode(), apiErr.ErrorMessage(), err)
	}
	return err
}
