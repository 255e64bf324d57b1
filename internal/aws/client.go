// Package aws reads datasets from S3 and checks the credentials used to do so.
package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// Client holds the S3 and STS clients built from one shared config
type Client struct {
	S3  *s3.Client
	STS *sts.Client

	profile  string
	region   string
	endpoint string
}

// ClientOption allows customizing the AWS Client
type ClientOption func(*Client)

// WithProfile selects a shared config profile
func WithProfile(profile string) ClientOption {
	return func(c *Client) {
		c.profile = profile
	}
}

// WithRegion overrides the region from the environment or profile
func WithRegion(region string) ClientOption {
	return func(c *Client) {
		c.region = region
	}
}

// WithEndpoint points S3 at a compatible store such as MinIO, using
// path-style addressing
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		c.endpoint = endpoint
	}
}

// NewClient loads the default credential chain with the given options
func NewClient(ctx context.Context, opts ...ClientOption) (*Client, error) {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}

	var loadOpts []func(*config.LoadOptions) error
	if c.profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(c.profile))
	}
	if c.region != "" {
		loadOpts = append(loadOpts, config.WithRegion(c.region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}
	c.region = cfg.Region

	c.S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if c.endpoint != "" {
			o.BaseEndpoint = aws.String(c.endpoint)
			o.UsePathStyle = true
		}
	})
	c.STS = sts.NewFromConfig(cfg)
	return c, nil
}

// Region returns the region the config resolved to
func (c *Client) Region() string {
	return c.region
}
