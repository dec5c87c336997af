package s3

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/strogmv/claimcomms/internal/pkg/logger"
)

// Options locate the document bucket.
type Options struct {
	Region         string
	Bucket         string
	Endpoint       string
	ForcePathStyle bool
}

// DocumentStore reads agreement documents from a bucket.
type DocumentStore struct {
	client *s3.Client
	bucket string
}

func New(ctx context.Context, opts Options) (*DocumentStore, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewFromConfig(cfg, opts), nil
}

// NewFromConfig builds a store from an already loaded aws.Config.
func NewFromConfig(cfg aws.Config, opts Options) *DocumentStore {
	return &DocumentStore{
		client: s3.NewFromConfig(cfg, func(o *s3.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
			o.UsePathStyle = opts.ForcePathStyle
		}),
		bucket: opts.Bucket,
	}
}

// Fetch downloads the object stored under location.
func (s *DocumentStore) Fetch(ctx context.Context, location string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(location),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object: %w", err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read object: %w", err)
	}
	logger.From(ctx).Info("fetched agreement document",
		"documentLocation", location,
		"etag", aws.ToString(out.ETag),
		"bytes", len(body),
	)
	return body, nil
}
