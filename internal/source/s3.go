package source

import (
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// ObjectStore is the subset of a bucket client needed to read listings.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// S3Store reads listing parts from one S3 bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store uses the default AWS credential chain (env, shared config,
// instance role).
func NewS3Store(ctx context.Context, bucket string) (ObjectStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Store{client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

func (s *S3Store) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", s.bucket, key, err)
	}
	return out.Body, nil
}

// parseS3 splits s3://bucket/prefix.
func parseS3(location string) (bucket, prefix string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found || rest == "" {
		return "", "", false
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	return bucket, prefix, bucket != ""
}

func (r *Reader) readS3(ctx context.Context, bucket, prefix string, d *deduper) error {
	store, err := r.newStore(ctx, bucket)
	if err != nil {
		return fmt.Errorf("open listing: %w", err)
	}

	keys, err := store.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("open listing: %w", err)
	}

	var parts []string
	for _, k := range keys {
		if strings.HasSuffix(k, "/") || isHiddenPart(path.Base(k)) {
			continue
		}
		parts = append(parts, k)
	}
	if len(parts) == 0 {
		return fmt.Errorf("open listing: no objects under s3://%s/%s", bucket, prefix)
	}
	sort.Strings(parts)

	for _, key := range parts {
		if err := r.readS3Part(ctx, store, key, d); err != nil {
			return err
		}
		r.log.Debug("listing part read", zap.String("bucket", bucket), zap.String("key", key))
	}
	return nil
}

func (r *Reader) readS3Part(ctx context.Context, store ObjectStore, key string, d *deduper) error {
	body, err := store.Open(ctx, key)
	if err != nil {
		return fmt.Errorf("open listing part: %w", err)
	}
	defer body.Close()
	return readPart(key, body, d)
}
