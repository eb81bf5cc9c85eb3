package loader

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/lychee-technology/schemaguard"
)

const s3Scheme = "s3://"

// ParseS3URI splits s3://bucket/prefix into its bucket and key prefix.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	rest, ok := strings.CutPrefix(uri, s3Scheme)
	if !ok {
		return "", "", fmt.Errorf("%q is not an s3:// location", uri)
	}
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("%q has no bucket", uri)
	}
	return bucket, prefix, nil
}

// S3API is the part of the S3 client used to list and download documents.
type S3API interface {
	s3.ListObjectsV2APIClient
	manager.DownloadAPIClient
}

// S3Source loads schema documents stored as objects under a key prefix.
type S3Source struct {
	client     S3API
	downloader *manager.Downloader
	bucket     string
	prefix     string
	logger     *zap.Logger
}

// NewS3Source builds an S3 client from the snapshot settings. Empty settings
// fall back to the default AWS credential chain and region.
func NewS3Source(ctx context.Context, cfg schemaguard.SnapshotConfig, bucket, prefix string, logger *zap.Logger) (*S3Source, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(cfg.Endpoint))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, schemaguard.NewLoadError(schemaguard.ErrCodeSourceUnavailable, "failed to load AWS config", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return NewS3SourceWithClient(client, bucket, prefix, logger), nil
}

// NewS3SourceWithClient creates a source on top of an existing client.
func NewS3SourceWithClient(client S3API, bucket, prefix string, logger *zap.Logger) *S3Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &S3Source{
		client:     client,
		downloader: manager.NewDownloader(client),
		bucket:     bucket,
		prefix:     prefix,
		logger:     logger,
	}
}

func (s *S3Source) Describe() string {
	return s3Scheme + s.bucket + "/" + s.prefix
}

func (s *S3Source) Load(ctx context.Context) (*schemaguard.Schema, schemaguard.Issues, error) {
	keys, err := s.listKeys(ctx)
	if err != nil {
		return nil, nil, err
	}
	schema, issues, err := decodeAll(ctx, keys, s.download)
	if err != nil {
		return nil, nil, err
	}
	s.logger.Sugar().Infow("loaded schema documents from S3",
		"bucket", s.bucket, "prefix", s.prefix, "documents", len(keys), "issues", len(issues))
	return schema, issues, nil
}

func (s *S3Source) listKeys(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix),
	})

	var keys []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, s.loadError("failed to list schema documents", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if _, ok := FormatOf(key); ok {
				keys = append(keys, key)
			}
		}
	}
	return keys, nil
}

func (s *S3Source) download(ctx context.Context, key string) ([]byte, error) {
	buf := manager.NewWriteAtBuffer(nil)
	_, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, s.loadError(fmt.Sprintf("failed to download %s", key), err)
	}
	return buf.Bytes(), nil
}

func (s *S3Source) loadError(message string, err error) error {
	loadErr := schemaguard.NewLoadError(schemaguard.ErrCodeSourceUnavailable, message, err).WithSubject(s.Describe())
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		loadErr.WithDetail("awsErrorCode", apiErr.ErrorCode())
	}
	return loadErr
}
