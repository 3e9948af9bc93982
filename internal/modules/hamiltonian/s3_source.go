package hamiltonian

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/rs/zerolog"
)

// S3Config locates a bucket holding parameter files.
type S3Config struct {
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // non-empty for S3-compatible stores; forces path-style addressing
	AccessKeyID     string
	SecretAccessKey string
}

// S3Source reads objects from s3://bucket/prefix/name.
type S3Source struct {
	bucket     string
	prefix     string
	downloader *manager.Downloader
	log        zerolog.Logger
}

// NewS3Source builds an S3 client from the default AWS credential chain, or from
// static keys when both are set in cfg.
func NewS3Source(ctx context.Context, cfg S3Config, log zerolog.Logger) (*S3Source, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 source requires a bucket")
	}

	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{
		bucket:     cfg.Bucket,
		prefix:     cfg.Prefix,
		downloader: manager.NewDownloader(client),
		log:        log.With().Str("component", "s3_source").Str("bucket", cfg.Bucket).Logger(),
	}, nil
}

func (s *S3Source) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	key := s.key(name)
	buf := manager.NewWriteAtBuffer(nil)

	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", s.Describe(name), asNotExist(err))
	}

	s.log.Debug().Str("key", key).Int64("bytes", n).Msg("Downloaded object")
	return io.NopCloser(bytes.NewReader(buf.Bytes())), nil
}

func (s *S3Source) Describe(name string) string {
	return "s3://" + s.bucket + "/" + s.key(name)
}

func (s *S3Source) key(name string) string {
	return path.Join(s.prefix, name)
}

// asNotExist marks a missing object with fs.ErrNotExist so callers treat it like
// a missing local file.
func asNotExist(err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return fmt.Errorf("%w: %w", fs.ErrNotExist, err)
	}
	return err
}
