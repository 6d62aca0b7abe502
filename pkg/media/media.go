// Package media turns the opaque references stored on accounts and post files
// into URLs a client can fetch. Raw bytes never pass through this service.
package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/d60-Lab/lablinker/config"
)

// Resolver maps a stored reference to a retrievable URL.
type Resolver interface {
	URL(ctx context.Context, ref string) (string, error)
}

// New builds the resolver selected by cfg.Driver.
func New(ctx context.Context, cfg config.MediaConfig) (Resolver, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Resolver(ctx, cfg)
	default:
		return NewStaticResolver(cfg.BaseURL), nil
	}
}

func isAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// StaticResolver joins references onto a public base URL (CDN, bucket website).
type StaticResolver struct {
	base string
}

func NewStaticResolver(base string) *StaticResolver {
	return &StaticResolver{base: strings.TrimSuffix(base, "/")}
}

func (r *StaticResolver) URL(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if isAbsolute(ref) {
		return ref, nil
	}
	return r.base + "/" + escapePath(strings.TrimPrefix(ref, "/")), nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig
	presignGetObject     = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// S3Resolver hands out presigned GET URLs for objects in one bucket.
type S3Resolver struct {
	presign *s3.PresignClient
	bucket  string
	ttl     time.Duration
}

func NewS3Resolver(ctx context.Context, cfg config.MediaConfig) (*S3Resolver, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &S3Resolver{presign: s3.NewPresignClient(client), bucket: cfg.Bucket, ttl: ttl}, nil
}

func (r *S3Resolver) URL(ctx context.Context, ref string) (string, error) {
	if ref == "" {
		return "", nil
	}
	if isAbsolute(ref) {
		return ref, nil
	}
	key := strings.TrimPrefix(ref, "/")
	req, err := presignGetObject(r.presign, ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(r.ttl))
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}
