// Package publish uploads export artifacts to S3-compatible object storage
// (Cloudflare R2, MinIO, AWS S3). It is optional: the server only creates a
// Publisher when a bucket is configured.
package publish

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/google/uuid"

	domerrors "github.com/garyellow/docmock/internal/errors"
	"github.com/garyellow/docmock/internal/export"
	"github.com/garyellow/docmock/internal/logger"
)

// KeyPrefix is the top-level folder for published exports.
const KeyPrefix = "exports"

// ErrBucketNotFound is returned when the configured bucket does not exist.
var ErrBucketNotFound = errors.New("publish: bucket not found")

// ErrAccessDenied is returned when the credentials may not write to the bucket.
var ErrAccessDenied = errors.New("publish: access denied")

// Config holds object storage configuration.
type Config struct {
	Endpoint    string // e.g. https://account-id.r2.cloudflarestorage.com
	AccessKeyID string
	SecretKey   string
	BucketName  string
	Region      string // defaults to "auto"
}

// Enabled reports whether every required field is set.
func (c Config) Enabled() bool {
	return c.Endpoint != "" && c.AccessKeyID != "" && c.SecretKey != "" && c.BucketName != ""
}

// Publisher stores export artifacts in a bucket.
type Publisher struct {
	s3     *s3.Client
	bucket string
	now    func() time.Time
	log    *logger.Logger
}

// New creates a Publisher.
func New(ctx context.Context, cfg Config, log *logger.Logger) (*Publisher, error) {
	if !cfg.Enabled() {
		return nil, errors.New("publish: endpoint, credentials and bucket are required")
	}
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretKey,
			"",
		)),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("publish: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return &Publisher{
		s3:     client,
		bucket: cfg.BucketName,
		now:    time.Now,
		log:    log.WithModule("publish"),
	}, nil
}

// Key builds the object key for an artifact: exports/YYYY/MM/DD/<uuid>/<name>.
func Key(at time.Time, id, name string) string {
	return path.Join(KeyPrefix, at.UTC().Format("2006/01/02"), id, path.Base(name))
}

// Publish uploads the artifact and returns its object key.
func (p *Publisher) Publish(ctx context.Context, a *export.Artifact) (string, error) {
	if a == nil || a.Name == "" {
		return "", domerrors.NewValidationError("artifact", "name is required")
	}

	key := Key(p.now(), uuid.NewString(), a.Name)
	input := &s3.PutObjectInput{
		Bucket:             aws.String(p.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(a.Data),
		ContentLength:      aws.Int64(int64(len(a.Data))),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=%q", a.Name)),
	}
	if a.ContentType != "" {
		input.ContentType = aws.String(a.ContentType)
	}

	result, err := p.s3.PutObject(ctx, input)
	if err != nil {
		return "", domerrors.AtStep(domerrors.StepPublish, key).Wrap(classify(err), "could not publish "+a.Name)
	}

	etag := ""
	if result.ETag != nil {
		etag = strings.Trim(*result.ETag, "\"")
	}
	p.log.WithFields(map[string]any{
		"key":   key,
		"etag":  etag,
		"bytes": len(a.Data),
	}).Info("Export published")
	return key, nil
}

// Ping checks that the bucket exists and the credentials can reach it.
func (p *Publisher) Ping(ctx context.Context) error {
	_, err := p.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(p.bucket)})
	if err == nil {
		return nil
	}
	err = classify(err)
	if errors.Is(err, domerrors.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
	}
	return fmt.Errorf("head bucket %q: %w", p.bucket, err)
}

// classify maps S3 API errors onto package and domain sentinels.
func classify(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			return fmt.Errorf("%w: %w", ErrAccessDenied, err)
		}
	}
	if isNotFound(err) {
		return fmt.Errorf("%w: %w", domerrors.ErrNotFound, err)
	}
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusForbidden {
		return fmt.Errorf("%w: %w", ErrAccessDenied, err)
	}
	return err
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "404":
			return true
		}
	}
	var respErr *smithyhttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}
