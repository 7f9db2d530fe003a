package r2

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"

	conf "github.com/MythEclipse/ultimate-asepharyana.cloud-sub004/internal/config"
)

var ErrUpload = errors.New("upload failed")

type S3 struct {
	AccountID          string
	Bucket             string
	Region             string // usually "auto" for R2
	AwsAccessKeyId     string
	AwsSecretAccessKey string
	PublicBase         string

	MaxRetries     int
	RetryBaseDelay time.Duration

	S3Client *s3.Client
	Uploader *manager.Uploader

	log zerolog.Logger
}

func NewStorage(cfg *conf.R2Config, log zerolog.Logger) (*S3, error) {
	r2c := &S3{
		AccountID:          cfg.AccountID,
		Bucket:             cfg.BucketName,
		Region:             "auto",
		AwsAccessKeyId:     cfg.AccessKeyID,
		AwsSecretAccessKey: cfg.SecretKey,
		PublicBase:         strings.TrimSuffix(cfg.PublicBase, "/"),
		MaxRetries:         3,
		RetryBaseDelay:     300 * time.Millisecond,
		log:                log,
	}
	if r2c.PublicBase == "" {
		r2c.PublicBase = fmt.Sprintf("https://%s.r2.cloudflarestorage.com/%s", r2c.AccountID, r2c.Bucket)
	}
	if err := r2c.Run(); err != nil {
		return nil, err
	}
	return r2c, nil
}

func (s *S3) Run() error {
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.AwsAccessKeyId, s.AwsSecretAccessKey, "",
		)),
		config.WithRegion(s.Region),
	)
	if err != nil {
		return fmt.Errorf("failed to load AWS config: %w", err)
	}

	s.S3Client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.AccountID))
		o.UsePathStyle = true
	})
	s.Uploader = manager.NewUploader(s.S3Client)

	s.log.Info().Str("bucket", s.Bucket).Msg("R2 client initialized")
	return nil
}

// Upload puts the payload at key and returns its public URL. Transient
// failures are retried with jittered backoff before giving up.
func (s *S3) Upload(ctx context.Context, key string, contentType string, payload []byte) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= s.MaxRetries+1; attempt++ {
		_, lastErr = s.Uploader.Upload(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(payload),
			ContentType: aws.String(contentType),
		})
		if lastErr == nil {
			return s.PublicBase + "/" + key, nil
		}
		if attempt > s.MaxRetries || ctx.Err() != nil {
			break
		}

		backoff := s.backoffDelay(attempt)
		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return "", fmt.Errorf("%w: %v", ErrUpload, ctx.Err())
		}
	}
	return "", fmt.Errorf("%w: %v", ErrUpload, lastErr)
}

func (s *S3) backoffDelay(attempt int) time.Duration {
	delay := s.RetryBaseDelay << (attempt - 1)
	jitter := time.Duration(int64(delay) / 10)
	return delay - (jitter / 2) + time.Duration(int64(jitter)*time.Now().UnixNano()%2)
}
