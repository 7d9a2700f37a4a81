package strategies

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JdotSiv/homebrew/internal/domain"
)

// NewS3Strategy creates a strategy for private S3 objects. A presigned
// GET is obtained from ambient credentials; when no credentials are
// available the bucket's public URL is used instead.
func NewS3Strategy(deps *Dependencies, res *domain.Resource) *HTTPStrategy {
	s := NewHTTPStrategy(deps, res)
	s.name = "s3"
	s.resolveURL = func(ctx context.Context, rawURL string) (string, error) {
		bucket, key, err := parseS3URL(rawURL)
		if err != nil {
			return "", err
		}

		signed, err := presignS3(ctx, bucket, key)
		if err != nil {
			deps.Logger.WithStrategy("s3").Debug().Err(err).
				Msg("no usable credentials, falling back to public URL")
			return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", bucket, key), nil
		}
		return signed, nil
	}
	return s
}

// presignS3 obtains a time-limited signed GET URL from ambient
// credentials. Any credential failure is reported as ErrNoCredentials so
// the caller can degrade to the public URL.
func presignS3(ctx context.Context, bucket, key string) (string, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoCredentials, err)
	}
	if _, err := cfg.Credentials.Retrieve(ctx); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNoCredentials, err)
	}

	presigner := s3.NewPresignClient(s3.NewFromConfig(cfg))
	req, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

// parseS3URL extracts bucket and key from the supported S3 URL forms:
// virtual-hosted (bucket.s3.amazonaws.com/key), path-style
// (s3.amazonaws.com/bucket/key) and the s3://bucket/key shorthand.
func parseS3URL(rawURL string) (bucket, key string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", err
	}

	path := strings.TrimPrefix(u.Path, "/")
	switch {
	case u.Scheme == "s3":
		return u.Host, path, nil
	case strings.HasSuffix(u.Host, ".s3.amazonaws.com"):
		return strings.TrimSuffix(u.Host, ".s3.amazonaws.com"), path, nil
	case u.Host == "s3.amazonaws.com":
		bucket, key, ok := strings.Cut(path, "/")
		if !ok {
			return "", "", fmt.Errorf("S3 URL %q has no object key", rawURL)
		}
		return bucket, key, nil
	default:
		return "", "", fmt.Errorf("%q is not an S3 URL", rawURL)
	}
}
