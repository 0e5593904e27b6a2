// Package storage fetches recording objects from S3-compatible object
// storage into run-scoped local files.
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"voice-agent-bridge/internal/recording"
)

// Config holds credentials and endpoint for the recording store. The
// endpoint is S3-compatible (the recorder uploads via the S3 protocol);
// path-style addressing is required by most non-AWS providers.
type Config struct {
	Endpoint       string
	Region         string
	AccessKey      string
	Secret         string
	ForcePathStyle bool
}

// objectGetter is the subset of the S3 client the fetcher uses.
type objectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher downloads recording objects.
type Fetcher struct {
	client objectGetter
}

// New creates a Fetcher with static credentials against cfg.Endpoint.
func New(ctx context.Context, cfg Config) (*Fetcher, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.Secret, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &Fetcher{client: client}, nil
}

func newWithClient(client objectGetter) *Fetcher {
	return &Fetcher{client: client}
}

// ErrNotConfigured is returned by Disabled when a run reaches the fetch
// stage without storage credentials.
var ErrNotConfigured = fmt.Errorf("storage not configured")

// Disabled is a Fetcher stand-in used when storage credentials are
// absent. It fails every fetch so the run's failure names the real cause.
type Disabled struct{}

func (Disabled) Fetch(_ context.Context, ref recording.Reference, _ string) (string, error) {
	return "", fmt.Errorf("fetch %s: %w", ref, ErrNotConfigured)
}

// Fetch downloads the referenced object into dir and returns the local
// file path. Any storage error is terminal for the pipeline run; a missing
// recording cannot become present by retrying immediately.
func (f *Fetcher) Fetch(ctx context.Context, ref recording.Reference, dir string) (string, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(ref.Bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", ref, err)
	}
	defer out.Body.Close()

	dst := filepath.Join(dir, filepath.Base(ref.Key))
	file, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dst, err)
	}
	defer file.Close()

	if _, err := io.Copy(file, out.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	return dst, nil
}
