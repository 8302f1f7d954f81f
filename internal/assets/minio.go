package assets

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Options configures a MinioSource.
type S3Options struct {
	Endpoint   string
	Bucket     string
	Prefix     string
	Region     string // skips the bucket location lookup when set
	AccessKey  string
	SecretKey  string
	Secure     bool
	MaxRetries int // 0 keeps the client default, 1 disables retries
}

// MinioSource serves assets from an S3-compatible bucket. Keys are
// <prefix>/assets/... mirroring the web root.
type MinioSource struct {
	client *minio.Client
	bucket string
	prefix string
}

// NewMinioSource connects to the endpoint in opts.
func NewMinioSource(opts S3Options) (*MinioSource, error) {
	if opts.Endpoint == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("s3 endpoint and bucket are required")
	}
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:      credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure:     opts.Secure,
		Region:     opts.Region,
		MaxRetries: opts.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create s3 client: %w", err)
	}
	return NewMinioSourceFromClient(client, opts.Bucket, opts.Prefix), nil
}

// NewMinioSourceFromClient wraps an existing client.
func NewMinioSourceFromClient(client *minio.Client, bucket, prefix string) *MinioSource {
	return &MinioSource{client: client, bucket: bucket, prefix: prefix}
}

func (s *MinioSource) key(rel string) string {
	return path.Join(s.prefix, rel)
}

// FetchManifest reads the manifest object.
func (s *MinioSource) FetchManifest(ctx context.Context) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.key(ManifestPath), minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	b, err := io.ReadAll(io.LimitReader(obj, maxManifestSize))
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest object: %w", err)
	}
	return b, nil
}

// Probe stats the asset object; only metadata is transferred.
func (s *MinioSource) Probe(ctx context.Context, c Class, fileName string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, s.key(c.Path(fileName)), minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func isNotFound(err error) bool {
	code := minio.ToErrorResponse(err).Code
	return code == "NoSuchKey" || code == "NotFound"
}
