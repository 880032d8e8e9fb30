package store

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MediaStore stores uploaded media blobs in an S3-compatible bucket and
// maps object keys to public URLs.
type MediaStore struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewMediaStore creates an S3-backed media store. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewMediaStore(ctx context.Context, bucket, region, endpoint, baseURL string) (*MediaStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	return &MediaStore{
		client:  s3.NewFromConfig(cfg, s3opts...),
		bucket:  bucket,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Put uploads a blob under the given key and returns its public URL.
func (m *MediaStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(m.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return m.baseURL + "/" + key, nil
}

// Delete removes the blob a public URL points at. URLs outside the
// configured base are rejected before any storage call.
func (m *MediaStore) Delete(ctx context.Context, url string) error {
	key, ok := strings.CutPrefix(url, m.baseURL+"/")
	if !ok || key == "" {
		return fmt.Errorf("url %q is not served from this media store", url)
	}

	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}
