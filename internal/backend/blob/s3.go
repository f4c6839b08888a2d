package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/folio-space/folio/internal/backend"
	"github.com/folio-space/folio/internal/config"
)

// S3 stores blobs in an S3-compatible bucket.
type S3 struct {
	client       *s3.Client
	bucket       string
	prefix       string
	endpoint     *url.URL
	customDomain string
	pathStyle    bool
}

var _ backend.BlobStore = (*S3)(nil)

func NewS3(opts config.S3Config) (*S3, error) {
	bucket := strings.TrimSpace(opts.Bucket)
	region := strings.TrimSpace(opts.Region)
	accessKey := strings.TrimSpace(opts.AccessKeyID)
	secretKey := strings.TrimSpace(opts.SecretAccessKey)
	if bucket == "" || region == "" || accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("incomplete s3 config: bucket/region/access_key_id/secret_access_key are required")
	}

	endpoint := strings.TrimSpace(opts.Endpoint)
	custom := endpoint != ""
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://s3.%s.amazonaws.com", region)
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	parsed, err := url.Parse(endpoint)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid s3 endpoint: %s", endpoint)
	}

	// Custom endpoints (R2, MinIO) almost always want path-style addressing.
	pathStyle := opts.PathStyle || custom

	client := s3.New(s3.Options{
		Region:       region,
		Credentials:  aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		BaseEndpoint: aws.String(endpoint),
		UsePathStyle: pathStyle,
	})

	return &S3{
		client:       client,
		bucket:       bucket,
		prefix:       strings.Trim(opts.Prefix, "/"),
		endpoint:     parsed,
		customDomain: strings.TrimRight(strings.TrimSpace(opts.CustomDomain), "/"),
		pathStyle:    pathStyle,
	}, nil
}

func (s *S3) objectKey(path string) string {
	key := normalizeObjectKey(path)
	if s.prefix != "" {
		key = s.prefix + "/" + key
	}
	return key
}

// Upload puts the object. r should be seekable so the SDK can sign the payload.
func (s *S3) Upload(ctx context.Context, path string, r io.Reader, size int64, contentType string) error {
	if !validKey(normalizeObjectKey(path)) {
		return fmt.Errorf("s3 upload %q: %w", path, errInvalidKey)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(path)),
		Body:          r,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s: %w", path, err)
	}
	return nil
}

func (s *S3) PublicURL(path string) string {
	encoded := encodeObjectKey(s.objectKey(path))
	if s.customDomain != "" {
		return s.customDomain + "/" + encoded
	}

	basePath := strings.TrimSuffix(s.endpoint.Path, "/")
	if s.pathStyle {
		return s.endpoint.Scheme + "://" + s.endpoint.Host + joinURLPath(basePath, s.bucket, encoded)
	}
	host := s.endpoint.Host
	if !strings.HasPrefix(strings.ToLower(host), strings.ToLower(s.bucket)+".") {
		host = s.bucket + "." + host
	}
	return s.endpoint.Scheme + "://" + host + joinURLPath(basePath, encoded)
}
