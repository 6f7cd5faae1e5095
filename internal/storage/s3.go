// Package storage keeps scrape snapshots, relevance artifacts and task
// datasets in an S3-compatible bucket.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config holds S3/MinIO client configuration.
type Config struct {
	Endpoint        string // "localhost:9002" for a local MinIO
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
}

// Client wraps the MinIO/S3 client.
type Client struct {
	minioClient *minio.Client
	bucket      string
}

// New creates a new S3/MinIO client.
func New(config Config) (*Client, error) {
	if config.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	if config.Bucket == "" {
		return nil, fmt.Errorf("bucket is required")
	}

	minioClient, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKeyID, config.SecretAccessKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &Client{
		minioClient: minioClient,
		bucket:      config.Bucket,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.minioClient.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}
	if exists {
		return nil
	}

	if err := c.minioClient.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}
	return nil
}

// PrefixSegment turns a source tag into a lower-case key segment,
// e.g. "EUR-LEX" becomes "eur-lex" and "Bank of England" becomes "bank-of-england".
func PrefixSegment(source string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(source)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}

// ScrapeMetadata holds information about one scraped source.
type ScrapeMetadata struct {
	Source    string   `json:"source"`
	SourceURL string   `json:"source_url"`
	Timestamp string   `json:"timestamp"`
	PageCount int      `json:"page_count"`
	Pages     []string `json:"pages"`                // Page URLs, one per stored markdown file
	FileLinks []string `json:"file_links,omitempty"` // Linked PDF/Word files, not downloaded
}

// PutMarkdown writes a page under <prefix>/pages.
func (c *Client) PutMarkdown(ctx context.Context, prefix, filename, content string) error {
	objectName := path.Join(prefix, "pages", filename)
	if err := c.put(ctx, objectName, []byte(content), "text/markdown"); err != nil {
		return fmt.Errorf("failed to put markdown: %w", err)
	}
	return nil
}

// PutMetadata writes the scrape metadata JSON to S3.
func (c *Client) PutMetadata(ctx context.Context, prefix string, meta ScrapeMetadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	if err := c.put(ctx, path.Join(prefix, "metadata.json"), data, "application/json"); err != nil {
		return fmt.Errorf("failed to put metadata: %w", err)
	}
	return nil
}

// ListMarkdownFiles returns the file names of all pages under a prefix.
func (c *Client) ListMarkdownFiles(ctx context.Context, prefix string) ([]string, error) {
	keys, err := c.list(ctx, path.Join(prefix, "pages")+"/", true)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, key := range keys {
		if strings.HasSuffix(key, ".md") {
			files = append(files, path.Base(key))
		}
	}
	return files, nil
}

// GetMarkdown reads a page from S3.
func (c *Client) GetMarkdown(ctx context.Context, prefix, filename string) (string, error) {
	data, err := c.Get(ctx, path.Join(prefix, "pages", filename))
	if err != nil {
		return "", fmt.Errorf("failed to get markdown: %w", err)
	}
	return string(data), nil
}

// GetMetadata reads the scrape metadata from S3.
func (c *Client) GetMetadata(ctx context.Context, prefix string) (*ScrapeMetadata, error) {
	data, err := c.Get(ctx, path.Join(prefix, "metadata.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata: %w", err)
	}

	var meta ScrapeMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
	}
	return &meta, nil
}

// ListScrapes returns the scrape prefixes stored for a source, oldest first.
// Prefixes start with a UTC timestamp so lexical order is chronological.
func (c *Client) ListScrapes(ctx context.Context, source string) ([]string, error) {
	keys, err := c.list(ctx, "scrapes/"+PrefixSegment(source)+"/", false)
	if err != nil {
		return nil, err
	}
	var prefixes []string
	for _, key := range keys {
		if strings.HasSuffix(key, "/") {
			prefixes = append(prefixes, strings.TrimSuffix(key, "/"))
		}
	}
	slices.Sort(prefixes)
	return prefixes, nil
}

// Upload writes whatever w serializes to key. Relevance artifacts and task
// datasets are stored this way.
func (c *Client) Upload(ctx context.Context, key string, w io.WriterTo, contentType string) error {
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize %s: %w", key, err)
	}
	if err := c.put(ctx, key, buf.Bytes(), contentType); err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// UploadFile copies a local file to key.
func (c *Client) UploadFile(ctx context.Context, key, filePath, contentType string) error {
	_, err := c.minioClient.FPutObject(ctx, c.bucket, key, filePath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", filePath, err)
	}
	return nil
}

// Get reads a whole object.
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	object, err := c.minioClient.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return data, nil
}

// Bucket returns the bucket name.
func (c *Client) Bucket() string {
	return c.bucket
}

func (c *Client) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := c.minioClient.PutObject(ctx, c.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (c *Client) list(ctx context.Context, prefix string, recursive bool) ([]string, error) {
	var keys []string
	objectCh := c.minioClient.ListObjects(ctx, c.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: recursive,
	})
	for object := range objectCh {
		if object.Err != nil {
			return nil, fmt.Errorf("failed to list objects: %w", object.Err)
		}
		keys = append(keys, object.Key)
	}
	return keys, nil
}
