// Package s3 stores backups in an S3-compatible object store. It works
// against AWS S3 proper and against self-hosted MinIO via the endpoint
// override.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/custodia-labs/quillsync-cli/internal/adapters/driven/providers"
	"github.com/custodia-labs/quillsync-cli/internal/core/domain"
	"github.com/custodia-labs/quillsync-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quillsync-cli/internal/logger"
)

// api is the slice of the S3 client the provider uses. Tests substitute
// a fake.
type api interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Provider implements the Provider port over an S3 bucket. Artifact
// metadata is attached as object metadata on upload; listings are
// reconstructed from keys and storage timestamps, which keeps List to a
// single paginated call.
type Provider struct {
	cfg    domain.ProviderConfig
	client api
	ready  bool
}

var _ driven.Provider = (*Provider)(nil)

// New creates an S3 provider. The client is built during Initialize.
func New(cfg domain.ProviderConfig) *Provider {
	return &Provider{cfg: cfg}
}

// NewWithClient creates an S3 provider on an explicit client.
func NewWithClient(client api, cfg domain.ProviderConfig) *Provider {
	return &Provider{cfg: cfg, client: client, ready: true}
}

// Name returns the configured destination name.
func (p *Provider) Name() string { return p.cfg.Name }

// Type returns the object store provider type.
func (p *Provider) Type() domain.ProviderType { return domain.ProviderObjectStore }

// Initialize builds the S3 client and verifies bucket access.
func (p *Provider) Initialize(cfg domain.ProviderConfig) bool {
	p.cfg = cfg
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
	)
	if err != nil {
		logger.Warn("Loading AWS config for %s failed: %v", cfg.Name, err)
		p.ready = false
		return false
	}

	p.client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			// Self-hosted MinIO and friends.
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	if _, err := p.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		logger.Warn("Bucket %s is not reachable for %s: %v", cfg.Bucket, cfg.Name, err)
		p.ready = false
		return false
	}

	p.ready = true
	return true
}

// Store uploads the payload with its metadata attached to the object.
func (p *Provider) Store(ctx context.Context, artifact *domain.BackupArtifact) error {
	if !p.ready {
		return domain.ErrProviderNotReady
	}

	key := domain.DeriveStorageKey(p.cfg.Prefix, artifact.Metadata)
	meta := artifact.Metadata

	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(artifact.Payload),
		Metadata: map[string]string{
			"timestamp":      meta.Timestamp.UTC().Format(time.RFC3339),
			"format-version": fmt.Sprintf("%d", meta.FormatVersion),
			"collection":     meta.Collection,
			"document-id":    meta.DocumentID,
			"kind":           meta.Kind.String(),
			"relative-path":  meta.RelativePath,
		},
	})
	if err != nil {
		return fmt.Errorf("uploading %s to bucket %s: %w", key, p.cfg.Bucket, err)
	}
	return nil
}

// List enumerates the bucket under the configured prefix.
func (p *Provider) List(ctx context.Context) ([]domain.BackupMetadata, error) {
	if !p.ready {
		return nil, domain.ErrProviderNotReady
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(p.cfg.Bucket),
	}
	if p.cfg.Prefix != "" {
		input.Prefix = aws.String(strings.TrimSuffix(p.cfg.Prefix, "/") + "/")
	}

	var listing []domain.BackupMetadata
	for {
		page, err := p.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("listing bucket %s: %w", p.cfg.Bucket, err)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			meta, ok := p.describe(obj.Key, obj.LastModified, obj.Size)
			if !ok {
				continue
			}
			listing = append(listing, meta)
		}

		if page.IsTruncated == nil || !*page.IsTruncated {
			break
		}
		input.ContinuationToken = page.NextContinuationToken
	}
	return listing, nil
}

// Fetch downloads the payload stored under a canonical key.
func (p *Provider) Fetch(ctx context.Context, key string) ([]byte, error) {
	if !p.ready {
		return nil, domain.ErrProviderNotReady
	}

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(providers.ApplyPrefix(p.cfg.Prefix, key)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("downloading %s: %w", key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading body of %s: %w", key, err)
	}
	return content, nil
}

// Erase deletes the object stored under a canonical key. S3 delete is
// idempotent, so a missing key is not an error.
func (p *Provider) Erase(ctx context.Context, key string) error {
	if !p.ready {
		return domain.ErrProviderNotReady
	}

	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(providers.ApplyPrefix(p.cfg.Prefix, key)),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// LastModified returns the storage-side modification time for a
// canonical key.
func (p *Provider) LastModified(ctx context.Context, key string) (time.Time, error) {
	if !p.ready {
		return time.Time{}, domain.ErrProviderNotReady
	}

	out, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.cfg.Bucket),
		Key:    aws.String(providers.ApplyPrefix(p.cfg.Prefix, key)),
	})
	if err != nil {
		if isNotFound(err) {
			return time.Time{}, fmt.Errorf("object %s: %w", key, domain.ErrNotFound)
		}
		return time.Time{}, fmt.Errorf("heading %s: %w", key, err)
	}
	if out.LastModified == nil {
		return time.Time{}, nil
	}
	return *out.LastModified, nil
}

// describe reconstructs metadata from an object listing entry. The
// canonical key is collection-qualified, so matching still works
// through BackupMetadata's suffix rules.
func (p *Provider) describe(key *string, lastModified *time.Time, size *int64) (domain.BackupMetadata, bool) {
	canonical := *key
	if p.cfg.Prefix != "" {
		canonical = strings.TrimPrefix(canonical, strings.TrimSuffix(p.cfg.Prefix, "/")+"/")
	}

	segments := strings.Split(canonical, "/")
	if len(segments) < 2 {
		return domain.BackupMetadata{}, false
	}

	meta := domain.BackupMetadata{
		FormatVersion: domain.MetadataFormatVersion,
		Collection:    segments[0],
		RelativePath:  canonical,
		FileName:      path.Base(canonical),
	}
	if lastModified != nil {
		meta.Timestamp = *lastModified
	}
	if size != nil {
		meta.SizeBytes = *size
	}

	switch segments[1] {
	case "journals":
		meta.Kind = domain.KindJournal
	case "pages":
		meta.Kind = domain.KindPage
	case "assets":
		meta.Kind = domain.KindAsset
	}
	return meta, true
}

// isNotFound detects S3's assorted missing-object errors. GetObject
// reports NoSuchKey; HeadObject reports NotFound.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}
