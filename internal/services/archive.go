package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/hyunsoolee/jangbu-api/internal/models"
)

// ArchiveService keeps the original workbook bytes of each successful upload
// in S3 so a disputed batch can be re-examined later. Ingestion itself never
// depends on it; a nil *ArchiveService disables archiving.
type ArchiveService struct {
	s3Client *s3.Client
	bucket   string
}

// NewArchiveService builds the S3-backed archive. endpoint is only set for
// LocalStack-style development setups; leave it empty against real AWS.
func NewArchiveService(bucket, region, endpoint string) (*ArchiveService, error) {
	if bucket == "" {
		return nil, fmt.Errorf("bucket cannot be empty")
	}
	if region == "" {
		return nil, fmt.Errorf("region cannot be empty")
	}

	ctx := context.Background()

	if endpoint != "" {
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion(region),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client := s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
		return &ArchiveService{s3Client: client, bucket: bucket}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &ArchiveService{s3Client: s3.NewFromConfig(cfg), bucket: bucket}, nil
}

// Archive stores the workbook under ledgers/{type}/ and returns the key.
func (a *ArchiveService) Archive(ctx context.Context, t models.LedgerType, filename string, data []byte) (string, error) {
	if a == nil {
		return "", nil
	}
	if len(data) == 0 {
		return "", fmt.Errorf("data cannot be empty")
	}

	key := a.archiveKey(t, filename)
	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive workbook: %w", err)
	}
	return key, nil
}

// archiveKey builds ledgers/{type}/{timestamp}-{uniqueID}-{sanitized-name}.
func (a *ArchiveService) archiveKey(t models.LedgerType, filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	base = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}
		return '-'
	}, base)

	timestamp := time.Now().UTC().Unix()
	uniqueID := uuid.New().String()[:8]
	return fmt.Sprintf("ledgers/%s/%d-%s-%s%s", strings.ToLower(string(t)), timestamp, uniqueID, base, ext)
}
