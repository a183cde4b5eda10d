// Package storage uploads application documents to S3-compatible object
// storage and hands out short-lived presigned download links.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/Raunak-Sarmacharya/localcooks-api/internal/config"
)

const presignTTL = 15 * time.Minute

type Uploader struct {
	Client        *s3.Client
	Presign       *s3.PresignClient
	Bucket        string
	Region        string
	PublicBaseURL string
}

// NewUploader builds an S3 client from static credentials. A non-empty
// Endpoint points the client at an S3-compatible service such as MinIO.
func NewUploader(cfg appconfig.S3Config) (*Uploader, error) {
	sdkConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(sdkConfig, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &Uploader{
		Client:        client,
		Presign:       s3.NewPresignClient(client),
		Bucket:        cfg.Bucket,
		Region:        cfg.Region,
		PublicBaseURL: cfg.PublicBaseURL,
	}, nil
}

// ObjectKey builds a collision-free key for an uploaded document,
// keeping the original extension so content type sniffing stays sane.
func ObjectKey(applicationID uint64, kind, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("applications/%d/%s/%s%s", applicationID, kind, uuid.NewString(), ext)
}

// UploadFile streams the file to the bucket and returns its canonical URL.
func (u *Uploader) UploadFile(ctx context.Context, file io.Reader, objectKey, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        file,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	if u.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(u.PublicBaseURL, "/"), objectKey), nil
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey), nil
}

// KeyFromURL recovers the object key from a stored canonical URL so a
// presigned link can be minted for it later.
func (u *Uploader) KeyFromURL(raw string) string {
	prefixes := []string{
		fmt.Sprintf("https://%s.s3.%s.amazonaws.com/", u.Bucket, u.Region),
	}
	if u.PublicBaseURL != "" {
		prefixes = append(prefixes, strings.TrimRight(u.PublicBaseURL, "/")+"/")
	}
	for _, p := range prefixes {
		if strings.HasPrefix(raw, p) {
			return strings.TrimPrefix(raw, p)
		}
	}
	return raw
}

// PresignGet returns a download URL valid for fifteen minutes. Documents
// are never public; reviewers fetch them through these links.
func (u *Uploader) PresignGet(ctx context.Context, objectKey string) (string, error) {
	out, err := u.Presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(objectKey),
	}, s3.WithPresignExpires(presignTTL))
	if err != nil {
		return "", fmt.Errorf("failed to presign object: %w", err)
	}
	return out.URL, nil
}
