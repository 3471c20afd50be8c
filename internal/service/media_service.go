package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	config "github.com/maheshrc27/autopost/configs"
	"github.com/maheshrc27/autopost/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const maxUploadBytes = 100 << 20

var (
	ErrUnsupportedMedia     = errors.New("unsupported media type")
	ErrStorageNotConfigured = errors.New("object storage is not configured")
	ErrMediaTooLarge        = errors.New("media file too large")
)

var allowedMediaTypes = map[string]struct{}{
	"mp4": {}, "mov": {}, "jpg": {}, "png": {},
}

// ObjectStore is the subset of the S3 client used for uploads.
type ObjectStore interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type MediaService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (*transfer.MediaUploadResponse, error)
	UploadBytes(ctx context.Context, data []byte) (*transfer.MediaUploadResponse, error)
}

type mediaService struct {
	cfg   config.Config
	store ObjectStore
}

func NewMediaService(cfg config.Config, store ObjectStore) MediaService {
	return &mediaService{
		cfg:   cfg,
		store: store,
	}
}

// NewR2Client builds an S3 client for Cloudflare R2, or for any S3
// compatible endpoint when R2.Endpoint is set.
func NewR2Client(ctx context.Context, cfg config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2.AccessKey, cfg.R2.SecretKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	endpoint := cfg.R2.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2.AccountID)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = cfg.R2.Endpoint != ""
	}), nil
}

func (s *mediaService) Upload(ctx context.Context, file *multipart.FileHeader) (*transfer.MediaUploadResponse, error) {
	if file.Size > maxUploadBytes {
		return nil, ErrMediaTooLarge
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("error reading file content: %w", err)
	}
	return s.UploadBytes(ctx, data)
}

// UploadBytes sniffs the content type, stores the object under a random key
// and returns its public URL.
func (s *mediaService) UploadBytes(ctx context.Context, data []byte) (*transfer.MediaUploadResponse, error) {
	if len(data) > maxUploadBytes {
		return nil, ErrMediaTooLarge
	}
	if s.store == nil || s.cfg.R2.BucketName == "" || s.cfg.R2.PublicURL == "" {
		return nil, ErrStorageNotConfigured
	}

	kind, err := filetype.Match(data)
	if err != nil || kind == types.Unknown {
		return nil, ErrUnsupportedMedia
	}
	if _, ok := allowedMediaTypes[kind.Extension]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, kind.Extension)
	}

	id, err := gonanoid.New()
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	key := id + "." + kind.Extension

	_, err = s.store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.R2.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(kind.MIME.Value),
	})
	if err != nil {
		slog.Info(err.Error())
		return nil, fmt.Errorf("error uploading file: %w", err)
	}

	return &transfer.MediaUploadResponse{
		Key:         key,
		URL:         strings.TrimRight(s.cfg.R2.PublicURL, "/") + "/" + key,
		ContentType: kind.MIME.Value,
		Size:        len(data),
	}, nil
}
