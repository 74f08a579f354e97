package storage

import (
	"context"
	"fmt"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

const BackendCloudinary = "cloudinary"

// CloudinaryStore uploads attachments to Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewCloudinaryStore configures the store from a cloudinary:// URL.
func NewCloudinaryStore(cloudinaryURL string) (*CloudinaryStore, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary url is not configured")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, logger: zap.L().Named("cloudinary")}, nil
}

// Upload sends the data URL as-is; Cloudinary accepts data URIs as the file parameter.
func (s *CloudinaryStore) Upload(ctx context.Context, folder string, file DataURL) (*Attachment, error) {
	result, err := s.cld.Upload.Upload(ctx, file.Raw, uploader.UploadParams{
		Folder:         folder,
		ResourceType:   "auto",
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("cloudinary upload: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("cloudinary upload: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("cloudinary upload: no url returned")
	}
	s.logger.Debug("attachment uploaded", zap.String("publicId", result.PublicID), zap.Int("bytes", result.Bytes))
	return &Attachment{ID: result.PublicID, URL: result.SecureURL}, nil
}

func (s *CloudinaryStore) Delete(ctx context.Context, id string) error {
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: id}); err != nil {
		return fmt.Errorf("cloudinary destroy: %w", err)
	}
	return nil
}
