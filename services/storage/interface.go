// Package storage hosts chat attachments.
package storage

import (
	"context"
	"errors"
	"fmt"

	"lawdesk/config"
)

var ErrUnsupportedBackend = errors.New("unsupported storage backend")

// Attachment is an uploaded file.
type Attachment struct {
	ID  string
	URL string
}

// AttachmentStore uploads and removes hosted files.
type AttachmentStore interface {
	Upload(ctx context.Context, folder string, file DataURL) (*Attachment, error)
	Delete(ctx context.Context, id string) error
}

// NewAttachmentStore builds the store selected by STORAGE_BACKEND.
func NewAttachmentStore(ctx context.Context, cfg config.Config) (AttachmentStore, error) {
	switch cfg.StorageBackend {
	case "", BackendCloudinary:
		return NewCloudinaryStore(cfg.CloudinaryURL)
	case BackendFirebase:
		return NewFirebaseStore(ctx, cfg.FirebaseCredentials, cfg.FirebaseBucket)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, cfg.StorageBackend)
	}
}
