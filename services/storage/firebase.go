package storage

import (
	"context"
	"fmt"
	"net/url"
	"path"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

const BackendFirebase = "firebase"

// FirebaseStore uploads attachments to a Firebase Storage bucket.
type FirebaseStore struct {
	client *gcs.Client
	bucket string
}

func NewFirebaseStore(ctx context.Context, credentialsFile, bucket string) (*FirebaseStore, error) {
	if bucket == "" {
		return nil, fmt.Errorf("firebase storage bucket is not configured")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &FirebaseStore{client: client, bucket: bucket}, nil
}

func (s *FirebaseStore) Upload(ctx context.Context, folder string, file DataURL) (*Attachment, error) {
	objectPath := path.Join(folder, uuid.NewString()+file.Extension())
	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = file.ContentType
	w.ACL = []gcs.ACLRule{{Entity: gcs.AllUsers, Role: gcs.RoleReader}}

	if _, err := w.Write(file.Data); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to write attachment: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close writer: %w", err)
	}

	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media", s.bucket, url.QueryEscape(objectPath))
	return &Attachment{ID: objectPath, URL: publicURL}, nil
}

func (s *FirebaseStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Bucket(s.bucket).Object(id).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete attachment: %w", err)
	}
	return nil
}
