package storage

import (
	"context"
	"errors"
	"io"

	gcs "cloud.google.com/go/storage"

	"github.com/notehub/notehub/internal/utils"
)

type GCSStorage struct {
	client *gcs.Client
	bucket string
}

func NewGCSStorage(ctx context.Context, bucket string) (*GCSStorage, error) {
	c, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, err
	}
	return &GCSStorage{client: c, bucket: bucket}, nil
}

func (s *GCSStorage) Close() error { return s.client.Close() }

func (s *GCSStorage) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	obj := s.client.Bucket(s.bucket).Object(objectName)

	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	// Objects stay non-public; access control happens in the app, bytes are
	// streamed through it.
	return objectName, nil
}

func (s *GCSStorage) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	rc, err := s.client.Bucket(s.bucket).Object(handle).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, utils.ErrNotFound
	}
	return rc, err
}

func (s *GCSStorage) Delete(ctx context.Context, handle string) error {
	err := s.client.Bucket(s.bucket).Object(handle).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return utils.ErrNotFound
	}
	return err
}
