package storage

import (
	"context"
	"errors"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/notehub/notehub/internal/utils"
)

// GridFSStorage keeps blobs in MongoDB GridFS. The object name doubles as the
// GridFS filename, which is what Open and Delete resolve.
type GridFSStorage struct {
	bucket *gridfs.Bucket
}

func NewGridFSStorage(db *mongo.Database) (*GridFSStorage, error) {
	b, err := gridfs.NewBucket(db)
	if err != nil {
		return nil, err
	}
	return &GridFSStorage{bucket: b}, nil
}

func (s *GridFSStorage) Upload(ctx context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetWriteDeadline(dl)
	}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := s.bucket.UploadFromStream(objectName, r, opts); err != nil {
		return "", err
	}
	return objectName, nil
}

func (s *GridFSStorage) Open(ctx context.Context, handle string) (io.ReadCloser, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = s.bucket.SetReadDeadline(dl)
	}
	ds, err := s.bucket.OpenDownloadStreamByName(handle)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (s *GridFSStorage) Delete(ctx context.Context, handle string) error {
	cursor, err := s.bucket.Find(bson.M{"filename": handle})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	found := false
	for cursor.Next(ctx) {
		var file struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cursor.Decode(&file); err != nil {
			return err
		}
		if err := s.bucket.Delete(file.ID); err != nil {
			return err
		}
		found = true
	}
	if err := cursor.Err(); err != nil {
		return err
	}
	if !found {
		return utils.ErrNotFound
	}
	return nil
}
