package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"go.uber.org/zap"
)

// CloudinaryStore implements ImageStore on Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	logger *zap.Logger
}

// NewCloudinaryStore creates a new CloudinaryStore.
func NewCloudinaryStore(cld *cloudinary.Cloudinary, logger *zap.Logger) *CloudinaryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudinaryStore{cld: cld, logger: logger}
}

// UploadImage uploads the image into folder and returns the https delivery URL.
func (s *CloudinaryStore) UploadImage(ctx context.Context, file io.Reader, folder string) (string, error) {
	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: folder})
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to upload image: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("CloudinaryStore: no URL returned")
	}
	s.logger.Debug("Image uploaded", zap.String("publicId", result.PublicID))
	return result.SecureURL, nil
}

// DeleteImage destroys the asset behind a Cloudinary delivery URL.
func (s *CloudinaryStore) DeleteImage(ctx context.Context, imageURL string) error {
	publicID, err := PublicIDFromURL(imageURL)
	if err != nil {
		return err
	}
	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("CloudinaryStore: failed to delete image: %w", err)
	}
	return nil
}

var versionSegment = regexp.MustCompile(`^v\d+$`)

// PublicIDFromURL extracts the asset public id from a delivery URL such as
// https://res.cloudinary.com/demo/image/upload/v1712/tours/abc.jpg -> tours/abc.
func PublicIDFromURL(imageURL string) (string, error) {
	u, err := url.Parse(imageURL)
	if err != nil {
		return "", fmt.Errorf("invalid image url: %w", err)
	}
	_, rest, found := strings.Cut(u.Path, "/upload/")
	if !found || rest == "" {
		return "", fmt.Errorf("not a cloudinary delivery url: %s", imageURL)
	}
	segments := strings.Split(rest, "/")
	if len(segments) > 1 && versionSegment.MatchString(segments[0]) {
		segments = segments[1:]
	}
	id := strings.Join(segments, "/")
	return strings.TrimSuffix(id, path.Ext(id)), nil
}
