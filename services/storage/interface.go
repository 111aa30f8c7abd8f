package storage

import (
	"context"
	"io"
)

// ImageStore holds tour images and hands out their public URLs.
type ImageStore interface {
	// UploadImage stores the image under folder and returns its secure URL.
	UploadImage(ctx context.Context, file io.Reader, folder string) (string, error)
	// DeleteImage removes an image previously returned by UploadImage.
	DeleteImage(ctx context.Context, imageURL string) error
}
