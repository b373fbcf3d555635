// Package media stores project images. Every stored object lives under Prefix and is
// addressed by its slash separated path relative to the upload root.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/rpupo63/portfolio-backend/config"
)

const Prefix = "uploads/projects/"

var (
	ErrEmpty           = errors.New("uploaded file is empty")
	ErrTooLarge        = errors.New("uploaded file is too large")
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrInvalidPath     = errors.New("path is outside the upload directory")
)

// allowedTypes maps the sniffed MIME type to the extension used for the stored file.
var allowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Upload is an incoming image. Filename is informational only; the stored name is generated.
type Upload struct {
	Filename string
	Body     io.Reader
}

// Store persists images and reports the public URL for a stored path.
type Store interface {
	Save(ctx context.Context, up Upload) (string, error)
	Remove(ctx context.Context, p string) error
	URL(p string) string
}

// New builds the Store selected by MEDIA_BACKEND.
func New(ctx context.Context, s config.Settings) (Store, error) {
	switch s.MediaBackend {
	case "s3":
		return NewS3Store(ctx, s.S3Bucket, s.S3PublicURL, s.MaxUploadBytes)
	default:
		return NewLocalStore(s.UploadRoot, s.MaxUploadBytes), nil
	}
}

type image struct {
	data        []byte
	path        string
	contentType string
}

// prepare reads at most maxBytes, sniffs the content and picks the stored path.
func prepare(up Upload, maxBytes int64) (*image, error) {
	if up.Body == nil {
		return nil, ErrEmpty
	}
	data, err := io.ReadAll(io.LimitReader(up.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}

	mt := mimetype.Detect(data)
	ext, ok := allowedTypes[mt.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mt.String())
	}

	return &image{
		data:        data,
		path:        Prefix + "project_" + uuid.NewString() + "." + ext,
		contentType: mt.String(),
	}, nil
}

// cleanPath rejects anything that does not resolve to a file directly inside Prefix.
func cleanPath(p string) (string, error) {
	p = strings.TrimLeft(p, "/")
	cleaned := path.Clean(p)
	if cleaned != p || !strings.HasPrefix(cleaned, Prefix) {
		return "", ErrInvalidPath
	}
	name := strings.TrimPrefix(cleaned, Prefix)
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, `\`) {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

func newReader(img *image) io.ReadSeeker {
	return bytes.NewReader(img.data)
}
