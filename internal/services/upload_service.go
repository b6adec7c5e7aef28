package services

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const MaxUploadBytes = 5 * 1024 * 1024

var (
	ErrImageTooLarge    = errors.New("image exceeds the 5 MB limit")
	ErrUnsupportedImage = errors.New("only jpeg, png and webp images are allowed")
)

// acceptedImageTypes maps sniffed content types to the extension the
// stored asset gets. The declared filename extension is ignored; only
// the payload bytes decide.
var acceptedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// UploadService stores admin-uploaded product images on disk and hands
// back the public URL they are served under.
type UploadService struct {
	dir       string
	publicDir string
}

// NewUploadService creates an UploadService writing into dir. publicDir
// is the URL prefix the assets are served from, e.g. "/assets".
func NewUploadService(dir, publicDir string) *UploadService {
	return &UploadService{
		dir:       dir,
		publicDir: publicDir,
	}
}

// Store validates and persists one image payload, returning its URL.
func (s *UploadService) Store(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty payload: %w", ErrUnsupportedImage)
	}
	if len(data) > MaxUploadBytes {
		return "", fmt.Errorf("%d bytes: %w", len(data), ErrImageTooLarge)
	}

	contentType := http.DetectContentType(data)
	ext, ok := acceptedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%s: %w", contentType, ErrUnsupportedImage)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}

	return s.publicDir + "/" + name, nil
}
