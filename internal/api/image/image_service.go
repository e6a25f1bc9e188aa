package image

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/kristinefung/personal-website-sub000/internal/types"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// ImageStore persists uploaded images on the local filesystem and
// serves them back. All paths are confined to the configured base
// directory; any path that resolves outside it is rejected with
// types.ErrBadRequest.
type ImageStore struct {
	logger  *slog.Logger
	baseDir string
}

func NewImageStore(baseDir string, logger *slog.Logger) (*ImageStore, error) {
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve uploads dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &ImageStore{
		logger:  logger,
		baseDir: abs,
	}, nil
}

// Save writes the uploaded content under a timestamp-prefixed,
// sanitized version of the client filename and returns the relative
// path to serve it from.
func (s *ImageStore) Save(filename string, src io.Reader) (string, error) {
	name := sanitizeFilename(filename)
	if name == "" {
		return "", fmt.Errorf("empty filename after sanitization: %w", types.ErrBadRequest)
	}

	stored := fmt.Sprintf("%d_%s", time.Now().UnixNano(), name)
	dst, err := os.Create(filepath.Join(s.baseDir, stored))
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	s.logger.Info("Image stored", slog.String("file", stored))
	return stored, nil
}

// Open resolves a requested path inside the base directory and opens
// it. Escape attempts return types.ErrBadRequest, missing files
// types.ErrNotFound.
func (s *ImageStore) Open(requested string) (*os.File, error) {
	clean := filepath.Clean(strings.ReplaceAll(requested, "\\", "/"))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
		return nil, fmt.Errorf("path escapes uploads dir: %w", types.ErrBadRequest)
	}

	full := filepath.Join(s.baseDir, clean)
	if !strings.HasPrefix(full, s.baseDir+string(os.PathSeparator)) {
		return nil, fmt.Errorf("path escapes uploads dir: %w", types.ErrBadRequest)
	}

	f, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to open image file: %w", err)
	}

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		f.Close()
		return nil, types.ErrNotFound
	}
	return f, nil
}

// ContentType maps a filename extension to its MIME type, falling back
// to application/octet-stream.
func ContentType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".svg":
		return "image/svg+xml"
	default:
		return "application/octet-stream"
	}
}

// sanitizeFilename keeps only the base name and replaces anything
// outside [a-zA-Z0-9._-] with underscores.
func sanitizeFilename(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "." || base == ".." || base == "/" {
		return ""
	}
	return unsafeChars.ReplaceAllString(base, "_")
}
