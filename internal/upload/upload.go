// Package upload implements the local-filesystem blob store backing
// send_file_message/send_message's optional file attachment (spec §5
// resource policy, §6.4 POST /upload): a bounded multipart handler with a
// MIME allow-list, grounded on gin's c.FormFile handling and the teacher's
// config-validation error style (internal/config).
package upload

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mistcall/strangerchat/internal/logging"
	"go.uber.org/zap"
)

// ErrTooLarge is returned when a file exceeds the configured byte cap
// (spec §7: HTTP 413).
var ErrTooLarge = fmt.Errorf("file exceeds maximum upload size")

// ErrDisallowedMIME is returned when a file's content type isn't on the
// allow-list (spec §7: HTTP 400).
var ErrDisallowedMIME = fmt.Errorf("file type not allowed")

// Result describes a stored upload, shaped to become a chatstore
// FileDescriptor at the call site.
type Result struct {
	Name string
	URL  string
	MIME string
	Size int64
}

// Store writes uploaded files under a fixed directory, serving them back
// through the given URL prefix (mounted as a static route by the caller).
type Store struct {
	dir           string
	urlPrefix     string
	maxBytes      int64
	allowedPrefix []string
}

// NewStore creates a Store rooted at dir, creating it if necessary.
func NewStore(dir, urlPrefix string, maxBytes int64, allowedMIME []string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	return &Store{
		dir:           dir,
		urlPrefix:     strings.TrimSuffix(urlPrefix, "/"),
		maxBytes:      maxBytes,
		allowedPrefix: allowedMIME,
	}, nil
}

// Save validates and persists one multipart file, returning its public URL.
func (s *Store) Save(ctx context.Context, header *multipart.FileHeader) (Result, error) {
	if header.Size > s.maxBytes {
		return Result{}, ErrTooLarge
	}

	mime := header.Header.Get("Content-Type")
	if !s.mimeAllowed(mime) {
		logging.Warn(ctx, "rejected upload with disallowed mime",
			zap.String("mime", mime), zap.String("filename", header.Filename))
		return Result{}, ErrDisallowedMIME
	}

	src, err := header.Open()
	if err != nil {
		return Result{}, fmt.Errorf("opening upload: %w", err)
	}
	defer src.Close()

	ext := filepath.Ext(header.Filename)
	storedName := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	destPath := filepath.Join(s.dir, storedName)

	dest, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return Result{}, fmt.Errorf("creating destination file: %w", err)
	}
	defer dest.Close()

	written, err := io.CopyN(dest, src, s.maxBytes+1)
	if err != nil && err != io.EOF {
		os.Remove(destPath)
		return Result{}, fmt.Errorf("writing upload: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(destPath)
		return Result{}, ErrTooLarge
	}

	logging.Info(ctx, "stored upload",
		zap.String("stored_name", storedName), zap.Int64("size", written), zap.Time("at", time.Now()))

	return Result{
		Name: header.Filename,
		URL:  fmt.Sprintf("%s/%s", s.urlPrefix, storedName),
		MIME: mime,
		Size: written,
	}, nil
}

func (s *Store) mimeAllowed(mime string) bool {
	for _, prefix := range s.allowedPrefix {
		if strings.HasPrefix(mime, prefix) {
			return true
		}
		if mime == prefix {
			return true
		}
	}
	return false
}
