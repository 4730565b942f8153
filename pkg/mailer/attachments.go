package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrymomot/mailhelper/pkg/storage"
)

// ObjectScheme prefixes attachment paths that name object storage keys.
const ObjectScheme = "s3://"

// AttachmentLoader reads the attachment stored at path.
type AttachmentLoader interface {
	Load(ctx context.Context, path string) (Attachment, error)
}

// ObjectReader reads objects by key. *storage.S3Storage implements it.
type ObjectReader interface {
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// FileLoader loads attachments from the local filesystem and,
// when Objects is set, from object storage for s3:// paths.
type FileLoader struct {
	Objects ObjectReader
	MaxSize int64 // Zero means unlimited
}

// Load implements AttachmentLoader.
func (l FileLoader) Load(ctx context.Context, p string) (Attachment, error) {
	if key, ok := strings.CutPrefix(p, ObjectScheme); ok {
		return l.loadObject(ctx, p, key)
	}
	return l.loadFile(p)
}

func (l FileLoader) loadFile(p string) (Attachment, error) {
	f, err := os.Open(p)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: %s: %v", ErrAttachmentFailed, p, err)
	}
	defer f.Close()

	data, err := l.read(f)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: %s: %v", ErrAttachmentFailed, p, err)
	}

	name := filepath.Base(p)
	return Attachment{
		Path:        p,
		Filename:    name,
		ContentType: storage.DetectContentType(name, data),
		Content:     data,
	}, nil
}

func (l FileLoader) loadObject(ctx context.Context, p, key string) (Attachment, error) {
	if l.Objects == nil {
		return Attachment{}, fmt.Errorf("%w: %s: no object storage configured", ErrAttachmentFailed, p)
	}

	rc, err := l.Objects.Get(ctx, key)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: %s: %v", ErrAttachmentFailed, p, err)
	}
	defer rc.Close()

	data, err := l.read(rc)
	if err != nil {
		return Attachment{}, fmt.Errorf("%w: %s: %v", ErrAttachmentFailed, p, err)
	}

	name := path.Base(key)
	return Attachment{
		Path:        p,
		Filename:    name,
		ContentType: storage.DetectContentType(name, data),
		Content:     data,
	}, nil
}

var errAttachmentTooLarge = errors.New("attachment exceeds size limit")

func (l FileLoader) read(r io.Reader) ([]byte, error) {
	if l.MaxSize <= 0 {
		return io.ReadAll(r)
	}
	data, err := io.ReadAll(io.LimitReader(r, l.MaxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > l.MaxSize {
		return nil, errAttachmentTooLarge
	}
	return data, nil
}

// loadAttachments loads every path. Unreadable paths are logged and skipped.
func (m *Mailer) loadAttachments(ctx context.Context, paths []string) []Attachment {
	if len(paths) == 0 {
		return nil
	}

	out := make([]Attachment, 0, len(paths))
	for _, p := range paths {
		a, err := m.attachments.Load(ctx, p)
		if err != nil {
			m.logger.WarnContext(ctx, "skipping attachment", "path", p, "error", err)
			continue
		}
		out = append(out, a)
	}
	return out
}
