// Package asset picks product images from the local file system.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
)

var _ port.ImagePicker = Picker{}

// Picker reads images from disk. URIs may be plain paths or file:// URLs.
type Picker struct{}

func (Picker) PickImage(ctx context.Context, uri string) (domain.ImageAsset, error) {
	const op = "Picker.PickImage"

	if err := ctx.Err(); err != nil {
		return domain.ImageAsset{}, fmt.Errorf("%s: %w", op, err)
	}

	path := strings.TrimPrefix(uri, "file://")
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return domain.ImageAsset{}, fmt.Errorf("%s: %w", op, domain.ErrImagePermission)
		}
		return domain.ImageAsset{}, fmt.Errorf("%s: %w", op, err)
	}

	mtype := mimetype.Detect(content)
	if !isImage(mtype) {
		return domain.ImageAsset{}, fmt.Errorf(
			"%s: %w: %s", op, domain.ErrNotAnImage, mtype.String(),
		)
	}

	return domain.ImageAsset{
		URI:      uri,
		FileName: filepath.Base(path),
		MimeType: mtype.String(),
		Content:  content,
	}, nil
}

// isImage reports whether m or one of its parents is an image type.
func isImage(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			return true
		}
	}
	return false
}
