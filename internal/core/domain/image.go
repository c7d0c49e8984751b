package domain

import "strings"

const (
	DefaultImageName = "upload.jpg"
	DefaultImageType = "image/jpeg"
)

// ImageAsset is a picked image waiting to be uploaded with a product form.
type ImageAsset struct {
	URI      string
	FileName string
	MimeType string
	Content  []byte
}

// Name is the explicit file name, else the last segment of URI, else
// DefaultImageName.
func (a ImageAsset) Name() string {
	if a.FileName != "" {
		return a.FileName
	}
	if i := strings.LastIndex(a.URI, "/"); i >= 0 {
		if seg := a.URI[i+1:]; seg != "" {
			return seg
		}
		return DefaultImageName
	}
	if a.URI != "" {
		return a.URI
	}
	return DefaultImageName
}

func (a ImageAsset) ContentType() string {
	if a.MimeType != "" {
		return a.MimeType
	}
	return DefaultImageType
}
