// Package formdata accumulates named text fields and at most one binary
// attachment and encodes them as a multipart/form-data body.
package formdata

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var (
	ErrAttachmentSet  = errors.New("form already has an attachment")
	ErrEmptyFieldName = errors.New("field name is empty")
)

type Field struct {
	Name  string
	Value string
}

type Attachment struct {
	Field       string
	FileName    string
	ContentType string
	Content     []byte
}

type Form struct {
	fields     []Field
	attachment *Attachment
}

func New() *Form {
	return &Form{}
}

// Add appends a text field. Repeated names are kept in order.
func (f *Form) Add(name, value string) *Form {
	f.fields = append(f.fields, Field{name, value})
	return f
}

// AddOptional appends the field only when value is not empty.
func (f *Form) AddOptional(name, value string) *Form {
	if value == "" {
		return f
	}
	return f.Add(name, value)
}

func (f *Form) Attach(a Attachment) error {
	const op = "Form.Attach"
	if a.Field == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyFieldName)
	}
	if f.attachment != nil {
		return fmt.Errorf("%s: %w", op, ErrAttachmentSet)
	}
	f.attachment = &a
	return nil
}

func (f *Form) Fields() []Field {
	out := make([]Field, len(f.fields))
	copy(out, f.fields)
	return out
}

// Get returns the first value of the named field.
func (f *Form) Get(name string) (string, bool) {
	for _, fd := range f.fields {
		if fd.Name == name {
			return fd.Value, true
		}
	}
	return "", false
}

func (f *Form) Attachment() (Attachment, bool) {
	if f.attachment == nil {
		return Attachment{}, false
	}
	return *f.attachment, true
}

// Encode writes the form as multipart/form-data and returns the body with
// its Content-Type header value (boundary included).
func (f *Form) Encode() (io.Reader, string, error) {
	const op = "Form.Encode"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, fd := range f.fields {
		if fd.Name == "" {
			return nil, "", fmt.Errorf("%s: %w", op, ErrEmptyFieldName)
		}
		if err := w.WriteField(fd.Name, fd.Value); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if a := f.attachment; a != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(
			`form-data; name="%s"; filename="%s"`,
			escapeQuotes(a.Field), escapeQuotes(a.FileName),
		))
		h.Set("Content-Type", a.ContentType)
		pw, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
		if _, err := pw.Write(a.Content); err != nil {
			return nil, "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
