// Package picture turns an uploaded file into a displayable data URL.
package picture

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"slices"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/goliatone/go-regform/pkg/model"
)

var (
	// ErrEmpty is returned when a picture carries no bytes.
	ErrEmpty = errors.New("picture: empty file")
	// ErrTooLarge is returned by an enabled Policy for oversized files.
	ErrTooLarge = errors.New("picture: file too large")
	// ErrUnsupportedType is returned by an enabled Policy for disallowed types.
	ErrUnsupportedType = errors.New("picture: unsupported type")
)

// DefaultAccept mirrors the accept attribute of the upload input.
var DefaultAccept = []string{"image/png", "image/jpeg"}

// Policy holds size and type constraints for uploads. It is disabled unless
// Enabled is set, so Check accepts anything by default.
type Policy struct {
	Enabled  bool
	MaxBytes int
	Accept   []string
}

// DefaultPolicy returns the disabled default policy with the constraints the
// upload input advertises.
func DefaultPolicy() Policy {
	return Policy{
		MaxBytes: 5 << 20,
		Accept:   slices.Clone(DefaultAccept),
	}
}

// Check validates pic against the policy.
func (p Policy) Check(pic *model.Picture) error {
	if !p.Enabled || pic == nil {
		return nil
	}
	if p.MaxBytes > 0 && len(pic.Data) > p.MaxBytes {
		return fmt.Errorf("%w: %d bytes", ErrTooLarge, len(pic.Data))
	}
	if len(p.Accept) > 0 {
		ct := DetectType(pic)
		if !slices.Contains(p.Accept, ct) {
			return fmt.Errorf("%w: %s", ErrUnsupportedType, ct)
		}
	}
	return nil
}

// DetectType returns the picture's content type, sniffing the bytes when
// none was declared.
func DetectType(pic *model.Picture) string {
	if pic == nil {
		return ""
	}
	ct := strings.TrimSpace(pic.ContentType)
	if ct == "" || ct == "application/octet-stream" {
		ct = mimetype.Detect(pic.Data).String()
	}
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = strings.TrimSpace(ct[:idx])
	}
	return ct
}

// Encode renders pic as a data URL suitable for an img src attribute.
func Encode(pic *model.Picture) (string, error) {
	if pic == nil || len(pic.Data) == 0 {
		return "", ErrEmpty
	}
	return "data:" + DetectType(pic) + ";base64," + base64.StdEncoding.EncodeToString(pic.Data), nil
}

// Read builds a Picture from r, reading at most limit bytes when limit > 0.
func Read(filename, contentType string, r io.Reader, limit int64) (*model.Picture, error) {
	if r == nil {
		return nil, fmt.Errorf("picture: missing reader")
	}
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("picture: read %q: %w", filename, err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: over %d bytes", ErrTooLarge, limit)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	return &model.Picture{
		Filename:    filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

// FromMultipart reads an uploaded multipart file.
func FromMultipart(header *multipart.FileHeader, limit int64) (*model.Picture, error) {
	if header == nil {
		return nil, fmt.Errorf("picture: missing file header")
	}
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("picture: open %q: %w", header.Filename, err)
	}
	defer func() { _ = file.Close() }()
	return Read(header.Filename, header.Header.Get("Content-Type"), file, limit)
}
