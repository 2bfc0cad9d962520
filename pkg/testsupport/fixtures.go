package testsupport

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-regform/pkg/model"
)

// PNGHeader is the PNG signature followed by the start of an IHDR chunk. It is
// enough for content sniffing.
var PNGHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

// ValidValues returns a record that satisfies every registration rule.
func ValidValues() model.FormValues {
	return model.FormValues{
		Name:            "Alice",
		Age:             "30",
		Email:           "a@b.com",
		Password:        "Abcdef1!",
		PasswordConfirm: "Abcdef1!",
		Gender:          "female",
		AcceptTerms:     true,
		Country:         "France",
	}
}

// ValidForm returns ValidValues encoded as a urlencoded form body.
func ValidForm() url.Values {
	values := ValidValues()
	form := url.Values{}
	for _, field := range model.Fields {
		if field == model.FieldAcceptTerms {
			form.Set(string(field), "on")
			continue
		}
		form.Set(string(field), values.String(field))
	}
	return form
}

// Countries is a short reference list for handler and view tests.
func Countries() []model.Country {
	return []model.Country{
		{ID: "ca", Name: "Canada"},
		{ID: "fr", Name: "France"},
		{ID: "jp", Name: "Japan"},
	}
}

// PNGPicture returns a picture carrying PNGHeader.
func PNGPicture(name string) *model.Picture {
	return &model.Picture{
		Filename:    name,
		ContentType: "image/png",
		Data:        append([]byte(nil), PNGHeader...),
	}
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// WriteMaybeGolden updates a golden file when UPDATE_GOLDENS is set. Returns
// true if the golden was written (test should exit early).
func WriteMaybeGolden(t *testing.T, path string, data []byte) bool {
	t.Helper()
	if os.Getenv("UPDATE_GOLDENS") == "" {
		return false
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
	return true
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
