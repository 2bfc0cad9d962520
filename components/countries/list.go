package countries

import (
	"embed"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-regform/pkg/model"
)

//go:embed data/countries.yaml
var dataFS embed.FS

const defaultListPath = "data/countries.yaml"

var (
	defaultOnce      sync.Once
	defaultCountries []model.Country
	defaultErr       error
)

// DefaultCountries returns a copy of the embedded country list.
func DefaultCountries() ([]model.Country, error) {
	defaultOnce.Do(func() {
		f, err := dataFS.Open(defaultListPath)
		if err != nil {
			defaultErr = err
			return
		}
		defer func() { _ = f.Close() }()

		list, err := LoadCountries(f)
		if err != nil {
			defaultErr = err
			return
		}
		defaultCountries = list
	})

	if defaultErr != nil {
		return nil, defaultErr
	}
	return append([]model.Country{}, defaultCountries...), nil
}

// LoadCountries decodes a YAML sequence of {id, name} entries. Entries
// without a name are skipped, duplicate ids keep the first occurrence, and a
// missing id defaults to the lowercased name. Order is preserved.
func LoadCountries(r io.Reader) ([]model.Country, error) {
	if r == nil {
		return nil, fmt.Errorf("countries: missing reader")
	}

	var raw []model.Country
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if err == io.EOF {
			return []model.Country{}, nil
		}
		return nil, fmt.Errorf("countries: decode list: %w", err)
	}

	out := make([]model.Country, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, entry := range raw {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		id := strings.TrimSpace(entry.ID)
		if id == "" {
			id = strings.ToLower(name)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, model.Country{ID: id, Name: name})
	}
	return out, nil
}

// LoadFile reads a country list from a YAML file on disk.
func LoadFile(path string) ([]model.Country, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("countries: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return LoadCountries(f)
}
