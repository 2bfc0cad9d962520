package views

import (
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
)

const (
	DefaultThemeName = "regform"
	VariantLight     = "light"
	VariantDark      = "dark"
)

// DefaultManifest returns the built-in theme with a light base and a dark
// variant. Token keys become CSS custom properties prefixed with "--".
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":          "#2563eb",
			"brand-contrast": "#ffffff",
			"surface":        "#ffffff",
			"text":           "#1f2933",
			"border":         "#cbd2d9",
			"danger":         "#dc2626",
			"radius":         "6px",
			"font-family":    "system-ui, sans-serif",
		},
		Templates: map[string]string{
			"page.landing": "landing.tpl",
			"page.form":    "form.tpl",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": StylesheetName,
				"script":     ScriptName,
			},
		},
		Variants: map[string]theme.Variant{
			VariantDark: {
				Tokens: map[string]string{
					"brand":   "#60a5fa",
					"surface": "#111827",
					"text":    "#f3f4f6",
					"border":  "#374151",
					"danger":  "#f87171",
				},
			},
		},
	}
}

// Themes resolves registered manifests into renderer configuration. It
// satisfies theme.ThemeSelector.
type Themes struct {
	mu             sync.RWMutex
	registry       manifestRegistry
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Themes)(nil)

type manifestRegistry interface {
	Register(manifest *theme.Manifest) error
}

// NewThemes registers manifests, using the first one as the default theme.
// With no manifests the built-in DefaultManifest is used.
func NewThemes(defaultVariant string, manifests ...*theme.Manifest) (*Themes, error) {
	if len(manifests) == 0 {
		manifests = []*theme.Manifest{DefaultManifest()}
	}
	t := &Themes{
		registry:       theme.NewRegistry(),
		manifests:      make(map[string]*theme.Manifest, len(manifests)),
		defaultVariant: strings.TrimSpace(defaultVariant),
	}
	for _, manifest := range manifests {
		if err := t.Register(manifest); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Register adds a manifest. The first registered manifest becomes the default.
func (t *Themes) Register(manifest *theme.Manifest) error {
	if manifest == nil || strings.TrimSpace(manifest.Name) == "" {
		return fmt.Errorf("views: theme manifest name is required")
	}
	if err := t.registry.Register(manifest); err != nil {
		return fmt.Errorf("views: register theme %q: %w", manifest.Name, err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.manifests[manifest.Name] = manifest
	if t.defaultTheme == "" {
		t.defaultTheme = manifest.Name
	}
	return nil
}

// Select resolves name and variant, falling back to the defaults when empty.
// Unknown variants resolve to the base manifest.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	name = strings.TrimSpace(name)
	if name == "" {
		name = t.defaultTheme
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, fmt.Errorf("views: theme %q not registered", name)
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = t.defaultVariant
	}
	if _, ok := manifest.Variants[variant]; !ok {
		variant = ""
	}

	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// RendererConfig flattens a selection into tokens, template overrides, CSS
// variables, and an asset resolver. Variant entries override the base manifest.
func RendererConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest

	tokens := copyStringMap(manifest.Tokens)
	partials := copyStringMap(manifest.Templates)
	files := copyStringMap(manifest.Assets.Files)
	prefix := manifest.Assets.Prefix
	if variant, ok := manifest.Variants[selection.Variant]; ok {
		tokens = mergeStringMaps(tokens, variant.Tokens)
		partials = mergeStringMaps(partials, variant.Templates)
		files = mergeStringMaps(files, variant.Assets.Files)
		if variant.Assets.Prefix != "" {
			prefix = variant.Assets.Prefix
		}
	}

	cssVars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		cssVars["--"+key] = value
	}

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Tokens:   tokens,
		Partials: partials,
		CSSVars:  cssVars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok || file == "" {
				return ""
			}
			if strings.HasPrefix(file, "/") || strings.Contains(file, "://") {
				return file
			}
			return path.Join("/", prefix, file)
		},
	}
}

// CSSVarsStyle renders vars as a :root rule with keys sorted.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(":root{")
	for _, key := range keys {
		value := strings.NewReplacer("<", "", ">", "", "{", "", "}", "", ";", "").Replace(vars[key])
		b.WriteString(key)
		b.WriteString(":")
		b.WriteString(value)
		b.WriteString(";")
	}
	b.WriteString("}")
	return b.String()
}

func copyStringMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}

func mergeStringMaps(base, override map[string]string) map[string]string {
	for key, value := range override {
		base[key] = value
	}
	return base
}
