package views

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/goliatone/go-regform/pkg/render"
	rendertemplate "github.com/goliatone/go-regform/pkg/render/template"
	gotemplate "github.com/goliatone/go-regform/pkg/render/template/gotemplate"
)

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	themes           *Themes
	themeName        string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithThemes sets the theme registry used to style pages.
func WithThemes(themes *Themes) Option {
	return func(cfg *config) {
		if themes != nil {
			cfg.themes = themes
		}
	}
}

// WithThemeName selects a registered theme by name.
func WithThemeName(name string) Option {
	return func(cfg *config) {
		cfg.themeName = name
	}
}

// siteGlobals is the page chrome shared by every template.
var siteGlobals = map[string]string{
	"name":    "Registration",
	"heading": "Registration Forms",
}

// Renderer draws landing and form pages as HTML documents.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	themes    *Themes
	themeName string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tpl"),
			gotemplate.WithGlobals(map[string]any{"site": siteGlobals}),
		)
		if err != nil {
			return nil, fmt.Errorf("views: configure template renderer: %w", err)
		}
		renderer = engine
	}

	themes := cfg.themes
	if themes == nil {
		var err error
		themes, err = NewThemes(VariantLight)
		if err != nil {
			return nil, err
		}
	}

	return &Renderer{templates: renderer, themes: themes, themeName: cfg.themeName}, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, page render.Page, options render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("views: template renderer is nil")
	}

	selection, err := r.themes.Select(r.themeName, options.Theme)
	if err != nil {
		return nil, err
	}
	cfg := RendererConfig(selection)

	name := cfg.Partials["page."+string(page.Kind)]
	if name == "" {
		name = string(page.Kind)
	}

	page = render.ApplyOptions(page, options)
	data := map[string]any{
		"page": page,
		"form": page.Form,
		"theme": map[string]any{
			"name":    cfg.Theme,
			"variant": cfg.Variant,
			"style":   CSSVarsStyle(cfg.CSSVars),
		},
		"assets": map[string]string{
			"stylesheet": cfg.AssetURL("stylesheet"),
			"script":     cfg.AssetURL("script"),
		},
	}

	result, err := r.templates.RenderTemplate(name, data)
	if err != nil {
		return nil, fmt.Errorf("views: render %s page: %w", page.Kind, err)
	}
	return []byte(result), nil
}
