package template

import (
	"io"
)

// TemplateRenderer is the engine contract the views rely on. Implementations
// return the rendered output and additionally copy it into every writer in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
}
