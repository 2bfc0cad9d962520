package render

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONRenderer emits the page model as indented JSON so scripted clients can
// read the same state the HTML view shows.
type JSONRenderer struct{}

var _ Renderer = JSONRenderer{}

func (JSONRenderer) Name() string { return "json" }

func (JSONRenderer) ContentType() string { return "application/json; charset=utf-8" }

func (JSONRenderer) Render(_ context.Context, page Page, options RenderOptions) ([]byte, error) {
	out, err := json.MarshalIndent(ApplyOptions(page, options), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: marshal page: %w", err)
	}
	return append(out, '\n'), nil
}
