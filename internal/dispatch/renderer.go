package dispatch

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/osteele/liquid"
)

// Renderer interpolates per-recipient tokens into newsletter content using
// the Liquid engine. Operator-facing templates use the short {name} token
// form; they are rewritten to Liquid syntax before parsing. Parsed templates
// are cached since a bulk send renders the same source once per recipient.
type Renderer struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewRenderer creates a renderer with the default engine.
func NewRenderer() *Renderer {
	return &Renderer{engine: liquid.NewEngine()}
}

var shortTokenPattern = regexp.MustCompile(`\{([a-zA-Z_]+)\}`)

// Render interpolates vars into src. Unknown tokens render as empty strings
// rather than failing the whole send.
func (r *Renderer) Render(src string, vars map[string]any) (string, error) {
	liquidSrc := shortTokenPattern.ReplaceAllString(src, "{{ $1 }}")

	var tmpl *liquid.Template
	if cached, ok := r.cache.Load(liquidSrc); ok {
		tmpl = cached.(*liquid.Template)
	} else {
		parsed, err := r.engine.ParseString(liquidSrc)
		if err != nil {
			return "", fmt.Errorf("parse template: %w", err)
		}
		r.cache.Store(liquidSrc, parsed)
		tmpl = parsed
	}

	out, err := tmpl.Render(vars)
	if err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return string(out), nil
}
