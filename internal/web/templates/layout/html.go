package layout

import (
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup to w, escaping text and attribute values. The first
// write error is kept and every later call becomes a no-op.
type HTML struct {
	w   io.Writer
	err error
}

// NewHTML returns an HTML writer for w
func NewHTML(w io.Writer) *HTML {
	return &HTML{w: w}
}

// Raw writes s unescaped
func (h *HTML) Raw(s string) *HTML {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

// Text writes s escaped for element content
func (h *HTML) Text(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Attr writes s escaped for a quoted attribute value
func (h *HTML) Attr(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Err returns the first write error
func (h *HTML) Err() error {
	return h.err
}
