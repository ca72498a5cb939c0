package components

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	cerrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
)

var calloutTypes = map[string]string{
	"note":    "Note",
	"tip":     "Tip",
	"info":    "Info",
	"caution": "Caution",
	"warning": "Warning",
	"danger":  "Danger",
}

// Builtins returns the components every site can enable.
func Builtins() map[string]Factory {
	return map[string]Factory{
		"Callout": Callout,
		"Tabs":    Tabs,
		"TabItem": TabItem,
		"Details": Details,
		"Badge":   Badge,
		"Kbd":     Kbd,
	}
}

// Callout renders an admonition box. type is one of note, tip, info, caution, warning or danger.
func Callout(props Props, children templ.Component) (templ.Component, error) {
	kind := strings.ToLower(props.String("type"))
	if kind == "" {
		kind = "note"
	}
	label, ok := calloutTypes[kind]
	if !ok {
		return nil, &cerrors.InvalidPropsError{Component: "Callout", Prop: "type", Reason: fmt.Sprintf("must be one of note, tip, info, caution, warning, danger; got %q", kind)}
	}
	if t := props.String("title"); t != "" {
		label = t
	}
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<div class="callout callout--%s"><div class="callout__title">%s</div><div class="callout__body">`,
			kind, templ.EscapeString(label)); err != nil {
			return err
		}
		if err := renderChildren(ctx, w, children); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div></div>`)
		return err
	}), nil
}

// Tabs groups TabItem children.
func Tabs(props Props, children templ.Component) (templ.Component, error) {
	class := "tabs"
	if id := props.String("groupId"); id != "" {
		class += ` tabs--group-` + templ.EscapeString(id)
	}
	return wrap(`<div class="`+class+`" role="tablist">`, `</div>`, children), nil
}

// TabItem is one tab. value is required; label defaults to value.
func TabItem(props Props, children templ.Component) (templ.Component, error) {
	value := props.String("value")
	if value == "" {
		return nil, &cerrors.InvalidPropsError{Component: "TabItem", Prop: "value", Reason: "is required"}
	}
	label := props.String("label")
	if label == "" {
		label = value
	}
	selected := ""
	if props.Bool("default") {
		selected = ` aria-selected="true"`
	}
	open := fmt.Sprintf(`<div class="tab-item" role="tabpanel" data-value="%s" data-label="%s"%s>`,
		templ.EscapeString(value), templ.EscapeString(label), selected)
	return wrap(open, `</div>`, children), nil
}

// Details renders a collapsible section with a summary line.
func Details(props Props, children templ.Component) (templ.Component, error) {
	summary := props.String("summary")
	if summary == "" {
		summary = "Details"
	}
	open := `<details>`
	if props.Bool("open") {
		open = `<details open>`
	}
	return wrap(open+`<summary>`+templ.EscapeString(summary)+`</summary>`, `</details>`, children), nil
}

// Badge renders a short inline label from text or its children.
func Badge(props Props, children templ.Component) (templ.Component, error) {
	text := props.String("text")
	if text == "" && children == nil {
		return nil, &cerrors.InvalidPropsError{Component: "Badge", Prop: "text", Reason: "is required when the badge has no children"}
	}
	kind := props.String("type")
	if kind == "" {
		kind = "secondary"
	}
	open := `<span class="badge badge--` + templ.EscapeString(kind) + `">`
	if text != "" {
		return Raw(open + templ.EscapeString(text) + `</span>`), nil
	}
	return wrap(open, `</span>`, children), nil
}

// Kbd renders a keyboard key.
func Kbd(_ Props, children templ.Component) (templ.Component, error) {
	return wrap(`<kbd>`, `</kbd>`, children), nil
}

func wrap(open, closing string, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, open); err != nil {
			return err
		}
		if err := renderChildren(ctx, w, children); err != nil {
			return err
		}
		_, err := io.WriteString(w, closing)
		return err
	})
}

func renderChildren(ctx context.Context, w io.Writer, children templ.Component) error {
	if children == nil {
		return nil
	}
	return children.Render(ctx, w)
}
