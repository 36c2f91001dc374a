// Package docs renders the command reference that goes into README.md.
package docs

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/keshon/commandbot/internal/command"
	"github.com/keshon/commandbot/internal/config"
)

// DefaultTemplate is used when no README template is given.
const DefaultTemplate = "# Commands\n\n{{.CommandSections}}"

// CommandSections lists every command grouped by category, marking
// which surfaces each one answers on.
func CommandSections(reg *command.Registry, prefix string) string {
	cats := reg.Categories()
	config.SortCategories(cats)

	var buf bytes.Buffer
	for i, cat := range cats {
		if i > 0 {
			buf.WriteString("\n")
		}
		fmt.Fprintf(&buf, "### %s\n\n", cat)
		for _, c := range reg.ByCategory(cat) {
			fmt.Fprintf(&buf, "- %s - %s", usage(c, prefix), c.Description())
			if aliases := c.Aliases(); len(aliases) > 0 {
				fmt.Fprintf(&buf, " (aliases: %s)", strings.Join(aliases, ", "))
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

func usage(c command.Command, prefix string) string {
	text, slash := command.Surfaces(c)
	var forms []string
	if text {
		forms = append(forms, fmt.Sprintf("`%s%s`", prefix, c.Name()))
	}
	if slash {
		forms = append(forms, fmt.Sprintf("`/%s`", c.Name()))
	}
	return strings.Join(forms, " ")
}

// Render executes tmpl with the command sections as .CommandSections.
func Render(w io.Writer, tmpl string, reg *command.Registry, prefix string) error {
	if tmpl == "" {
		tmpl = DefaultTemplate
	}
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parsing readme template: %w", err)
	}
	data := struct {
		CommandSections string
	}{
		CommandSections: CommandSections(reg, prefix),
	}
	return t.Execute(w, data)
}
