package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kamusis/primview/internal/detail"
	"github.com/kamusis/primview/internal/query"
)

const pinnedLabel = "README.md"

func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	header := titleStyle.Render("primview") + "  " + dimStyle.Render(m.ctl.Meta())

	listW := m.listWidth()
	bodyH := m.bodyHeight()
	list := paneStyle.
		Width(listW - 2).
		Height(bodyH - 2).
		Render(m.listView(listW-4, m.listHeight()))
	pane := paneStyle.
		Width(max(10, m.width-listW-2)).
		Height(bodyH - 2).
		Render(m.pane.View())

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, pane)
	status := statusBarStyle.Width(m.width).Render(m.statusLine())
	return lipgloss.JoinVertical(lipgloss.Left, header, m.input.View(), body, status)
}

func (m Model) statusLine() string {
	if m.input.Focused() {
		return "type to filter  Enter:done  Esc:clear  ↑/↓:move"
	}
	return "j/k:move  /:search  g/G:top/bottom  ctrl+d/u:scroll details  q:quit"
}

// listView renders rows [offset, offset+h) of pinned entry + capped view.
func (m Model) listView(w, h int) string {
	visible := m.ctl.Visible()
	cur := m.ctl.Index()
	total := len(visible) + 1

	lines := make([]string, 0, h)
	for row := m.offset; row < total && len(lines) < h; row++ {
		lines = append(lines, m.listRow(row, visible, w, row == cur))
	}
	return strings.Join(lines, "\n")
}

func (m Model) listRow(row int, visible []int, w int, selected bool) string {
	if row == 0 {
		label := truncate(pinnedLabel, w-2)
		if selected {
			return selectedStyle.Render("> " + label)
		}
		return "  " + pinnedStyle.Render(label)
	}

	r := m.store.At(visible[row-1])
	id := r.PrimitiveID
	name := truncate(r.PrimitiveName, max(1, w-len(id)-3))
	if selected {
		return selectedStyle.Render(fmt.Sprintf("> %s %s", id, name))
	}
	return fmt.Sprintf("  %s %s", dimStyle.Render(id), query.Highlight(name, m.terms, func(s string) string { return markStyle.Render(s) }))
}

// detailContent renders the right-hand pane for the current row.
func (m Model) detailContent(w int) string {
	wrap := lipgloss.NewStyle().Width(max(10, w))
	if _, ok := m.ctl.Selected(); !ok {
		return wrap.Render(m.readme)
	}

	d := m.detail
	r := d.Record
	var b strings.Builder
	b.WriteString(sectionStyle.Render(orDash(r.PrimitiveName)))
	b.WriteString("\n\n")
	field(&b, "Primitive", orDash(r.PrimitiveID))
	field(&b, "Composite", fmt.Sprintf("%s (%s)", orDash(r.CompositeName), orDash(r.CompositeID)))

	b.WriteString("\n")
	switch {
	case r.PrimitiveID == "":
		b.WriteString(dimStyle.Render("No image or 3D model for this record."))
		b.WriteString("\n")
	case m.loading:
		b.WriteString(dimStyle.Render("Resolving assets..."))
		b.WriteString("\n")
	default:
		assetLine(&b, "Image", d.Image)
		assetLine(&b, "3D model", d.Model)
	}

	for _, s := range d.Sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.Title))
		b.WriteString("\n")
		for _, e := range s.Entries {
			field(&b, e.Label, e.Value)
		}
	}
	return wrap.Render(b.String())
}

func field(b *strings.Builder, label, value string) {
	b.WriteString(labelStyle.Render(label + ": "))
	b.WriteString(value)
	b.WriteString("\n")
}

func assetLine(b *strings.Builder, label string, a detail.Asset) {
	if a.Available {
		field(b, label, okStyle.Render("✓ "+a.Path))
		return
	}
	field(b, label, missStyle.Render("- not available"))
}

func truncate(s string, w int) string {
	r := []rune(s)
	if w <= 0 || len(r) <= w {
		return s
	}
	if w == 1 {
		return "…"
	}
	return string(r[:w-1]) + "…"
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
