package main

import (
	"fmt"
	"math"
	"strings"
)

// ──────────────────────────── Panels ────────────────────────────

func (m Model) renderEditorPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM Source"
	if m.path != "" {
		title += " · " + m.path
	}
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())
	if m.parseErr != nil {
		sb.WriteString("\n")
		sb.WriteString(errorStyle.Render(m.parseErr.Error()))
	}

	return editorStyle.Width(width).Height(height).Render(sb.String())
}

func (m Model) renderCanonicalPanel(width, height int) string {
	var sb strings.Builder

	title := "Canonical Form"
	if m.focus == focusRender {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	if m.parseErr != nil {
		sb.WriteString(dimStyle.Render("  (last good parse)"))
	}
	sb.WriteString("\n")
	sb.WriteString(m.canonical.View())

	return canonicalStyle.Width(width).Height(height).Render(sb.String())
}

// renderGatesPanel lists every gate definition with the gates its body
// calls directly.
func (m Model) renderGatesPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Gate Calls"))
	sb.WriteString("\n")

	if len(m.gates) == 0 {
		sb.WriteString(dimStyle.Render("no gate definitions"))
	}
	for _, g := range m.gates {
		sb.WriteString(gateStyle.Render(g.name))
		if len(g.params) > 0 {
			sb.WriteString(dimStyle.Render("(" + strings.Join(g.params, ",") + ")"))
		}
		sb.WriteString(" → ")
		if len(g.calls) == 0 {
			sb.WriteString(dimStyle.Render("primitives only"))
		} else {
			sb.WriteString(strings.Join(g.calls, " "))
		}
		sb.WriteString("\n")
	}

	return gatesStyle.Width(width).Height(height).Render(sb.String())
}

// renderProbPanel shows P(1) per qubit of the last run as bars.
func (m Model) renderProbPanel(width, height int) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Probabilities"))
	sb.WriteString("\n")

	switch {
	case m.runErr != nil:
		sb.WriteString(errorStyle.Render(m.runErr.Error()))
	case m.result == nil:
		sb.WriteString(dimStyle.Render("^R to unroll and run"))
	default:
		probs := m.result.State.QubitProbabilities()
		for _, reg := range m.circuit.Qregs {
			for i := 0; i < reg.Size; i++ {
				p := probs[reg.Offset+i].Prob1
				label := fmt.Sprintf("%s[%d]", reg.Name, i)
				fmt.Fprintf(&sb, "%s %s %.3f\n", qubitLabelStyle.Render(fmt.Sprintf("%-6s", label)), probBar(p, probBarW), p)
			}
		}
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%d applied, %d skipped", m.result.Applied, m.result.Skipped)))
	}

	return probStyle.Width(width).Height(height).Render(sb.String())
}

func probBar(p float64, width int) string {
	filled := int(math.Round(p * float64(width)))
	filled = min(max(filled, 0), width)
	return barStyle.Render(strings.Repeat("█", filled)) + dimStyle.Render(strings.Repeat("░", width-filled))
}

func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(activeStyle.Render("Explore: "))
	sb.WriteString("Tab Switch focus  ↑↓ Scroll  f Canonicalize  a Operator")
	sb.WriteString("\n")
	sb.WriteString(activeStyle.Render("Actions: "))
	sb.WriteString("^R Run  ^S Save  q/^C Quit")
	if m.statusMsg != "" {
		fmt.Fprintf(&sb, "  │  %s", activeStyle.Render(m.statusMsg))
	}

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt draws overlay on top of bg with its top-left corner at (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// spliceLineAt replaces the visible columns [x, x+width(overlay)) of bgLine,
// carrying ANSI escape sequences of the prefix and suffix through.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix, suffix strings.Builder
	col, i := 0, 0

	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			i = copyEscape(runes, i, &prefix)
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			i = copyEscape(runes, i, nil)
			continue
		}
		skipped++
		i++
	}

	for ; i < len(runes); i++ {
		suffix.WriteRune(runes[i])
	}
	return prefix.String() + overlay + suffix.String()
}

// copyEscape consumes the escape sequence starting at runes[i], writing it
// to dst when dst is non-nil, and returns the index after it.
func copyEscape(runes []rune, i int, dst *strings.Builder) int {
	for start := i; i < len(runes); i++ {
		if dst != nil {
			dst.WriteRune(runes[i])
		}
		if i > start && isEscapeFinal(runes[i]) {
			return i + 1
		}
	}
	return i
}

func isEscapeFinal(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isEscapeFinal(r) {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
