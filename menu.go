package main

import (
	"fmt"
	"strings"
)

// menuItem is one primitive gate the operator picker can enlarge.
type menuItem struct {
	name      string
	gate      string
	arity     int
	paramHint string // empty when the gate takes no parameters
}

// operatorMenu lists the gates sim.Operator knows.
var operatorMenu = []menuItem{
	{name: "Universal U", gate: "U", arity: 1, paramHint: "theta,phi,lambda"},
	{name: "u3", gate: "u3", arity: 1, paramHint: "theta,phi,lambda"},
	{name: "u2", gate: "u2", arity: 1, paramHint: "phi,lambda"},
	{name: "u1", gate: "u1", arity: 1, paramHint: "lambda"},
	{name: "Identity", gate: "id", arity: 1},
	{name: "Controlled-NOT", gate: "CX", arity: 2},
}

func (it menuItem) needsParams() bool { return it.paramHint != "" }

// renderMenu renders the operator picker overlay.
func (m Model) renderMenu() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Enlarge Operator"))
	sb.WriteString("\n\n")
	for i, it := range operatorMenu {
		label := fmt.Sprintf("%-16s %s", it.name, dimStyle.Render(it.gate))
		if i == m.menuItem {
			sb.WriteString(menuSelectedStyle.Render("▸ " + label))
		} else {
			sb.WriteString(menuNormalStyle.Render("  " + label))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Select  ⏎ Ok  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// renderParamInput renders the parameter input overlay.
func (m Model) renderParamInput() string {
	it := operatorMenu[m.menuItem]
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Parameters for " + it.gate))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "%s: %s_", it.paramHint, m.paramInput)
	sb.WriteString("\n\n")
	sb.WriteString(dimStyle.Render("Examples: pi/2, 3*pi/4, 1.57"))
	return menuBorderStyle.Render(sb.String())
}

// renderQubitSelect renders the qubit selection overlay.
func (m Model) renderQubitSelect() string {
	it := operatorMenu[m.menuItem]
	var sb strings.Builder
	role := "target"
	if it.arity == 2 {
		role = []string{"control", "target"}[len(m.qubits)]
	}
	sb.WriteString(titleStyle.Render(fmt.Sprintf("%s: select %s", it.gate, role)))
	sb.WriteString("\n\n")
	for q := 0; q < m.operatorQubits(); q++ {
		label := fmt.Sprintf("q[%d]", q)
		switch {
		case q == m.cursorQubit:
			sb.WriteString(selectStyle.Render("▸ " + label))
		case slicesContains(m.qubits, q):
			sb.WriteString(dimStyle.Render("  " + label + " (chosen)"))
		default:
			sb.WriteString("  " + label)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("↑↓ Move  ⏎ Choose  Esc ✕"))
	return menuBorderStyle.Render(sb.String())
}

// renderOperator renders the enlarged operator overlay.
func (m Model) renderOperator() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.operatorTitle))
	sb.WriteString("\n")
	n := 0
	for 1<<n < m.operator.Dim() {
		n++
	}
	writeMatrixTable(&sb, "", m.operator, n, 3)
	sb.WriteString(dimStyle.Render("Esc/⏎ Close"))
	return menuBorderStyle.Render(sb.String())
}

func slicesContains(slice []int, val int) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}
