package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"qtermkit/sim"
	"qtermkit/unroll"
)

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

func writeCallsTable(w io.Writer, gates []gateCalls) {
	t := newTable(w, "Gate definitions")
	t.AppendHeader(table.Row{"Gate", "Params", "Qubits", "Calls", "From"})
	for _, g := range gates {
		calls := strings.Join(g.calls, " ")
		if calls == "" {
			calls = "-"
		}
		from := g.from
		if from == "" {
			from = "program"
		}
		t.AppendRow(table.Row{g.name, strings.Join(g.params, ","), strings.Join(g.qubits, ","), calls, from})
	}
	t.Render()
}

// writeMatrixTable prints m with row and column basis labels. Label bits
// are written most significant qubit first.
func writeMatrixTable(w io.Writer, title string, m *sim.Matrix, n, prec int) {
	t := newTable(w, title)
	header := table.Row{""}
	for c := 0; c < m.Dim(); c++ {
		header = append(header, basisLabel(c, n))
	}
	t.AppendHeader(header)
	for r := 0; r < m.Dim(); r++ {
		row := table.Row{basisLabel(r, n)}
		for c := 0; c < m.Dim(); c++ {
			row = append(row, sim.FormatComplex(m.At(r, c), prec))
		}
		t.AppendRow(row)
	}
	cfgs := make([]table.ColumnConfig, 0, m.Dim()+1)
	for c := 1; c <= m.Dim()+1; c++ {
		cfgs = append(cfgs, table.ColumnConfig{Number: c, Align: text.AlignRight})
	}
	t.SetColumnConfigs(cfgs)
	t.Render()
}

func basisLabel(i, n int) string {
	return fmt.Sprintf("|%0*b>", n, i)
}

func writeProbabilityTable(w io.Writer, circ *unroll.Circuit, res *sim.Result) {
	t := newTable(w, "Qubit probabilities")
	t.AppendHeader(table.Row{"Qubit", "P(0)", "P(1)"})
	probs := res.State.QubitProbabilities()
	for _, reg := range circ.Qregs {
		for i := 0; i < reg.Size; i++ {
			p := probs[reg.Offset+i]
			t.AppendRow(table.Row{
				fmt.Sprintf("%s[%d]", reg.Name, i),
				fmt.Sprintf("%.4f", p.Prob0),
				fmt.Sprintf("%.4f", p.Prob1),
			})
		}
	}
	t.Render()
	fmt.Fprintf(w, "ops: applied %d, skipped %d\n", res.Applied, res.Skipped)
}

func writeStateTable(w io.Writer, res *sim.Result, prec int) {
	t := newTable(w, "Basis states")
	t.AppendHeader(table.Row{"State", "Amplitude", "Probability"})
	n := res.State.NumQubits
	for i, p := range res.State.Probabilities() {
		if p < 1e-12 {
			continue
		}
		t.AppendRow(table.Row{basisLabel(i, n), sim.FormatComplex(res.State.Amplitudes[i], prec), fmt.Sprintf("%.4f", p)})
	}
	t.Render()
}
