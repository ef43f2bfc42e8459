package main

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"qtermkit/qasm"
)

var errNoFile = errors.New("missing FILE argument")

func (a *app) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "render",
			Usage:     "parse a program and print its canonical source",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "precision", Aliases: []string{"p"}, Usage: "significant digits for real literals (default from config)"},
			},
			Action: a.render,
		},
		{
			Name:      "calls",
			Usage:     "list gate definitions and the gates each body calls",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "includes", Usage: "also list definitions from included files"},
			},
			Action: a.calls,
		},
		{
			Name:  "matrix",
			Usage: "print the operator of a primitive gate enlarged to a register",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "gate", Aliases: []string{"g"}, Value: "U", Usage: "U, u3, u2, u1, id or CX"},
				&cli.StringFlag{Name: "params", Usage: "comma separated parameters, e.g. pi/2,0,pi"},
				&cli.IntFlag{Name: "qubit", Aliases: []string{"q"}, Usage: "target qubit (control for CX)"},
				&cli.IntFlag{Name: "qubit2", Value: -1, Usage: "second qubit of a two-qubit gate"},
				&cli.IntFlag{Name: "qubits", Aliases: []string{"n"}, Value: 1, Usage: "register size"},
				&cli.IntFlag{Name: "precision", Aliases: []string{"p"}, Value: 4, Usage: "significant digits"},
			},
			Action: a.matrix,
		},
		{
			Name:      "run",
			Usage:     "unroll and simulate a program, then print qubit probabilities",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				&cli.BoolFlag{Name: "states", Usage: "also print the non-zero basis states"},
			},
			Action: a.run,
		},
		{
			Name:      "tui",
			Usage:     "open the interactive explorer (default)",
			ArgsUsage: "[FILE]",
			Action:    a.tui,
		},
	}
}

func (a *app) readProgram(c *cli.Context) (*qasm.Program, error) {
	path := c.Args().First()
	if path == "" {
		return nil, errNoFile
	}
	prog, err := qasm.ReadFile(path)
	if err != nil {
		a.log.Error("parse failed", "file", path, "err", err)
		return nil, err
	}
	a.log.Info("parsed", "file", path, "statements", len(prog.Statements))
	return prog, nil
}

func (a *app) render(c *cli.Context) error {
	prog, err := a.readProgram(c)
	if err != nil {
		return err
	}
	prec := a.cfg.Precision
	if c.IsSet("precision") {
		prec = c.Int("precision")
	}
	_, err = fmt.Fprint(c.App.Writer, prog.QASM(prec))
	return err
}

func (a *app) calls(c *cli.Context) error {
	prog, err := a.readProgram(c)
	if err != nil {
		return err
	}
	gates := callsOf(prog, "")
	if c.Bool("includes") {
		inc, err := includedCalls(prog, a.cfg.resolver())
		if err != nil {
			return err
		}
		gates = append(inc, gates...)
	}
	writeCallsTable(c.App.Writer, gates)
	return nil
}

func (a *app) matrix(c *cli.Context) error {
	params, err := parseParamList(c.String("params"))
	if err != nil {
		return err
	}
	n := c.Int("qubits")
	if n > a.cfg.MaxQubits {
		return fmt.Errorf("%d qubits exceeds max_qubits %d", n, a.cfg.MaxQubits)
	}
	qubits := []int{c.Int("qubit")}
	if q2 := c.Int("qubit2"); q2 >= 0 {
		qubits = append(qubits, q2)
	}
	gate := c.String("gate")
	m, err := operator(gate, params, qubits, n)
	if err != nil {
		return err
	}
	a.log.Debug("operator built", "gate", gate, "qubits", qubits, "n", n)

	title := fmt.Sprintf("%s(%s) on %s, n=%d", gate, formatParams(params), qubitList(qubits), n)
	writeMatrixTable(c.App.Writer, title, m, n, c.Int("precision"))
	return nil
}

func qubitList(qubits []int) string {
	parts := make([]string, len(qubits))
	for i, q := range qubits {
		parts[i] = fmt.Sprintf("q[%d]", q)
	}
	return strings.Join(parts, ",")
}

func (a *app) run(c *cli.Context) error {
	prog, err := a.readProgram(c)
	if err != nil {
		return err
	}
	circ, res, err := a.cfg.simulate(c.Context, prog)
	if err != nil {
		a.log.Error("run failed", "err", err)
		return err
	}
	a.log.Info("simulated", "qubits", circ.NumQubits, "ops", len(circ.Ops), "applied", res.Applied, "skipped", res.Skipped)

	writeProbabilityTable(c.App.Writer, circ, res)
	if c.Bool("states") {
		writeStateTable(c.App.Writer, res, 4)
	}
	return nil
}

func (a *app) tui(c *cli.Context) error {
	m := newModel(a.cfg, a.log)
	if path := c.Args().First(); path != "" {
		if err := m.load(path); err != nil {
			return err
		}
	}
	a.log.Info("starting explorer", "file", m.path)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
