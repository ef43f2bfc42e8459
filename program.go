package main

import (
	"context"
	"fmt"
	"strings"

	"qtermkit/qasm"
	"qtermkit/sim"
	"qtermkit/unroll"
)

// gateCalls summarizes one gate definition for the calls views.
type gateCalls struct {
	name   string
	params []string
	qubits []string
	calls  []string
	from   string // include file, empty for the program itself
}

func callsOf(prog *qasm.Program, from string) []gateCalls {
	var out []gateCalls
	for _, g := range qasm.GateDefs(prog) {
		out = append(out, gateCalls{
			name:   g.Name(),
			params: g.ParamNames(),
			qubits: g.QubitNames(),
			calls:  g.Body.Calls(),
			from:   from,
		})
	}
	return out
}

// includedCalls resolves the program's includes one level deep and lists
// their gate definitions.
func includedCalls(prog *qasm.Program, r qasm.Resolver) ([]gateCalls, error) {
	var out []gateCalls
	for _, s := range prog.Statements {
		inc, ok := s.(*qasm.Include)
		if !ok {
			continue
		}
		src, path, err := r.Resolve(inc.File)
		if err != nil {
			return nil, err
		}
		lib, err := qasm.ParseFile(path, src)
		if err != nil {
			return nil, err
		}
		out = append(out, callsOf(lib, inc.File)...)
	}
	return out, nil
}

func (c Config) resolver() qasm.Resolver {
	return qasm.FileResolver{Paths: c.IncludePaths}
}

func (c Config) unroller() unroll.Unroller {
	return unroll.Unroller{Resolver: c.resolver(), MaxQubits: c.MaxQubits}
}

// simulate unrolls prog and runs it on a fresh register.
func (c Config) simulate(ctx context.Context, prog *qasm.Program) (*unroll.Circuit, *sim.Result, error) {
	circ, err := c.unroller().Unroll(prog)
	if err != nil {
		return nil, nil, fmt.Errorf("unroll: %w", err)
	}
	res, err := sim.Simulator{MaxQubits: c.MaxQubits}.Run(ctx, circ.NumQubits, circ.Ops)
	if err != nil {
		return circ, nil, fmt.Errorf("simulate: %w", err)
	}
	return circ, res, nil
}

// operator builds the enlarged operator of a primitive gate. The op is
// validated first so bad input never reaches the enlargement panics.
func operator(gate string, params []float64, qubits []int, n int) (*sim.Matrix, error) {
	if n < 1 {
		return nil, fmt.Errorf("register of %d qubits: %w", n, sim.ErrQubitRange)
	}
	return sim.Operator(sim.Op{Name: gate, Params: params, Qubits: qubits}, n)
}

// parseParamList splits a comma separated list of parameter expressions.
func parseParamList(input string) ([]float64, error) {
	var params []float64
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		val, ok := parseParamExpr(part)
		if !ok {
			return nil, fmt.Errorf("bad parameter %q: use numbers or pi expressions (e.g. pi/2, 3*pi/4)", part)
		}
		params = append(params, val)
	}
	return params, nil
}
