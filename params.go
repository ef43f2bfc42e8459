package main

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"qtermkit/qasm"
)

// implicitPi matches a coefficient written directly before pi, as in "3pi/4".
var implicitPi = regexp.MustCompile(`(\d)\s*pi`)

// parseParamExpr parses a single parameter expression. Anything the QASM
// expression grammar accepts works ("pi/2", "-3*pi/4", "sin(0.5)"), plus
// an upper-case PI and a coefficient glued to pi ("2pi").
// Returns the value and true on success, or 0 and false on failure.
func parseParamExpr(s string) (float64, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	s = implicitPi.ReplaceAllString(s, "$1*pi")

	expr, err := qasm.ParseExpr(s)
	if err != nil {
		return 0, false
	}
	val, err := qasm.Eval(expr, nil)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// formatParam formats a parameter value, using pi notation when it is a
// small rational multiple of pi: pi, pi/2, 3*pi/4, -2*pi/3, ...
func formatParam(val float64) string {
	if val == 0 {
		return "0"
	}
	for den := 1; den <= 8; den++ {
		num := math.Round(val * float64(den) / math.Pi)
		if num == 0 || math.Abs(num) > 16 {
			continue
		}
		if math.Abs(val-num*math.Pi/float64(den)) > 1e-10 {
			continue
		}
		s := "pi"
		if n := int(num); n == -1 {
			s = "-pi"
		} else if n != 1 {
			s = fmt.Sprintf("%d*pi", n)
		}
		if den > 1 {
			s += fmt.Sprintf("/%d", den)
		}
		return s
	}
	return fmt.Sprintf("%g", val)
}

// formatParams joins formatted values with ", ".
func formatParams(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = formatParam(v)
	}
	return strings.Join(parts, ", ")
}
