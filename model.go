package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"qtermkit/qasm"
	"qtermkit/sim"
	"qtermkit/unroll"
)

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusEditor focus = iota
	focusRender
	focusMenu
	focusInputParam
	focusSelectQubits
	focusOperator
)

const sampleSource = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
gate bell a,b { h a; cx a,b; }
bell q[0],q[1];
measure q -> c;
`

// Model represents the explorer state. The editor text is the source of
// truth; everything else is derived from its last successful parse.
type Model struct {
	cfg    Config
	log    *slog.Logger
	path   string
	width  int
	height int

	editor     textarea.Model
	canonical  viewport.Model
	focus      focus
	lastSource string
	statusMsg  string // transient status message (e.g. save confirmation)

	prog     *qasm.Program
	gates    []gateCalls
	parseErr error

	circuit *unroll.Circuit
	result  *sim.Result
	runErr  error

	// Operator picker state
	menuItem      int
	paramInput    string
	params        []float64
	qubits        []int
	cursorQubit   int
	operator      *sim.Matrix
	operatorTitle string
}

// runResultMsg carries a finished simulation back to Update.
type runResultMsg struct {
	circuit *unroll.Circuit
	result  *sim.Result
	err     error
}

func newModel(cfg Config, log *slog.Logger) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.SetValue(sampleSource)
	ta.Focus()

	m := Model{
		cfg:       cfg,
		log:       log,
		editor:    ta,
		canonical: viewport.New(40, 10),
		focus:     focusEditor,
	}
	m.reparse()
	return m
}

// load replaces the editor contents with a file.
func (m *Model) load(path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m.path = path
	m.editor.SetValue(string(src))
	m.reparse()
	return nil
}

// reparse re-derives the canonical view and gate list after an edit. A
// failed parse keeps the previous views and records the error.
func (m *Model) reparse() {
	src := m.editor.Value()
	if src == m.lastSource {
		return
	}
	m.lastSource = src

	prog, err := qasm.ParseFile(m.path, src)
	if err != nil {
		m.parseErr = err
		return
	}
	m.parseErr = nil
	m.prog = prog
	m.gates = callsOf(prog, "")
	m.canonical.SetContent(prog.QASM(m.cfg.Precision))
	m.circuit, m.result, m.runErr = nil, nil, nil
}

func runProgram(cfg Config, prog *qasm.Program) tea.Cmd {
	return func() tea.Msg {
		circ, res, err := cfg.simulate(context.Background(), prog)
		return runResultMsg{circuit: circ, result: res, err: err}
	}
}

// operatorQubits is the register size the operator overlay enlarges to:
// the program's qubit count, clamped for display.
func (m Model) operatorQubits() int {
	n := 0
	if m.prog != nil {
		for _, s := range m.prog.Statements {
			if q, ok := s.(*qasm.Qreg); ok {
				n += q.Size
			}
		}
	}
	if it := operatorMenu[m.menuItem]; n < it.arity {
		n = it.arity
	}
	return min(max(n, 1), maxViewQubits)
}

func (m *Model) buildOperator() {
	it := operatorMenu[m.menuItem]
	n := m.operatorQubits()
	op, err := operator(it.gate, m.params, m.qubits, n)
	if err != nil {
		m.statusMsg = fmt.Sprintf("Operator error: %v", err)
		m.focus = focusRender
		return
	}
	m.operator = op
	m.operatorTitle = fmt.Sprintf("%s(%s) on %s, n=%d", it.gate, formatParams(m.params), qubitList(m.qubits), n)
	m.focus = focusOperator
	m.log.Debug("operator built", "gate", it.gate, "qubits", m.qubits, "n", n)
}

func (m *Model) startQubitSelect() {
	m.qubits = nil
	m.cursorQubit = 0
	m.focus = focusSelectQubits
}

func (m *Model) save() {
	path := m.path
	if path == "" {
		path = "circuit.qasm"
	}
	if err := os.WriteFile(path, []byte(m.editor.Value()), 0644); err != nil {
		m.statusMsg = fmt.Sprintf("Save error: %v", err)
		return
	}
	m.path = path
	m.statusMsg = "Saved " + path
	m.log.Info("saved", "file", path)
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		editorW := max(msg.Width/3-4, 20)
		m.editor.SetWidth(editorW)
		m.editor.SetHeight(max(msg.Height-controlsH-6, 4))
		m.canonical.Width = max(msg.Width-editorW-12, 20)
		m.canonical.Height = max((msg.Height-controlsH)/2-4, 3)

	case runResultMsg:
		m.circuit, m.result, m.runErr = msg.circuit, msg.result, msg.err
		if msg.err != nil {
			m.statusMsg = "Run failed"
			m.log.Error("run failed", "err", msg.err)
		} else {
			m.statusMsg = fmt.Sprintf("Ran %d ops on %d qubits", len(msg.circuit.Ops), msg.circuit.NumQubits)
			m.log.Info("simulated", "qubits", msg.circuit.NumQubits, "applied", msg.result.Applied, "skipped", msg.result.Skipped)
		}

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		switch key {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+s":
			m.save()
			return m, nil
		case "ctrl+r":
			if m.prog == nil || m.parseErr != nil {
				m.statusMsg = "Fix the parse error before running"
				return m, nil
			}
			m.statusMsg = "Running..."
			return m, runProgram(m.cfg, m.prog)
		}

		switch m.focus {
		case focusEditor:
			switch key {
			case "tab", "esc":
				m.focus = focusRender
				m.editor.Blur()
			default:
				var cmd tea.Cmd
				m.editor, cmd = m.editor.Update(msg)
				cmds = append(cmds, cmd)
				m.reparse()
			}

		case focusRender:
			switch key {
			case "q":
				return m, tea.Quit
			case "tab":
				m.focus = focusEditor
				cmds = append(cmds, m.editor.Focus())
			case "f":
				if m.prog != nil && m.parseErr == nil {
					m.editor.SetValue(m.prog.QASM(m.cfg.Precision))
					m.reparse()
					m.statusMsg = "Replaced source with canonical form"
				}
			case "a":
				m.focus = focusMenu
				m.menuItem = 0
			default:
				var cmd tea.Cmd
				m.canonical, cmd = m.canonical.Update(msg)
				cmds = append(cmds, cmd)
			}

		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusRender
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(operatorMenu)-1 {
					m.menuItem++
				}
			case "enter":
				m.params = nil
				if operatorMenu[m.menuItem].needsParams() {
					m.paramInput = ""
					m.focus = focusInputParam
					break
				}
				m.startQubitSelect()
			}

		case focusInputParam:
			switch key {
			case "esc":
				m.focus = focusRender
				m.paramInput = ""
			case "backspace":
				if len(m.paramInput) > 0 {
					m.paramInput = m.paramInput[:len(m.paramInput)-1]
				}
			case "enter":
				params, err := parseParamList(m.paramInput)
				if err != nil {
					m.statusMsg = err.Error()
					break
				}
				m.params = params
				m.paramInput = ""
				m.startQubitSelect()
			default:
				if len(key) == 1 {
					m.paramInput += key
				}
			}

		case focusSelectQubits:
			n := m.operatorQubits()
			switch key {
			case "esc":
				m.focus = focusRender
			case "up", "k":
				for next := m.cursorQubit - 1; next >= 0; next-- {
					if !slicesContains(m.qubits, next) {
						m.cursorQubit = next
						break
					}
				}
			case "down", "j":
				for next := m.cursorQubit + 1; next < n; next++ {
					if !slicesContains(m.qubits, next) {
						m.cursorQubit = next
						break
					}
				}
			case "enter":
				if slicesContains(m.qubits, m.cursorQubit) {
					break
				}
				m.qubits = append(m.qubits, m.cursorQubit)
				if len(m.qubits) == operatorMenu[m.menuItem].arity {
					m.buildOperator()
					break
				}
				for q := 0; q < n; q++ {
					if !slicesContains(m.qubits, q) {
						m.cursorQubit = q
						break
					}
				}
			}

		case focusOperator:
			switch key {
			case "esc", "enter", "q":
				m.focus = focusRender
				m.operator = nil
			}
		}

	default:
		if m.focus == focusEditor {
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	editorW := m.width / 3
	rightW := m.width - editorW - 4
	topH := max(m.height-controlsH-2, 8)
	canonH := topH / 2
	lowerH := topH - canonH - 2

	editorPanel := m.renderEditorPanel(editorW, topH)
	canonicalPanel := m.renderCanonicalPanel(rightW, canonH)
	gatesPanel := m.renderGatesPanel(rightW/2-2, lowerH)
	probPanel := m.renderProbPanel(rightW-rightW/2, lowerH)

	lower := lipgloss.JoinHorizontal(lipgloss.Top, gatesPanel, probPanel)
	right := lipgloss.JoinVertical(lipgloss.Left, canonicalPanel, lower)
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, editorPanel, right)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, m.renderControlsPanel(m.width-4, controlsH-2))

	switch m.focus {
	case focusMenu:
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	case focusInputParam:
		frame = overlayAt(frame, m.renderParamInput(), 2, 2)
	case focusSelectQubits:
		frame = overlayAt(frame, m.renderQubitSelect(), 2, 2)
	case focusOperator:
		if m.operator != nil {
			frame = overlayAt(frame, m.renderOperator(), 2, 2)
		}
	}

	return frame
}
