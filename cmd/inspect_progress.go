package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/bnema/synthelix-nodes/internal/application"
	"github.com/bnema/synthelix-nodes/internal/domain"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type inspectStepMsg application.InspectProgress

type inspectDoneMsg struct {
	snapshots []domain.Snapshot
	err       error
}

// inspectProgressModel shows which wallet a live refresh is signing in to and
// a one-line tally once the pass ends.
type inspectProgressModel struct {
	spinner spinner.Model
	total   int
	current application.InspectProgress
	run     tea.Cmd

	done      bool
	snapshots []domain.Snapshot
	err       error
}

func newInspectProgressModel(total int, run tea.Cmd) inspectProgressModel {
	return inspectProgressModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
		),
		total: total,
		run:   run,
	}
}

func (m inspectProgressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

func (m inspectProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case inspectStepMsg:
		m.current = application.InspectProgress(msg)
		return m, nil
	case inspectDoneMsg:
		m.done = true
		m.snapshots = msg.snapshots
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m inspectProgressModel) View() string {
	if m.done {
		return m.summary()
	}
	if m.current.Index == 0 {
		return fmt.Sprintf("%s Loading %s...", m.spinner.View(), walletCount(m.total))
	}
	return fmt.Sprintf("%s %s %d/%d: %s", m.spinner.View(),
		m.current.Account.Label, m.current.Index, m.current.Total, m.current.Account.Address.Short())
}

func (m inspectProgressModel) summary() string {
	if m.err != nil {
		return ""
	}

	failed := 0
	for _, snapshot := range m.snapshots {
		if snapshot.LastError != "" {
			failed++
		}
	}
	line := "Refreshed " + walletCount(len(m.snapshots))
	if failed > 0 {
		line += fmt.Sprintf(" (%d failed)", failed)
	}
	return line + "\n"
}

func walletCount(n int) string {
	if n == 1 {
		return "1 wallet"
	}
	return fmt.Sprintf("%d wallets", n)
}

// runInspectProgress runs inspect while rendering progress to output. inspect
// receives the callback to report each wallet with.
func runInspectProgress(ctx context.Context, output io.Writer, total int, inspect func(context.Context, func(application.InspectProgress)) ([]domain.Snapshot, error)) error {
	var p *tea.Program
	run := func() tea.Msg {
		snapshots, err := inspect(ctx, func(progress application.InspectProgress) {
			p.Send(inspectStepMsg(progress))
		})
		return inspectDoneMsg{snapshots: snapshots, err: err}
	}

	p = tea.NewProgram(
		newInspectProgressModel(total, run),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	final, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := final.(inspectProgressModel)
	if !ok {
		return fmt.Errorf("unexpected final progress model type %T", final)
	}
	return result.err
}
