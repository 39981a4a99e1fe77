package status

import (
	"errors"
	"io"
	"time"

	"github.com/bnema/synthelix-nodes/internal/domain"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedRenderModel = errors.New("unexpected final bubbletea model type")

// walletRow is one wallet with the flags the view needs precomputed.
type walletRow struct {
	snapshot domain.Snapshot
	// leftPercent is the share of the current run still ahead, 0-100.
	leftPercent float64
	restartDue  bool
	stale       bool
}

// fleetReport aggregates every wallet of a status report.
type fleetReport struct {
	rows        []walletRow
	running     int
	restartDue  int
	failing     int
	totalPoints float64
}

func buildReport(snapshots []domain.Snapshot, opts RenderOptions) fleetReport {
	report := fleetReport{rows: make([]walletRow, 0, len(snapshots))}
	for _, snapshot := range snapshots {
		row := walletRow{
			snapshot:    snapshot,
			leftPercent: runFraction(snapshot.Status) * 100,
			restartDue:  restartDue(snapshot.Status, opts.LowWaterMark),
			stale:       isStale(snapshot, opts),
		}

		if snapshot.Status.Running {
			report.running++
		}
		if row.restartDue {
			report.restartDue++
		}
		if snapshot.LastError != "" {
			report.failing++
		}
		report.totalPoints += snapshot.Points.TotalPoints
		report.rows = append(report.rows, row)
	}

	return report
}

func restartDue(status domain.NodeStatus, lowWaterMark time.Duration) bool {
	return status.Running && lowWaterMark > 0 && status.SecondsRemaining < lowWaterMark.Seconds()
}

// isStale treats a never-updated wallet as stale. Without a reference time
// nothing else is.
func isStale(snapshot domain.Snapshot, opts RenderOptions) bool {
	if snapshot.UpdatedAt.IsZero() {
		return true
	}
	if opts.Now.IsZero() {
		return false
	}
	return snapshot.IsStale(opts.Now, opts.StaleAfter)
}

type reportReadyMsg struct {
	report fleetReport
}

type model struct {
	snapshots []domain.Snapshot
	opts      RenderOptions
	styles    styles
	output    string
}

func newModel(snapshots []domain.Snapshot, opts RenderOptions) model {
	return model{
		snapshots: snapshots,
		opts:      opts,
		styles:    newStyles(),
	}
}

func (m model) Init() tea.Cmd {
	snapshots, opts := m.snapshots, m.opts
	return func() tea.Msg {
		return reportReadyMsg{report: buildReport(snapshots, opts)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ready, ok := msg.(reportReadyMsg); ok {
		m.output = renderView(ready.report, m.opts, m.styles)
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	return m.output
}

// Render lays out the node snapshots of every account as a static report.
func Render(snapshots []domain.Snapshot, opts RenderOptions) (string, error) {
	final, err := tea.NewProgram(
		newModel(snapshots, opts),
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	).Run()
	if err != nil {
		return "", err
	}

	rendered, ok := final.(model)
	if !ok {
		return "", ErrUnexpectedRenderModel
	}
	return rendered.View(), nil
}
