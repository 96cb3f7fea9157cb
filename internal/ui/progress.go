package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

const maxBarWidth = 60

type progressMsg int64

type doneMsg struct {
	err error
}

type progressModel struct {
	title  string
	total  int64
	done   int64
	bar    progress.Model
	cancel context.CancelFunc

	quitting bool
}

func newProgressModel(title string, total int64, cancel context.CancelFunc) progressModel {
	return progressModel{
		title:  title,
		total:  total,
		bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth)),
		cancel: cancel,
	}
}

func (m progressModel) Init() tea.Cmd {
	return nil
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.cancel()
			m.quitting = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = max(min(msg.Width-4, maxBarWidth), 10)
	case progressMsg:
		m.done += int64(msg)
	case doneMsg:
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

func (m progressModel) percent() float64 {
	if m.total <= 0 {
		return 1
	}
	return min(float64(m.done)/float64(m.total), 1)
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(m.title)
	b.WriteString("\n")
	b.WriteString(m.bar.ViewAs(m.percent()))
	fmt.Fprintf(&b, " %s / %s\n", humanize.IBytes(uint64(m.done)), humanize.IBytes(uint64(m.total)))
	return b.String()
}

// WorkFunc does the work being tracked, reporting bytes done through
// progress.
type WorkFunc func(ctx context.Context, progress func(n int64)) error

// RunProgress runs work while drawing a progress bar on stderr. Work runs
// in its own goroutine and only talks to the bar through messages. Pressing
// ctrl+c cancels the context passed to work.
func RunProgress(ctx context.Context, title string, total int64, work WorkFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	p := tea.NewProgram(newProgressModel(title, total, cancel),
		tea.WithContext(ctx),
		tea.WithOutput(os.Stderr),
		tea.WithoutSignalHandler(),
	)

	g.Go(func() error {
		err := work(ctx, func(n int64) { p.Send(progressMsg(n)) })
		p.Send(doneMsg{err: err})
		return err
	})

	g.Go(func() error {
		_, err := p.Run()
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return err
	})

	return g.Wait()
}
