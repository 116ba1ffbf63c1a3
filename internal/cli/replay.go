package cli

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/internal/viewer"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

const (
	// Imported sessions carry no timing; their ops are spaced by minStep.
	minStep = 150 * time.Millisecond
	maxStep = 2 * time.Second
)

var (
	replaySpeed  float64
	replayWindow bool
)

var sessionsReplayCmd = &cobra.Command{
	Use:   "replay <session>",
	Short: "Replay a stored session",
	Long: `Replay a stored session with its original timing.

Keyboard shortcuts (terminal):
  space        - Pause / resume
  left/right   - Step back / forward
  r            - Restart
  q/Esc        - Quit

Usage:
  cuberender sessions replay last
  cuberender sessions replay 3f2a --speed 2.0
  cuberender sessions replay last --window`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	sessionsCmd.AddCommand(sessionsReplayCmd)
	sessionsReplayCmd.Flags().Float64VarP(&replaySpeed, "speed", "s", 1.0, "Playback speed multiplier")
	sessionsReplayCmd.Flags().BoolVar(&replayWindow, "window", false, "Replay in a window")
}

func runReplay(cmd *cobra.Command, args []string) error {
	if replaySpeed <= 0 {
		return fmt.Errorf("speed must be positive")
	}

	db, s, err := resolveSession(args[0])
	if err != nil {
		return err
	}
	records, err := storage.NewOpRepository(db).List(s.SessionID)
	db.Close()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("session %s has no ops", shortID(s.SessionID))
	}

	p := newPlayer(records, replaySpeed)

	if replayWindow {
		return replayInWindow(p, s)
	}

	prog := tea.NewProgram(newReplayModel(p, s), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("replay error: %w", err)
	}
	return nil
}

func replayInWindow(p *player, s *storage.Session) error {
	stop := make(chan struct{})
	defer close(stop)

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-time.After(p.Delay()):
				p.Step()
			}
		}
	}()

	win := viewer.New(viewer.Config{
		Title:  "cuberender - replay " + shortID(s.SessionID),
		Source: p,
		Logger: logger,
	})
	return win.Run()
}

// player steps through the ops of a stored session. It is safe for
// concurrent use.
type player struct {
	records []storage.OpRecord
	speed   float64
	rec     *cuberender.Recorder

	mu  sync.Mutex
	pos int
}

func newPlayer(records []storage.OpRecord, speed float64) *player {
	return &player{
		records: records,
		speed:   speed,
		rec:     cuberender.NewRecorder(cuberender.WithLogger(logger)),
	}
}

// Step applies the next op and reports whether there was one.
func (p *player) Step() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pos >= len(p.records) {
		return false
	}
	if err := p.rec.RecordOp(p.records[p.pos].Op()); err != nil {
		logger.WithError(err).WithField("index", p.pos).Error("skipping stored op")
	}
	p.pos++
	return true
}

// Back undoes the last applied op.
func (p *player) Back() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pos == 0 {
		return
	}
	p.seek(p.pos - 1)
}

// Restart returns to the solved cube.
func (p *player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seek(0)
}

// seek must be called with p.mu held.
func (p *player) seek(pos int) {
	p.rec.Reset()
	for _, r := range p.records[:pos] {
		if err := p.rec.RecordOp(r.Op()); err != nil {
			logger.WithError(err).WithField("index", r.OpIndex).Error("skipping stored op")
		}
	}
	p.pos = pos
}

// Pos returns the number of applied ops.
func (p *player) Pos() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Len returns the number of ops in the session.
func (p *player) Len() int {
	return len(p.records)
}

// Done reports whether every op has been applied.
func (p *player) Done() bool {
	return p.Pos() >= p.Len()
}

// Delay returns how long to wait before the next op, following the recorded
// timestamps scaled by the playback speed.
func (p *player) Delay() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pos == 0 || p.pos >= len(p.records) {
		return minStep
	}
	gap := p.records[p.pos].TsMs - p.records[p.pos-1].TsMs
	d := time.Duration(float64(gap)/p.speed) * time.Millisecond
	switch {
	case d < minStep:
		return minStep
	case d > maxStep:
		return maxStep
	}
	return d
}

// CurrentTransforms returns the cubie matrices after the applied ops.
func (p *player) CurrentTransforms() cuberender.Transforms {
	return p.rec.CurrentTransforms()
}

// Ops returns the applied ops.
func (p *player) Ops() []types.Op {
	return p.rec.Ops()
}

// Messages
type stepMsg struct{ gen int }

type replayModel struct {
	p      *player
	s      *storage.Session
	paused bool

	// gen invalidates steps scheduled before a pause or restart.
	gen int
}

func newReplayModel(p *player, s *storage.Session) *replayModel {
	return &replayModel{p: p, s: s}
}

func (m *replayModel) Init() tea.Cmd {
	return m.scheduleStep()
}

func (m *replayModel) scheduleStep() tea.Cmd {
	m.gen++
	gen := m.gen
	return tea.Tick(m.p.Delay(), func(t time.Time) tea.Msg {
		return stepMsg{gen: gen}
	})
}

func (m *replayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case " ":
			m.paused = !m.paused
			if !m.paused {
				return m, m.scheduleStep()
			}

		case "right", "l":
			m.paused = true
			m.p.Step()

		case "left", "h":
			m.paused = true
			m.p.Back()

		case "r":
			m.p.Restart()
			m.paused = false
			return m, m.scheduleStep()
		}

	case stepMsg:
		if m.paused || msg.gen != m.gen {
			return m, nil
		}
		if m.p.Step() {
			return m, m.scheduleStep()
		}
	}

	return m, nil
}

func (m *replayModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cuberender replay"))
	b.WriteString("\n")

	state := "playing"
	switch {
	case m.paused:
		state = "paused"
	case m.p.Done():
		state = "finished"
	}
	b.WriteString(statusStyle.Render(fmt.Sprintf("session %s  %s  op %d/%d  %.1fx  %s",
		shortID(m.s.SessionID), m.s.Source, m.p.Pos(), m.p.Len(), m.p.speed, state)))
	b.WriteString("\n\n")

	snap := m.p.rec.CurrentState()
	b.WriteString(renderOccupancy(snap))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%d cubies displaced", displaced(snap))))
	b.WriteString("\n\n")

	b.WriteString("Ops: ")
	b.WriteString(renderOps(m.p.Ops(), opsTail))
	b.WriteString("\n\n")

	b.WriteString(helpStyle.Render("space pause  left/right step  r restart  q quit"))

	return b.String()
}
