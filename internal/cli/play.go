package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender"
	"github.com/SeamusWaldron/cuberender/internal/config"
	"github.com/SeamusWaldron/cuberender/internal/session"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/internal/viewer"
)

var (
	playNotes   string
	playCompact int
	playNoSave  bool
	playResume  string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Turn the cube from the keyboard in the terminal",
	Long: `Start an interactive TUI that records face turns typed on the keyboard
and shows where every cubie has moved.

Keyboard shortcuts:
  F B L R U D        - clockwise turn
  f b l r u d        - counter-clockwise turn
  ctrl+f ... ctrl+d  - half turn
  ctrl+n             - start over from a solved cube
  Esc/ctrl+c         - Quit

Every turn is stored in a session unless --no-save is given.`,
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().StringVar(&playNotes, "notes", "", "Notes stored with the session")
	playCmd.Flags().IntVar(&playCompact, "compact", 0, "Compact the op log after this many ops (default: state file value)")
	playCmd.Flags().BoolVar(&playNoSave, "no-save", false, "Do not store the session")
	playCmd.Flags().StringVar(&playResume, "resume", "", "Resume an unfinished session (id, prefix or \"last\")")
}

// recording is a recorder together with the session that stores it. sess is
// nil when nothing is stored.
type recording struct {
	rec  *cuberender.Recorder
	sess *session.Session
	db   *storage.DB
}

// input returns what keyboard input should be recorded through.
func (r *recording) input() viewer.Input {
	if r.sess != nil {
		return r.sess
	}
	return r.rec
}

func (r *recording) close() {
	if r.sess != nil && r.sess.State() == session.StateRecording {
		if err := r.sess.End(); err != nil {
			logger.WithError(err).Warn("failed to end session")
		}
	}
	if r.db != nil {
		r.db.Close()
	}
}

// restart ends the stored session and begins a new one from a solved cube.
func (r *recording) restart(source, deviceName, notes string) error {
	r.rec.Reset()
	if r.sess == nil {
		return nil
	}
	if err := r.sess.End(); err != nil {
		return err
	}
	_, err := r.sess.Start(r.rec, source, deviceName, notes)
	return err
}

type recordingOptions struct {
	source     string
	deviceName string
	notes      string
	compact    int
	noSave     bool
	resume     string
}

func newRecording(opts recordingOptions) (*recording, error) {
	stateFile, err := loadState()
	if err != nil {
		return nil, err
	}

	compact := opts.compact
	if compact == 0 {
		compact = stateFile.State().CompactAfter
	}
	rec := cuberender.NewRecorder(
		cuberender.WithCompactAfter(compact),
		cuberender.WithLogger(logger),
	)

	if opts.noSave {
		return &recording{rec: rec}, nil
	}

	db, err := openDB(stateFile)
	if err != nil {
		return nil, err
	}

	sess := session.New(db, stateFile, logger)
	if opts.resume != "" {
		err = resumeSession(db, sess, rec, stateFile, opts.resume)
	} else {
		_, err = sess.Start(rec, opts.source, opts.deviceName, opts.notes)
	}
	if err != nil {
		db.Close()
		return nil, err
	}

	return &recording{rec: rec, sess: sess, db: db}, nil
}

func resumeSession(db *storage.DB, sess *session.Session, rec *cuberender.Recorder, stateFile *config.StateFile, ref string) error {
	if ref == "active" {
		ref = stateFile.ActiveSessionID()
		if ref == "" {
			return fmt.Errorf("no active session")
		}
	}

	stored, err := storage.NewSessionRepository(db).Resolve(ref)
	if err != nil {
		return err
	}
	if stored == nil {
		return fmt.Errorf("%w: %s", session.ErrNotFound, ref)
	}
	return sess.Resume(rec, stored.SessionID)
}

func runPlay(cmd *cobra.Command, args []string) error {
	r, err := newRecording(recordingOptions{
		source:  storage.SourceKeyboard,
		notes:   playNotes,
		compact: playCompact,
		noSave:  playNoSave,
		resume:  playResume,
	})
	if err != nil {
		return err
	}
	defer r.close()

	p := tea.NewProgram(newPlayModel(r), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if r.sess != nil {
		fmt.Printf("Session %s: %d ops stored\n", shortID(r.sess.ID()), r.sess.OpCount())
	}
	return nil
}

// Messages
type tickMsg time.Time

type playModel struct {
	r *recording

	last    string
	elapsed time.Duration
	err     error
}

func newPlayModel(r *recording) *playModel {
	return &playModel{r: r}
}

func (m *playModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *playModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit

		case "ctrl+n":
			m.err = m.r.restart(storage.SourceKeyboard, "", playNotes)
			m.last = ""
			return m, nil
		}

		key, ctrl, ok := keyInput(msg)
		if !ok {
			return m, nil
		}
		if op, ok := m.r.input().Record(key, ctrl); ok {
			m.last = op.Notation()
		}

	case tickMsg:
		if m.r.sess != nil {
			m.elapsed = time.Duration(m.r.sess.ElapsedMs()) * time.Millisecond
		}
		return m, tickCmd()
	}

	return m, nil
}

func (m *playModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cuberender"))
	b.WriteString("\n")
	if m.r.sess != nil {
		b.WriteString(statusStyle.Render(fmt.Sprintf("session %s  %s  %d ops stored",
			shortID(m.r.sess.ID()), m.elapsed.Truncate(time.Second), m.r.sess.OpCount())))
	} else {
		b.WriteString(statusStyle.Render("not saving"))
	}
	b.WriteString("\n\n")

	snap := m.r.rec.CurrentState()
	b.WriteString(renderOccupancy(snap))
	b.WriteString("\n")
	b.WriteString(statusStyle.Render(fmt.Sprintf("%d cubies displaced, %d ops recorded", displaced(snap), m.r.rec.Len())))
	b.WriteString("\n\n")

	b.WriteString("Ops: ")
	b.WriteString(renderOps(m.r.rec.Ops(), opsTail))
	b.WriteString("\n")
	if m.last != "" {
		b.WriteString("Last: ")
		b.WriteString(moveStyle.Render(m.last))
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("FBLRUD clockwise  fblrud counter-clockwise  ctrl+letter half turn  ctrl+n reset  esc quit"))

	return b.String()
}

// shortID returns the first 8 characters of a session ID.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
