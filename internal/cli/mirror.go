package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/ble"
	"github.com/SeamusWaldron/cuberender/internal/gocube"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/internal/viewer"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

var (
	mirrorWindow   bool
	mirrorNoSave   bool
	mirrorNotes    string
	mirrorCompact  int
	mirrorAttempts int
)

var mirrorCmd = &cobra.Command{
	Use:   "mirror",
	Short: "Follow a GoCube smart cube",
	Long: `Connect to a GoCube over Bluetooth and turn the cube whenever the
physical cube is turned. Turns are stored in a session unless --no-save is
given.

With --window the cube is drawn in a window that also follows the physical
cube's orientation; otherwise a terminal view is shown.

The GoCube must be solved when mirroring starts.`,
	RunE: runMirror,
}

func init() {
	rootCmd.AddCommand(mirrorCmd)
	mirrorCmd.Flags().BoolVar(&mirrorWindow, "window", false, "Draw the cube in a window")
	mirrorCmd.Flags().BoolVar(&mirrorNoSave, "no-save", false, "Do not store the session")
	mirrorCmd.Flags().StringVar(&mirrorNotes, "notes", "", "Notes stored with the session")
	mirrorCmd.Flags().IntVar(&mirrorCompact, "compact", 0, "Compact the op log after this many ops (default: state file value)")
	mirrorCmd.Flags().IntVar(&mirrorAttempts, "attempts", 3, "Number of scans before giving up")
}

func runMirror(cmd *cobra.Command, args []string) error {
	stateFile, err := loadState()
	if err != nil {
		return err
	}

	client, results, err := ScanForGoCube(mirrorAttempts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no GoCube found; turn the cube to wake it up and try again")
	}

	target := pickDevice(results, stateFile.State().LastDeviceID)
	ctx, cancel := context.WithTimeout(context.Background(), ble.ConnectTimeout)
	err = client.ConnectToResult(ctx, target)
	cancel()
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer client.Disconnect()

	if err := stateFile.SetLastDevice(client.DeviceUUID(), client.DeviceName()); err != nil {
		logger.WithError(err).Warn("failed to save last device")
	}
	fmt.Printf("Connected to %s\n", client.DeviceName())

	r, err := newRecording(recordingOptions{
		source:     storage.SourceGoCube,
		deviceName: client.DeviceName(),
		notes:      mirrorNotes,
		compact:    mirrorCompact,
		noSave:     mirrorNoSave,
	})
	if err != nil {
		return err
	}
	defer r.close()

	if mirrorWindow {
		return mirrorInWindow(client, r)
	}
	return mirrorInTerminal(client, r)
}

// applyOps records ops coming from the cube.
func (r *recording) applyOps(ops []types.Op) error {
	if r.sess != nil {
		return r.sess.RecordOps(ops...)
	}
	return r.rec.RecordOp(ops...)
}

func mirrorInWindow(client *ble.Client, r *recording) error {
	win := viewer.New(viewer.Config{
		Title:  "cuberender - " + client.DeviceName(),
		Source: r.rec,
		Logger: logger,
	})

	feed := &gocube.Feed{
		OnOps: func(ops []types.Op) {
			if err := r.applyOps(ops); err != nil {
				logger.WithError(err).Error("failed to record cube turn")
			}
		},
		OnOrientation: win.SetOrientation,
		Logger:        logger,
	}
	client.SetMessageCallback(feed.Handle)

	if err := client.EnableOrientation(); err != nil {
		logger.WithError(err).Warn("failed to enable orientation")
	}
	defer client.DisableOrientation()

	return win.Run()
}

func mirrorInTerminal(client *ble.Client, r *recording) error {
	m := newMirrorModel(client, r)
	client.SetMessageCallback(func(msg *gocube.Message) {
		select {
		case m.msgChan <- msg:
		default:
			// Channel full, drop message
		}
	})

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if r.sess != nil {
		fmt.Printf("Session %s: %d ops stored\n", shortID(r.sess.ID()), r.sess.OpCount())
	}
	return nil
}

// Messages
type bleMessageMsg struct{ msg *gocube.Message }

type mirrorModel struct {
	client  *ble.Client
	r       *recording
	feed    *gocube.Feed
	msgChan chan *gocube.Message

	battery     int
	orientation mgl32.Quat
	last        string
	err         error
}

func newMirrorModel(client *ble.Client, r *recording) *mirrorModel {
	m := &mirrorModel{
		client:      client,
		r:           r,
		msgChan:     make(chan *gocube.Message, 100),
		battery:     -1,
		orientation: mgl32.QuatIdent(),
	}
	m.feed = &gocube.Feed{
		OnOps: func(ops []types.Op) {
			if err := r.applyOps(ops); err != nil {
				m.err = err
				return
			}
			m.last = types.FormatOps(ops)
		},
		OnOrientation: func(q mgl32.Quat) { m.orientation = q },
		OnBattery:     func(level int) { m.battery = level },
		Logger:        logger,
	}
	return m
}

func (m *mirrorModel) Init() tea.Cmd {
	return tea.Batch(tickCmd(), m.listenForMessages())
}

func (m *mirrorModel) listenForMessages() tea.Cmd {
	return func() tea.Msg {
		msg := <-m.msgChan
		return bleMessageMsg{msg: msg}
	}
}

func (m *mirrorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit

		case "ctrl+n":
			// The cube's current state becomes the new solved state.
			m.err = m.r.restart(storage.SourceGoCube, m.client.DeviceName(), mirrorNotes)
			if err := m.client.ResetSolved(); err != nil && m.err == nil {
				m.err = err
			}
			m.last = ""

		case "f":
			if err := m.client.FlashBacklight(); err != nil {
				m.err = err
			}
		}

	case tickMsg:
		if b := m.client.Battery(); b >= 0 {
			m.battery = b
		}
		return m, tickCmd()

	case bleMessageMsg:
		m.feed.Handle(msg.msg)
		return m, m.listenForMessages()
	}

	return m, nil
}

func (m *mirrorModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cuberender mirror"))
	b.WriteString("\n")

	status := fmt.Sprintf("%s  battery %s", m.client.DeviceName(), batteryText(m.battery))
	if !m.client.IsConnected() {
		status = "disconnected"
	}
	if m.r.sess != nil {
		status += fmt.Sprintf("  session %s  %s", shortID(m.r.sess.ID()),
			(time.Duration(m.r.sess.ElapsedMs()) * time.Millisecond).Truncate(time.Second))
	}
	b.WriteString(statusStyle.Render(status))
	b.WriteString("\n")
	q := m.orientation
	b.WriteString(statusStyle.Render(fmt.Sprintf("orientation w=%.2f x=%.2f y=%.2f z=%.2f", q.W, q.V[0], q.V[1], q.V[2])))
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
	b.WriteString(helpStyle.Render("f flash backlight  ctrl+n reset (solve the cube first)  q quit"))

	return b.String()
}

func batteryText(level int) string {
	if level < 0 {
		return "?"
	}
	return fmt.Sprintf("%d%%", level)
}
