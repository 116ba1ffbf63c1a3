package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/operation"
	"github.com/SeamusWaldron/cuberender/internal/storage"
	"github.com/SeamusWaldron/cuberender/pkg/types"
)

var (
	sessionsLimit      int
	sessionsImportFile string
	sessionsNotes      string
	sessionsForce      bool
)

var sessionsCmd = &cobra.Command{
	Use:     "sessions",
	Aliases: []string{"session"},
	Short:   "Manage stored sessions",
	Long: `List, inspect, replay and delete stored sessions.

A session can be named by its full ID, a unique ID prefix, or "last".`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <session>",
	Short: "Show the ops and final state of a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session>",
	Short: "Delete a session and its ops",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsImportCmd = &cobra.Command{
	Use:   "import [ops...]",
	Short: "Store a sequence of ops as a new session",
	Long: `Store a sequence of ops as a finished session.

Examples:
  cuberender sessions import "R U R' U'"
  cuberender sessions import --file scramble.txt --notes "scramble 12"`,
	RunE: runSessionsImport,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)

	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsListCmd.Flags().IntVarP(&sessionsLimit, "limit", "n", 20, "Maximum number of sessions to list")

	sessionsCmd.AddCommand(sessionsShowCmd)

	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsDeleteCmd.Flags().BoolVarP(&sessionsForce, "force", "f", false, "Delete even if the session is still active")

	sessionsCmd.AddCommand(sessionsImportCmd)
	sessionsImportCmd.Flags().StringVar(&sessionsImportFile, "file", "", "Read ops from a file")
	sessionsImportCmd.Flags().StringVar(&sessionsNotes, "notes", "", "Notes stored with the session")
}

// resolveSession opens the database and finds the referenced session.
func resolveSession(ref string) (*storage.DB, *storage.Session, error) {
	stateFile, err := loadState()
	if err != nil {
		return nil, nil, err
	}
	db, err := openDB(stateFile)
	if err != nil {
		return nil, nil, err
	}

	s, err := storage.NewSessionRepository(db).Resolve(ref)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	if s == nil {
		db.Close()
		return nil, nil, fmt.Errorf("session not found: %s", ref)
	}
	return db, s, nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	stateFile, err := loadState()
	if err != nil {
		return err
	}
	db, err := openDB(stateFile)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions, err := storage.NewSessionRepository(db).List(sessionsLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions recorded")
		return nil
	}

	active := stateFile.ActiveSessionID()
	fmt.Printf("%-8s  %-19s  %-8s  %5s  %9s  %s\n", "ID", "STARTED", "SOURCE", "OPS", "DURATION", "NOTES")
	for _, s := range sessions {
		fmt.Println(formatSessionRow(s, active))
	}
	return nil
}

func formatSessionRow(s storage.Session, activeID string) string {
	duration := "-"
	if s.DurationMs != nil {
		duration = (time.Duration(*s.DurationMs) * time.Millisecond).Truncate(100 * time.Millisecond).String()
	} else if s.SessionID == activeID {
		duration = "active"
	}

	notes := ""
	if s.Notes != nil {
		notes = *s.Notes
	}
	if s.DeviceName != nil {
		notes = strings.TrimSpace(*s.DeviceName + " " + notes)
	}

	return fmt.Sprintf("%-8s  %-19s  %-8s  %5d  %9s  %s",
		shortID(s.SessionID), s.StartedAt.Local().Format("2006-01-02 15:04:05"), s.Source, s.OpCount, duration, notes)
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	db, s, err := resolveSession(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	records, err := storage.NewOpRepository(db).List(s.SessionID)
	if err != nil {
		return err
	}

	fmt.Printf("Session:  %s\n", s.SessionID)
	fmt.Printf("Started:  %s\n", s.StartedAt.Local().Format(time.RFC3339))
	if s.EndedAt != nil {
		fmt.Printf("Ended:    %s\n", s.EndedAt.Local().Format(time.RFC3339))
	}
	fmt.Printf("Source:   %s\n", s.Source)
	if s.DeviceName != nil {
		fmt.Printf("Device:   %s\n", *s.DeviceName)
	}
	if s.Notes != nil {
		fmt.Printf("Notes:    %s\n", *s.Notes)
	}
	fmt.Printf("Ops:      %d\n", len(records))
	fmt.Println()

	ops := make([]types.Op, len(records))
	for i, r := range records {
		ops[i] = r.Op()
	}
	fmt.Println(types.FormatOps(ops))
	fmt.Println()

	snap, err := operation.ReduceFrom(operation.Identity(), ops)
	if err != nil {
		return err
	}
	fmt.Println(renderOccupancy(snap))
	fmt.Printf("%d cubies displaced\n", displaced(snap))

	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	stateFile, err := loadState()
	if err != nil {
		return err
	}
	db, s, err := resolveSession(args[0])
	if err != nil {
		return err
	}
	defer db.Close()

	active := stateFile.ActiveSessionID() == s.SessionID
	if active && !sessionsForce {
		return fmt.Errorf("session %s is active; use --force to delete it", shortID(s.SessionID))
	}

	if err := storage.NewSessionRepository(db).Delete(s.SessionID); err != nil {
		return err
	}
	if active {
		if err := stateFile.ClearActiveSession(); err != nil {
			return err
		}
	}

	fmt.Printf("Deleted session %s (%d ops)\n", shortID(s.SessionID), s.OpCount)
	return nil
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if sessionsImportFile != "" {
		if text != "" {
			return errors.New("give either ops or --file, not both")
		}
		data, err := os.ReadFile(sessionsImportFile)
		if err != nil {
			return fmt.Errorf("failed to read ops file: %w", err)
		}
		text = string(data)
	}

	ops, err := types.ParseOps(text)
	if err != nil {
		return err
	}
	if len(ops) == 0 {
		return errors.New("no ops to import")
	}

	stateFile, err := loadState()
	if err != nil {
		return err
	}
	db, err := openDB(stateFile)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := importOps(db, ops, sessionsNotes)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d ops as session %s\n", len(ops), shortID(id))
	return nil
}

// importOps stores ops as a finished session.
func importOps(db *storage.DB, ops []types.Op, notes string) (string, error) {
	sessions := storage.NewSessionRepository(db)

	id, err := sessions.Create(storage.SourceImport, "", notes)
	if err != nil {
		return "", err
	}
	if err := storage.NewOpRepository(db).CreateBatch(id, 0, 0, ops); err != nil {
		sessions.Delete(id)
		return "", err
	}
	if err := sessions.End(id); err != nil {
		return "", err
	}
	return id, nil
}
