package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/storage"
)

var statusScan bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show stored sessions, the active session and the last device",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusScan, "scan", false, "Also scan for GoCube devices")
}

func runStatus(cmd *cobra.Command, args []string) error {
	stateFile, err := loadState()
	if err != nil {
		return err
	}
	state := stateFile.State()

	fmt.Println("cuberender status")
	fmt.Println("=================")
	fmt.Println()
	fmt.Printf("State file: %s\n", stateFile.Path())

	path, err := resolveDBPath(stateFile)
	if err != nil {
		return err
	}
	fmt.Printf("Database: %s\n", path)

	db, err := storage.OpenAndMigrate(path)
	if err == nil {
		defer db.Close()
		if v, err := db.CurrentVersion(); err == nil {
			fmt.Printf("Schema version: %d\n", v)
		}

		sessionRepo := storage.NewSessionRepository(db)
		if last, _ := sessionRepo.GetLast(); last != nil {
			fmt.Printf("Last session: %s (%s, %d ops)\n",
				shortID(last.SessionID), last.StartedAt.Local().Format(time.RFC3339), last.OpCount)
		}
		all, _ := sessionRepo.List(100000)
		fmt.Printf("Total sessions: %d\n", len(all))
	} else {
		fmt.Printf("Database error: %v\n", err)
	}

	fmt.Println()

	if state.ActiveSessionID != "" {
		fmt.Printf("Active session: %s\n", state.ActiveSessionID)
		fmt.Println("  (Use 'cuberender play --resume active' to continue it)")
	} else {
		fmt.Println("No active session")
	}
	if state.CompactAfter > 0 {
		fmt.Printf("Compact after: %d ops\n", state.CompactAfter)
	}

	fmt.Println()

	if state.LastDeviceID != "" {
		fmt.Printf("Last device: %s (%s)\n", state.LastDeviceName, state.LastDeviceID)
	} else {
		fmt.Println("No device history")
	}

	if !statusScan {
		return nil
	}

	fmt.Println()
	_, results, err := ScanForGoCube(1)
	if err != nil {
		fmt.Printf("Scan error: %v\n", err)
		return nil
	}

	if len(results) == 0 {
		fmt.Println("No GoCube devices found")
		fmt.Println()
		fmt.Println("Tips:")
		fmt.Println("  - Ensure your GoCube is powered on")
		fmt.Println("  - Move the cube to wake it up")
		fmt.Println("  - Check that Bluetooth is enabled")
	} else {
		fmt.Printf("Found %d device(s):\n", len(results))
		for _, r := range results {
			fmt.Printf("  - %s (UUID: %s, RSSI: %d)\n", r.Name, r.UUID, r.RSSI)
		}
	}

	return nil
}
