package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/ble"
)

// scanTimeout is long enough for macOS BLE discovery.
const scanTimeout = 5 * time.Second

var scanAttempts int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for GoCube smart cubes",
	RunE:  runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().IntVar(&scanAttempts, "attempts", 1, "Number of scans before giving up")
}

func runScan(cmd *cobra.Command, args []string) error {
	_, results, err := ScanForGoCube(scanAttempts)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No GoCube devices found")
		return nil
	}
	for _, r := range results {
		fmt.Printf("  - %s (UUID: %s, RSSI: %d)\n", r.Name, r.UUID, r.RSSI)
	}
	return nil
}

// ScanForGoCube scans for GoCube devices, retrying up to maxAttempts times
// while nothing is found. The returned client is ready to connect to one of
// the results.
func ScanForGoCube(maxAttempts int) (*ble.Client, []ble.ScanResult, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	fmt.Println("Scanning for GoCube devices...")

	client, err := ble.NewClient(logger)
	if err != nil {
		return nil, nil, fmt.Errorf("BLE not available: %w", err)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
		results, err := client.Scan(ctx, scanTimeout)
		cancel()

		if err != nil {
			fmt.Printf("Scan %d failed: %v\n", attempt, err)
			continue
		}

		if len(results) > 0 {
			fmt.Printf("Found: %s\n", results[0].Name)
			return client, results, nil
		}

		if attempt < maxAttempts {
			fmt.Printf("Scan %d: No devices found, retrying...\n", attempt)
		}
	}

	return client, nil, nil
}

// pickDevice prefers the last used device when it was found again.
func pickDevice(results []ble.ScanResult, lastID string) ble.ScanResult {
	if lastID != "" {
		for _, r := range results {
			if r.UUID == lastID {
				return r
			}
		}
	}
	return results[0]
}
