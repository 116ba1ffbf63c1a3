package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change saved settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the state file",
	RunE: func(cmd *cobra.Command, args []string) error {
		stateFile, err := loadState()
		if err != nil {
			return err
		}
		state := stateFile.State()

		fmt.Printf("state file:      %s\n", stateFile.Path())
		fmt.Printf("db:              %s\n", valueOr(state.DBPath, "(default)"))
		fmt.Printf("compact after:   %s\n", valueOr(compactText(state.CompactAfter), "(never)"))
		fmt.Printf("active session:  %s\n", valueOr(state.ActiveSessionID, "(none)"))
		fmt.Printf("last device:     %s\n", valueOr(state.LastDeviceName, "(none)"))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting",
	Long: `Change a setting in the state file.

Keys:
  db        database file path ("" for the default)
  compact   compact the op log after this many ops (0 to never compact)`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	stateFile, err := loadState()
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	switch key {
	case "db":
		if value != "" {
			if value, err = filepath.Abs(value); err != nil {
				return err
			}
		}
		err = stateFile.SetDBPath(value)

	case "compact":
		n, convErr := strconv.Atoi(value)
		if convErr != nil || n < 0 {
			return fmt.Errorf("compact must be a non-negative number, got %q", value)
		}
		err = stateFile.SetCompactAfter(n)

	default:
		return fmt.Errorf("unknown key: %s (use db or compact)", key)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%s = %s\n", key, value)
	return nil
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func compactText(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n) + " ops"
}
