// Package cli implements the command-line interface for cuberender.
package cli

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cuberender/internal/config"
	"github.com/SeamusWaldron/cuberender/internal/storage"
)

const version = "0.2.0"

var (
	// Global flags
	dbPath  string
	verbose bool

	logger = logrus.New()
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "cuberender",
	Short: "Animated Rubik's cube driven by face-turn operations",
	Long: `cuberender keeps a log of face-turn operations and turns it into one
transform per cubie, ready for drawing.

Type moves on the keyboard, mirror a GoCube smart cube over Bluetooth, or
replay stored sessions in a window or in the terminal.`,
	Version: version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.cuberender/cuberender.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// resolveDBPath picks the database path from the flag, then the state file,
// then the default location.
func resolveDBPath(stateFile *config.StateFile) (string, error) {
	if dbPath != "" {
		return dbPath, nil
	}
	if stateFile != nil && stateFile.DBPath() != "" {
		return stateFile.DBPath(), nil
	}
	dir, err := config.DefaultDir()
	if err != nil {
		return "", err
	}
	return storage.DefaultDBPath(dir)
}

// openDB opens and migrates the database.
func openDB(stateFile *config.StateFile) (*storage.DB, error) {
	path, err := resolveDBPath(stateFile)
	if err != nil {
		return nil, err
	}

	db, err := storage.OpenAndMigrate(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.WithField("path", path).Debug("database opened")

	return db, nil
}

// loadState loads the default state file.
func loadState() (*config.StateFile, error) {
	stateFile, err := config.NewDefaultStateFile()
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	return stateFile, nil
}
