// Intercede CLI - replays interception demos and applies intercede.toml policies
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/intercede/manifest"
)

var (
	verbose  int
	logPath  string
	startDir string
)

var rootCmd = &cobra.Command{
	Use:   "intercede",
	Short: "Reflection and interception layer for dynamic objects",
	Long: `intercede wraps dynamic objects in proxies whose handlers intercept
field reads and writes, membership tests, deletes, calls, construction and
prototype access. Policies declared in intercede.toml turn into handler tables.`,
	SilenceUsage:      true,
	PersistentPreRunE: configureLogging,
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "Increase log verbosity (repeatable)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().StringVarP(&startDir, "dir", "C", ".", "Directory to search for "+manifest.FileName)

	rootCmd.AddCommand(tourCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(inspectCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// configureLogging combines the manifest [log] section, if one is found,
// with the command line. Flags win over the manifest.
func configureLogging(cmd *cobra.Command, args []string) error {
	verbosity := 0
	var path *string

	m, err := manifest.FindAndLoad(startDir)
	if err != nil {
		return err
	}
	if m != nil {
		verbosity = m.Log.Verbosity
		path = m.LogFile()
	}

	verbosity += verbose
	if verbosity > 2 {
		verbosity = 2
	}
	if logPath != "" {
		path = &logPath
	}
	commonlog.Configure(verbosity, path)
	return nil
}

// loadManifest finds the manifest for commands that require one.
func loadManifest() (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(startDir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("no %s found from %s", manifest.FileName, startDir)
	}
	return m, nil
}
