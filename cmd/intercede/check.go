package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/intercede/manifest"
	"github.com/chazu/intercede/policy"
)

// =============================================================================
// CHECK COMMAND - manifest validation
// =============================================================================

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate an intercede.toml and list its policies",
	Long: `Parses and validates a policy manifest. Without a file argument the
nearest intercede.toml at or above --dir is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	var (
		m      *manifest.Manifest
		source string
		err    error
	)
	if len(args) == 1 {
		source = args[0]
		data, rerr := os.ReadFile(source)
		if rerr != nil {
			return fmt.Errorf("cannot read %s: %w", source, rerr)
		}
		m, err = manifest.Parse(data, source)
	} else {
		m, err = loadManifest()
		if m != nil {
			source = filepath.Join(m.Dir, manifest.FileName)
		}
	}
	if err != nil {
		return err
	}
	return describeManifest(cmd.OutOrStdout(), source, m)
}

func describeManifest(w io.Writer, source string, m *manifest.Manifest) error {
	fmt.Fprintf(w, "%s: ok (%d policies)\n", source, len(m.Policies))
	for i := range m.Policies {
		p := &m.Policies[i]
		opts, err := p.Options(nil)
		if err != nil {
			return err
		}
		h := policy.Handlers(opts)
		kinds := h.Kinds()
		names := make([]string, len(kinds))
		for j, k := range kinds {
			names[j] = k.String()
		}
		intercepts := strings.Join(names, ", ")
		if intercepts == "" {
			intercepts = "nothing"
		}
		fmt.Fprintf(w, "  %-12s %d rules, intercepts %s\n", p.Name, len(opts.Rules), intercepts)
	}
	return nil
}
