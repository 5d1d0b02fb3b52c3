package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nao1215/webwatch/internal/config"
	"github.com/spf13/cobra"
)

//go:embed templates/sites.json templates/webwatch.yml
var initTemplates embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter sites file and tool configuration",
		Long: `Init writes a starter sites.json and a .webwatch.yml configuration
file into the target directory.

The generated sites file contains an example entry; edit it to list the
pages you want to watch. The configuration file documents every
available setting with its default.

Examples:
  # Create sites.json and .webwatch.yml in the current directory
  webwatch init

  # Create the files somewhere else
  webwatch init -d /srv/watch

  # Overwrite existing files
  webwatch init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("dir", "d", ".",
		"Directory to create the starter files in")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing files")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	files := []struct {
		template string
		target   string
	}{
		{"templates/sites.json", filepath.Join(dir, config.DefaultSitesFile)},
		{"templates/webwatch.yml", filepath.Join(dir, config.DefaultConfigFile)},
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		if !force {
			if _, err := os.Stat(f.target); err == nil {
				return fmt.Errorf("file already exists: %s (use -f to overwrite)", f.target)
			}
		}

		content, err := initTemplates.ReadFile(f.template)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		if err := os.WriteFile(f.target, content, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.target, err)
		}
		fmt.Fprintf(out, "Created %s\n", f.target)
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Edit sites.json and list the pages to watch")
	fmt.Fprintln(out, "  2. Run 'webwatch check' to record the baseline")
	fmt.Fprintln(out, "  3. Schedule 'webwatch check' via cron or a systemd timer")

	return nil
}
