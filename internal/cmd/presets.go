package cmd

import (
	"fmt"
	"strings"

	"github.com/kyutae-lim/concord/internal/config"
	"github.com/kyutae-lim/concord/internal/preset"
	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the available element presets",
	Long: `List the element presets a debate can be started with. Custom presets
from the configured preset file are merged over the built-in catalog.`,
	RunE: runPresets,
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	catalog := preset.NewCatalog()
	if cfg.Debate.PresetFile != "" {
		if err := catalog.LoadFile(cfg.Debate.PresetFile); err != nil {
			return err
		}
	}

	for _, p := range catalog.List() {
		fmt.Printf("%s\n", headingStyle.Render(p.Name))
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		fmt.Printf("  elements: %s\n", strings.Join(p.Elements, ", "))
	}
	return nil
}
