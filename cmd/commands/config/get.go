package config

import (
	"fmt"
	"strings"

	"onmodulus/xervo/internal/config"
	"onmodulus/xervo/internal/tui/styles"
	"onmodulus/xervo/internal/util"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Long: "Get a persistent configuration value. Without a key, every value is\n" +
			"listed along with the effective API endpoint.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  xervo config get\n" +
			"  xervo config get api-host",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	cmd.Flags().String("key", "", "Configuration key to fetch (same as the positional argument)")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	keyFlag, _ := cmd.Flags().GetString("key")
	if len(args) == 1 {
		keyFlag = args[0]
	}
	keyFlag = strings.TrimSpace(keyFlag)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if keyFlag == "" {
		out := cmd.OutOrStdout()
		for _, spec := range config.Keys {
			value := spec.Get(cfg)
			if value == "" {
				value = styles.MutedText.Render("(not set)")
			}
			fmt.Fprintf(out, "%s: %s\n", spec.Name, value)
		}
		scheme := "https"
		if !cfg.SSL() {
			scheme = "http"
		}
		fmt.Fprintf(out, "\neffective endpoint: %s://%s:%d\n", scheme, cfg.Host(), cfg.Port())
		return nil
	}

	spec := config.Lookup(util.NormalizeKey(keyFlag))
	if spec == nil {
		return fmt.Errorf("unknown configuration key %q (valid: %s)", keyFlag, strings.Join(config.KeyNames(), ", "))
	}

	value := spec.Get(cfg)
	if value == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "not set")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), value)
	}
	return nil
}
