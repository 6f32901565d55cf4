package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"onmodulus/xervo/cmd/commands/addon"
	"onmodulus/xervo/cmd/commands/auth"
	cfgcmd "onmodulus/xervo/cmd/commands/config"
	"onmodulus/xervo/cmd/commands/database"
	"onmodulus/xervo/cmd/commands/image"
	"onmodulus/xervo/cmd/commands/operations"
	"onmodulus/xervo/cmd/commands/project"
	"onmodulus/xervo/cmd/commands/servo"
	"onmodulus/xervo/internal/logging"
	"onmodulus/xervo/internal/tui/styles"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd(closeLog *func() error) *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "xervo",
		Short: "Command-line client for the Xervo hosting platform",
		Long: `xervo deploys and operates projects on the Xervo platform: create
projects, upload code, start, stop and scale them, and manage their
add-ons, domains, certificates and databases.

Quick start:
  xervo auth login                 # Log in and store your API token
  xervo project create             # Interactive project creation
  xervo project deploy -p myapp    # Upload the current directory
  xervo project logs -p myapp      # Show the running servos' output`,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			logFile, _ := cmd.Flags().GetString("log-file")
			logger, closer := logging.Setup(logging.Options{
				Verbose:  verbose,
				Console:  cmd.ErrOrStderr(),
				NoColor:  os.Getenv("NO_COLOR") != "",
				FilePath: logFile,
			})
			*closeLog = closer
			logger.Debug("command started", "command", cmd.CommandPath(), "args", len(args))
			return nil
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Print debug logs to stderr")
	cmd.PersistentFlags().String("log-file", "", `Debug log file ("-" disables it; default in the config directory)`)

	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(project.NewCommand())
	cmd.AddCommand(addon.NewCommand())
	cmd.AddCommand(servo.NewCommand())
	cmd.AddCommand(database.NewCommand())
	cmd.AddCommand(image.NewCommand())
	cmd.AddCommand(operations.NewCommand())

	return cmd
}

// Execute runs the root command and exits non-zero on error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	closeLog := func() error { return nil }
	root := rootCmd(&closeLog)
	err := root.Execute()
	if err != nil {
		slog.Debug("command failed", "error", err)
		fmt.Fprintf(root.ErrOrStderr(), "%s %v\n", styles.ErrorText.Render("Error:"), err)
	}
	_ = closeLog()
	if err != nil {
		os.Exit(1)
	}
}
