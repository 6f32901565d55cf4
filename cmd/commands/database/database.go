// Package database implements "xervo database".
package database

import (
	"context"
	"fmt"
	"strings"

	"onmodulus/xervo/cmd/commands/cmdutil"
	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/tui"
	"onmodulus/xervo/internal/tui/styles"
	"onmodulus/xervo/internal/util"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "database",
		Aliases: []string{"db", "databases"},
		Short:   "Manage hosted databases",
	}
	cmd.AddCommand(ListCommand())
	cmd.AddCommand(CreateCommand())
	cmd.AddCommand(UserCreateCommand())
	return cmd
}

// ListCommand returns the "database list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := cmdutil.OutputFormat(cmd)
			if err != nil {
				return err
			}
			s, err := cmdutil.AuthedSession()
			if err != nil {
				return err
			}
			defer s.Close()

			userID, err := s.UserID()
			if err != nil {
				return err
			}
			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			var dbs []domain.Database
			err = tui.Fetch(ctx, cmd.ErrOrStderr(), "Fetching databases...", func(ctx context.Context) error {
				dbs, err = s.Client.Databases.List(ctx, userID)
				return err
			})
			if err != nil {
				return fmt.Errorf("listing databases: %w", err)
			}

			out := cmd.OutOrStdout()
			if format != cmdutil.FormatTable {
				if dbs == nil {
					dbs = []domain.Database{}
				}
				return cmdutil.PrintStructured(out, format, dbs)
			}
			if len(dbs) == 0 {
				fmt.Fprintln(out, "No databases found.")
				return nil
			}
			rows := make([][]string, 0, len(dbs))
			for _, db := range dbs {
				rows = append(rows, []string{db.ID, db.Name, cmdutil.OrDash(db.Status), cmdutil.OrDash(db.Region), cmdutil.OrDash(db.URI)})
			}
			return cmdutil.Table(out, []string{"ID", "NAME", "STATUS", "REGION", "URI"}, rows)
		},
		SilenceUsage: true,
	}
	cmdutil.AddOutputFlag(cmd)
	return cmd
}

// CreateCommand returns the "database create" command.
func CreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a database",
		Long: `Create a database and wait until it is running. The region defaults to
the default-region setting.

Example:
  xervo database create --name orders --region us-east-1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			region, _ := cmd.Flags().GetString("region")
			name = strings.TrimSpace(name)
			if err := util.ValidateDatabaseName(name); err != nil {
				return err
			}

			s, err := cmdutil.AuthedSession()
			if err != nil {
				return err
			}
			defer s.Close()

			userID, err := s.UserID()
			if err != nil {
				return err
			}
			if region == "" {
				region = s.Config.DefaultRegion
			}

			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()
			s.OnInterrupt(cancel)

			db, err := s.Client.Databases.Create(ctx, domain.CreateDatabaseOpts{Name: name, UserID: userID, Region: region})
			if err != nil {
				return fmt.Errorf("creating database: %w", err)
			}

			pl := s.Poller(cmd.ErrOrStderr())
			ops := s.Operations(ctx, pl)
			defer ops.Close()

			op := &opstore.Operation{
				Command:      "database create",
				Kind:         opstore.KindDatabase,
				ResourceID:   db.ID,
				ResourceName: db.Name,
				TargetStatus: domain.StatusRunning,
				LastStatus:   db.Status,
			}
			snap, err := ops.Run(ctx, op, "Provisioning database...", nil)
			if err != nil {
				return fmt.Errorf("waiting for database %q: %w", db.Name, err)
			}
			if snap.Database != nil {
				db = snap.Database
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s Database %q is running.\n", styles.SuccessText.Render("✓"), db.Name)
			cmdutil.Detail(out, [][2]string{
				{"ID", db.ID},
				{"Region", db.Region},
				{"URI", db.URI},
			})
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().String("name", "", "Database name (required)")
	cmd.Flags().String("region", "", "Region to create the database in")
	cmd.MarkFlagRequired("name")
	return cmd
}

// UserCreateCommand returns the "database user-create" command.
func UserCreateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user-create <database-id>",
		Short: "Create a database user",
		Long: `Create a user on a database. The password is prompted for in a
terminal and read from the first line of stdin otherwise.

Example:
  echo "$DB_PASSWORD" | xervo database user-create 5f2a9c --username app`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			readOnly, _ := cmd.Flags().GetBool("read-only")
			username = strings.TrimSpace(username)
			if username == "" {
				return fmt.Errorf("--username is required")
			}

			password, err := tui.ReadPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			if password == "" {
				return fmt.Errorf("password cannot be empty")
			}

			s, err := cmdutil.AuthedSession()
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, cancel := cmdutil.Context(cmd)
			defer cancel()

			user := domain.DatabaseUser{Username: username, Password: password, ReadOnly: readOnly}
			if err := s.Client.Databases.CreateUser(ctx, args[0], user); err != nil {
				return fmt.Errorf("creating user %s: %w", username, err)
			}
			access := "read-write"
			if readOnly {
				access = "read-only"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s user %s on database %s.\n", access, username, args[0])
			return nil
		},
		SilenceUsage: true,
	}
	cmd.Flags().String("username", "", "Name of the new user (required)")
	cmd.Flags().Bool("read-only", false, "Grant read-only access")
	return cmd
}
