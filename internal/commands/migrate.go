package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/beesaferoot/rental-engine/internal/migration"
	"github.com/beesaferoot/rental-engine/internal/schema"
)

func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}
	cmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	cmd.AddCommand(upCmd(), downCmd(), statusCmd(), historyCmd(), verifyCmd())
	return cmd
}

func upCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			debug, _ := cmd.Flags().GetBool("debug")

			e, err := setup(debug)
			if err != nil {
				return err
			}
			defer e.close()
			return runUp(cmd, migration.NewMigrator(e.db), dryRun)
		},
	}
	cmd.Flags().Bool("dry-run", false, "Show pending migrations without executing them")
	return cmd
}

func runUp(cmd *cobra.Command, m *migration.Migrator, dryRun bool) error {
	out := cmd.OutOrStdout()
	pending, err := m.Pending()
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Fprintln(out, "No pending migrations.")
		return nil
	}
	if dryRun {
		fmt.Fprintln(out, "Pending migrations:")
		for _, mig := range pending {
			fmt.Fprintf(out, "- %s (%s)\n", mig.Name, mig.Version)
		}
		return nil
	}
	applied, err := m.Up()
	for _, mig := range applied {
		fmt.Fprintf(out, "Successfully applied migration: %s (%s)\n", mig.Name, mig.Version)
	}
	return err
}

func downCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			e, err := setup(debug)
			if err != nil {
				return err
			}
			defer e.close()
			return runDown(cmd, migration.NewMigrator(e.db))
		},
	}
}

func runDown(cmd *cobra.Command, m *migration.Migrator) error {
	out := cmd.OutOrStdout()
	rolled, err := m.Down()
	if err != nil {
		return err
	}
	if rolled == nil {
		fmt.Fprintln(out, "No migrations to roll back.")
		return nil
	}
	fmt.Fprintf(out, "Successfully rolled back migration: %s (%s)\n", rolled.Name, rolled.Version)
	return nil
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show status of all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			e, err := setup(debug)
			if err != nil {
				return err
			}
			defer e.close()
			return runStatus(cmd, migration.NewMigrator(e.db))
		},
	}
}

func runStatus(cmd *cobra.Command, m *migration.Migrator) error {
	out := cmd.OutOrStdout()
	applied, err := m.GetAppliedVersions()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", "Version", "Name", "Status")
	for _, mig := range m.Migrations() {
		status := "Pending"
		if applied[mig.Version] {
			status = "Applied"
		}
		fmt.Fprintf(out, "%-16s  %-30s  %-8s\n", mig.Version, mig.Name, status)
	}
	return nil
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show migration history",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			e, err := setup(debug)
			if err != nil {
				return err
			}
			defer e.close()
			return runHistory(cmd, migration.NewMigrator(e.db))
		},
	}
}

func runHistory(cmd *cobra.Command, m *migration.Migrator) error {
	out := cmd.OutOrStdout()
	records, err := m.Applied()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No migrations have been applied yet.")
		return nil
	}
	fmt.Fprintf(out, "%-16s  %-30s  %-24s\n", "Version", "Name", "Applied At")
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		fmt.Fprintf(out, "%-16s  %-30s  %-24s\n", r.Version, r.Name, r.AppliedAt.Format(time.RFC3339))
	}
	return nil
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check that the database schema matches the models",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			e, err := setup(debug)
			if err != nil {
				return err
			}
			defer e.close()
			return runVerify(cmd, e.db)
		},
	}
}

func runVerify(cmd *cobra.Command, db *gorm.DB) error {
	out := cmd.OutOrStdout()
	drift, err := schema.Check(db, migration.Models()...)
	if err != nil {
		return err
	}
	if len(drift) == 0 {
		fmt.Fprintln(out, "Schema matches models.")
		return nil
	}
	for _, d := range drift {
		fmt.Fprintf(out, "- %s\n", d)
	}
	return fmt.Errorf("schema drift: %d difference(s), run migrate up", len(drift))
}
