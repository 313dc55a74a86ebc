package cli

import (
	"fmt"

	"Itemizer/internal/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func (c *CLI) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			c.log.Info("schema migrated", zap.String("driver", c.cfg.Database.Driver))
			return nil
		},
	}
}

func (c *CLI) newBanCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "ban <username|email>",
		Short: "Suspend an account and end its session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setBanned(cmd, args[0], true, reason)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "reason given in the notice email")
	return cmd
}

func (c *CLI) newUnbanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unban <username|email>",
		Short: "Reinstate a suspended account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.setBanned(cmd, args[0], false, "")
		},
	}
}

func (c *CLI) setBanned(cmd *cobra.Command, login string, banned bool, reason string) error {
	a, err := c.newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.services.Users.SetBanned(cmd.Context(), login, banned, reason)
	if err != nil {
		return err
	}
	state := "reinstated"
	if banned {
		state = "suspended"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) %s\n", user.Username, user.Email, state)
	return nil
}

func (c *CLI) newPurgeLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-logs",
		Short: "Delete organization logs older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			n, err := service.NewLogPurger(db, c.cfg.Logs.Retention, c.cfg.Logs.PurgeInterval, c.log).PurgeOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d organization logs\n", n)
			return nil
		},
	}
}
