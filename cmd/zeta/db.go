package main

import (
	"fmt"

	"github.com/pantheonlabs/zeta/internal/config"
	"github.com/pantheonlabs/zeta/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the Zeta database",
		Long:  "Creates the database and migrates all tables.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dc := cfg.Database
	adminDB, err := db.ConnectAdmin(dc.Host, dc.Port, dc.User, dc.Password)
	if err != nil {
		return fmt.Errorf("connect to MySQL at %s:%d: %w", dc.Host, dc.Port, err)
	}
	fmt.Fprintf(out, "Connected to MySQL at %s:%d\n", dc.Host, dc.Port)

	if err := db.CreateDatabase(adminDB, dc.Name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Database %s ready\n", dc.Name)

	gormDB, err := db.Connect(dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", dc.Name, err)
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	return nil
}

func newDBResetCmd() *cobra.Command {
	var configPath string
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and recreate the Zeta database",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to drop the database without --yes")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			dc := cfg.Database
			adminDB, err := db.ConnectAdmin(dc.Host, dc.Port, dc.User, dc.Password)
			if err != nil {
				return err
			}
			if err := db.DropDatabase(adminDB, dc.Name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Dropped %s\n", dc.Name)
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the destructive reset")
	return cmd
}
