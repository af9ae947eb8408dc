package main

import (
	"fmt"
	"strconv"

	"github.com/pantheonlabs/zeta/internal/config"
	"github.com/pantheonlabs/zeta/internal/db"
	"github.com/pantheonlabs/zeta/internal/models"
	"github.com/pantheonlabs/zeta/internal/onboarding"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project management commands",
	}

	cmd.AddCommand(newProjectCreateCmd())
	cmd.AddCommand(newProjectListCmd())
	cmd.AddCommand(newProjectShowCmd())
	return cmd
}

// openDB loads config and connects to the Zeta database.
func openDB(configPath string) (*gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	dc := cfg.Database
	return db.Connect(dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
}

func newProjectCreateCmd() *cobra.Command {
	var configPath, owner string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			project := models.Project{Name: args[0], OwnerID: owner}
			if err := gormDB.Create(&project).Error; err != nil {
				return fmt.Errorf("create project: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %d: %s\n", project.ID, project.Name)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	cmd.Flags().StringVar(&owner, "owner", "", "owner identifier")
	return cmd
}

func newProjectListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			var projects []models.Project
			if err := gormDB.Order("id").Find(&projects).Error; err != nil {
				return fmt.Errorf("list projects: %w", err)
			}
			out := cmd.OutOrStdout()
			for _, p := range projects {
				fmt.Fprintf(out, "%d\t%s\tonboarding %d/4\n", p.ID, p.Name, p.OnboardingStatus)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	return cmd
}

func newProjectShowCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a project's onboarding state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid project id %q", args[0])
			}
			gormDB, err := openDB(configPath)
			if err != nil {
				return err
			}
			var project models.Project
			if err := gormDB.First(&project, uint(id)).Error; err != nil {
				return fmt.Errorf("load project %d: %w", id, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project %d: %s\n", project.ID, project.Name)
			fmt.Fprintf(out, "Vision: %s\n", orDash(project.Vision))
			fmt.Fprintf(out, "Telegram connected: %v\n", project.TelegramConnected)
			status, err := onboarding.Sync(gormDB, project.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Onboarding: %d/4\n", status)
			if step, ok := onboarding.NextStep(status); ok {
				fmt.Fprintf(out, "Next step: %s\n", step)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "zeta.yaml", "path to Zeta config file")
	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
