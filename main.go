package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"syllabus-tracker/internal/app"
	"syllabus-tracker/internal/config"
	"syllabus-tracker/internal/database"
	"syllabus-tracker/internal/services"
	"syllabus-tracker/internal/utils"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "syllabus-tracker",
		Short:        "Weekly syllabus progress tracker with Telegram reminders",
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newRemindCmd(),
		newStatusCmd(),
		newImportCatalogCmd(),
	)
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot and the daily reminder job",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("create application: %w", err)
			}

			if err := application.Start(); err != nil {
				return fmt.Errorf("start application: %w", err)
			}
			defer application.Stop()

			waitForShutdown()
			log.Println("👋 Shutting down")
			return nil
		},
	}
}

func newRemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind",
		Short: "Run one due date check and send a reminder if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			application, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("create application: %w", err)
			}
			defer application.Stop()

			reminder, err := application.CheckReminders()
			if err != nil {
				return err
			}
			if reminder == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no reminder sent")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "sent %s reminder for %s\n", reminder.Urgency, reminder.Syllabus)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [syllabus]",
		Short: "Print progress statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			store, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			ps := services.NewProgressService(store, nil)
			stats, err := ps.Statistics(name)
			if err != nil {
				return err
			}
			settings, err := ps.Settings()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %d/%d tasks (%.1f%%), week %d\n",
				stats.Syllabus, stats.Completed, stats.Total, stats.Percent, stats.CurrentWeek)
			fmt.Fprintf(out, "days active: %d\n", stats.DaysActive)
			if stats.HasDueDate && stats.RemainingTasks > 0 {
				fmt.Fprintf(out, "current task: %s\n", utils.DueStatus(stats.DaysRemaining))
			}
			if stats.Estimate.Available {
				fmt.Fprintf(out, "estimated completion: %s\n", utils.FormatDate(stats.Estimate.Date))
			}
			reminders := "off"
			if settings.RemindersEnabled {
				reminders = "on"
			}
			fmt.Fprintf(out, "interval: %d days, reminders: %s\n", settings.Interval(), reminders)
			return nil
		},
	}
}

func newImportCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-catalog <file>",
		Short: "Replace the stored catalog with a syllabi JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			catalog, err := database.NewFileStore(args[0], "").LoadCatalog()
			if err != nil {
				return err
			}
			if len(catalog.Syllabi) == 0 {
				return fmt.Errorf("%s: no syllabi found", args[0])
			}

			store, err := app.OpenStore(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveCatalog(catalog); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d syllabi\n", len(catalog.Syllabi))
			return nil
		},
	}
}

func waitForShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
}
