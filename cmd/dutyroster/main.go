package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/emilianohg/dutyroster/internal/config"
	"github.com/emilianohg/dutyroster/internal/db"
	"github.com/emilianohg/dutyroster/internal/models"
	"github.com/emilianohg/dutyroster/internal/planner"
	"github.com/emilianohg/dutyroster/internal/repository"
	"github.com/emilianohg/dutyroster/internal/roster"
	"github.com/emilianohg/dutyroster/internal/tui"
)

var rootCmd = &cobra.Command{
	Use:   "dutyroster",
	Short: "Daily task allocation for scheduled staff",
	Long:  `Dutyroster assigns each day's recurring tasks to the staff on shift, respecting skills, capacity, coverage and priority.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		database, err := db.Open(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer db.Close()

		// Run initial migration if this is a fresh database
		status, _ := db.GetMigrationStatus()
		if status != nil && status.CurrentVersion == 0 {
			if err := db.RunMigrations(); err != nil {
				fmt.Fprintf(os.Stderr, "Error running initial migrations: %v\n", err)
				os.Exit(1)
			}
		} else if status != nil && status.Pending {
			fmt.Fprintln(os.Stderr, "Database schema is out of date. Run 'dutyroster migrate' first.")
			os.Exit(1)
		}

		if err := tui.Run(database, cfg, today()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load skills, staff, tasks, shifts and order from a TOML or YAML roster",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		doc, err := roster.Load(args[0])
		if err != nil {
			fail("load", err)
		}

		database := openDatabase(loadConfig())
		defer db.Close()

		result, err := roster.Apply(database, doc)
		if err != nil {
			fail("load", err)
		}

		fmt.Printf("Roster: %s\n", args[0])
		fmt.Printf("Skills created: %d\n", result.SkillsCreated)
		fmt.Printf("Members: %d created, %d updated\n", result.MembersCreated, result.MembersUpdated)
		fmt.Printf("Tasks: %d created, %d updated\n", result.TasksCreated, result.TasksUpdated)
		fmt.Printf("Shifts: %d\n", result.Shifts)
		fmt.Printf("Ordered tasks: %d\n", result.Ordered)
		if result.Rules > 0 {
			fmt.Printf("Rules: %d\n", result.Rules)
		}
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate [date]",
	Short: "Generate assignments for a day or a run of days",
	Long: `Generate assignments starting at date (default: today).

Locked assignments are kept; everything else for the day is replaced.

Examples:
  dutyroster generate                    # Today
  dutyroster generate 2025-01-13         # One day
  dutyroster generate 2025-01-13 -n 7    # A week
  dutyroster generate -n 7 --parallel    # A week, days computed concurrently`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		date := today()
		if len(args) > 0 {
			var err error
			if date, err = models.ParseDate(args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid date: %s (expected YYYY-MM-DD)\n", args[0])
				os.Exit(1)
			}
		}

		days, _ := cmd.Flags().GetInt("days")
		if !cmd.Flags().Changed("days") {
			days = cfg.DefaultDays
		}
		verbose, _ := cmd.Flags().GetBool("verbose")

		database := openDatabase(cfg)
		defer db.Close()

		p := planner.New(database, cfg)
		if cmd.Flags().Changed("parallel") {
			parallel, _ := cmd.Flags().GetBool("parallel")
			p.SetParallel(parallel)
		}

		results, err := p.Generate(context.Background(), date, days)
		if err != nil {
			fail("generate", err)
		}

		for _, r := range results {
			if err := printDay(database, r, verbose); err != nil {
				fail("generate", err)
			}
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show stored assignments, workloads and unassigned tasks for a day",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date := today()
		if len(args) > 0 {
			var err error
			if date, err = models.ParseDate(args[0]); err != nil {
				fmt.Fprintf(os.Stderr, "Invalid date: %s (expected YYYY-MM-DD)\n", args[0])
				os.Exit(1)
			}
		}

		database := openDatabase(loadConfig())
		defer db.Close()

		if err := printStored(database, date); err != nil {
			fail("show", err)
		}
	},
}

var lockCmd = &cobra.Command{
	Use:   "lock <assignment-id>",
	Short: "Lock an assignment so regeneration keeps it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLocked(args[0], true)
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <assignment-id>",
	Short: "Unlock an assignment so regeneration may replace it",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setLocked(args[0], false)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if _, err := db.Open(cfg); err != nil {
			fail("migrate", fmt.Errorf("failed to open database: %w", err))
		}
		defer db.Close()

		before, err := db.GetMigrationStatus()
		if err != nil {
			fail("migrate", err)
		}
		if !before.Pending {
			fmt.Printf("Database is up to date (version %d).\n", before.CurrentVersion)
			return
		}
		if err := db.RunMigrations(); err != nil {
			fail("migrate", err)
		}
		fmt.Printf("Migrated from version %d to %d.\n", before.CurrentVersion, before.LatestVersion)
	},
}

func init() {
	generateCmd.Flags().IntP("days", "n", 1, "Number of consecutive days to generate (default: config default_days)")
	generateCmd.Flags().Bool("parallel", false, "Compute days concurrently (default: config parallel_days)")
	generateCmd.Flags().BoolP("verbose", "v", false, "Print per-task decisions")

	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(lockCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fail("config", fmt.Errorf("failed to load config: %w", err))
	}
	return cfg
}

// openDatabase opens the configured database and applies pending migrations, exiting on failure.
func openDatabase(cfg *config.Config) *sql.DB {
	database, err := db.OpenAndMigrate(cfg)
	if err != nil {
		fail("database", fmt.Errorf("failed to open database: %w", err))
	}
	return database
}

func setLocked(arg string, locked bool) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid assignment id: %s\n", arg)
		os.Exit(1)
	}

	database := openDatabase(loadConfig())
	defer db.Close()

	repo := repository.NewAssignmentRepo(database)
	assignment, err := repo.GetByID(id)
	if err != nil {
		fail("lock", err)
	}
	if assignment == nil {
		fmt.Fprintf(os.Stderr, "Assignment %d not found\n", id)
		os.Exit(1)
	}
	if err := repo.SetLocked(id, locked); err != nil {
		fail("lock", err)
	}

	verb := "Locked"
	if !locked {
		verb = "Unlocked"
	}
	fmt.Printf("%s assignment %d: %s for %s on %s\n", verb, id,
		assignment.TaskName, assignment.MemberName, assignment.Date)
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// fail records err in the error log and exits.
func fail(source string, err error) {
	logError(source, err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func logError(source string, err error) {
	logPath, pathErr := config.ErrorLogPath()
	if pathErr != nil {
		return
	}

	// Ensure directory exists
	if err := config.EnsureDirectories(); err != nil {
		return
	}

	f, fileErr := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if fileErr != nil {
		return
	}
	defer f.Close()

	fmt.Fprintf(f, "%s [%s] %v\n", time.Now().Format(time.RFC3339), source, err)
}
