package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/habitkit/habits/internal/adapters/cli"
	"github.com/habitkit/habits/internal/adapters/repository"
	"github.com/habitkit/habits/internal/application/services"
	"github.com/habitkit/habits/internal/domain/entities"
	"github.com/habitkit/habits/internal/infrastructure/config"
	"github.com/habitkit/habits/internal/infrastructure/logger"
	"github.com/habitkit/habits/internal/infrastructure/metrics"
	"github.com/habitkit/habits/internal/ports"
)

// Version is set at build time with -ldflags.
var Version = "dev"

type rootOptions struct {
	configFile string
	file       string
	logLevel   string
}

// app is everything one invocation needs, built from configuration.
type app struct {
	cfg     *config.Config
	logger  *logger.Logger
	metrics *metrics.Metrics
	service *services.HabitService
}

// NewRootCommand creates the habits command tree. Running it without a
// subcommand starts the interactive menu.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "habits",
		Short:         "Track habits and how often you complete them",
		Long:          "habits keeps named habits with a description, a frequency and a completion count in a local JSON file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/habits/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.file, "file", "f", "", "Habit file (default habits.json)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(NewMenuCommand(opts))
	rootCmd.AddCommand(NewAddCommand(opts))
	rootCmd.AddCommand(NewCompleteCommand(opts))
	rootCmd.AddCommand(NewProgressCommand(opts))
	rootCmd.AddCommand(NewRemoveCommand(opts))
	rootCmd.AddCommand(NewResetCommand(opts))
	rootCmd.AddCommand(NewListCommand(opts))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// NewMenuCommand creates the menu command
func NewMenuCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Start the interactive habit menu",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMenu(cmd, opts)
		},
	}
}

// NewAddCommand creates the add command
func NewAddCommand(opts *rootOptions) *cobra.Command {
	addCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a new habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description, _ := cmd.Flags().GetString("description")
			frequency, _ := cmd.Flags().GetString("frequency")

			return withApp(opts, func(a *app) error {
				habit, err := a.service.AddHabit(cmd.Context(), ports.AddHabitRequest{
					Name:        args[0],
					Description: description,
					Frequency:   frequency,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Habit '%s' added!\n", habit.Name)
				return nil
			})
		},
	}

	addCmd.Flags().StringP("description", "d", "", "Habit description")
	addCmd.Flags().String("frequency", string(entities.DefaultFrequency), "Habit frequency (daily, weekly)")

	return addCmd
}

// NewCompleteCommand creates the complete command
func NewCompleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete NAME",
		Short: "Mark a habit as completed once",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				count, err := a.service.MarkCompleted(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Habit '%s' marked as completed! (%d)\n", args[0], count)
				return nil
			})
		},
	}
}

// NewProgressCommand creates the progress command
func NewProgressCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "progress NAME",
		Short: "Print the completion count of a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				count, err := a.service.ViewProgress(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Progress for '%s': %d\n", args[0], count)
				return nil
			})
		},
	}
}

// NewRemoveCommand creates the remove command
func NewRemoveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Remove a habit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.service.RemoveHabit(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Habit '%s' removed!\n", args[0])
				return nil
			})
		},
	}
}

// NewResetCommand creates the reset command
func NewResetCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Reset the completion count of every habit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				if err := a.service.ResetProgress(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All progress has been reset.")
				return nil
			})
		},
	}
}

// NewListCommand creates the list command
func NewListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every habit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				habits, err := a.service.ListHabits(cmd.Context())
				if err != nil {
					return err
				}
				if len(habits) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No habits yet.")
					return nil
				}

				t := table.New().
					Border(lipgloss.NormalBorder()).
					Headers("NAME", "FREQUENCY", "COMPLETIONS", "DESCRIPTION")
				for _, h := range habits {
					t.Row(h.Name, string(h.Habit.Frequency), strconv.Itoa(h.Habit.CompletionCount), h.Habit.Description)
				}
				fmt.Fprintln(cmd.OutOrStdout(), t.String())
				return nil
			})
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print habits version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "habits %s\n", Version)
		},
	}
}

func runMenu(cmd *cobra.Command, opts *rootOptions) error {
	return withApp(opts, func(a *app) error {
		menu := cli.NewMenu(a.service, cmd.InOrStdin(), cmd.OutOrStdout())
		return menu.Run(cmd.Context())
	})
}

// withApp builds the application for one invocation, runs fn and flushes
// logs and metrics afterwards.
func withApp(opts *rootOptions, fn func(a *app) error) error {
	a, err := newApp(opts)
	if err != nil {
		return err
	}
	defer a.close()

	return fn(a)
}

func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if opts.file != "" {
		cfg.Storage.File = opts.file
	}
	if opts.logLevel != "" {
		cfg.Logger.Level = opts.logLevel
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	appLogger = appLogger.WithSessionID(uuid.NewString())
	appLogger.Debugw("Starting habits",
		"app", cfg.App.Name,
		"environment", cfg.App.Environment,
		"file", cfg.Storage.File,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	store, err := repository.NewHabitStore(cfg.Storage.File,
		repository.WithLogger(appLogger),
		repository.WithMetrics(m),
	)
	if err != nil {
		appLogger.WithError(err).Errorw("Failed to open habit file", "path", cfg.Storage.File)
		_ = appLogger.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  appLogger,
		metrics: m,
		service: services.NewHabitService(store, appLogger, m),
	}, nil
}

func (a *app) close() {
	if a.cfg.Metrics.Enabled {
		if err := a.metrics.WriteTextfile(a.cfg.Metrics.Textfile); err != nil {
			a.logger.Warnw("Failed to write metrics", "path", a.cfg.Metrics.Textfile, "error", err)
		}
	}
	_ = a.logger.Close()
}
