package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/programme-lv/contest-portal/admin"
	"github.com/programme-lv/contest-portal/adminlogin"
	"github.com/programme-lv/contest-portal/conf"
	"github.com/programme-lv/contest-portal/contestapi"
	"github.com/programme-lv/contest-portal/page"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	var backendURL, logFile, logLevel, configPath string
	var pollSeconds int

	rootCmd := &cobra.Command{
		Use:   "admintui",
		Short: "Terminal dashboard for the contest admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(backendURL, configPath, logFile, logLevel, pollSeconds)
		},
	}

	backendDefault := os.Getenv("BACKEND_URL")
	if backendDefault == "" {
		backendDefault = conf.DefaultBackendURL
	}
	rootCmd.Flags().StringVarP(&backendURL, "backend", "b", backendDefault, "Contest backend URL")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", conf.DefaultConfigPath, "Contest TOML file (problem names)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "admintui.log", "Log file path")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level [debug, info, warn, error]")
	rootCmd.Flags().IntVar(&pollSeconds, "poll", 0, "Refresh interval in seconds (0 uses the config)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(backendURL, configPath, logFile, logLevel string, pollSeconds int) error {
	logger, closer, err := InitializeLogger(logLevel, logFile)
	if err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	defer closer.Close()

	cfg, err := conf.FromEnv(func(key string) string {
		switch key {
		case "BACKEND_URL":
			return backendURL
		case "PORTAL_CONFIG":
			return configPath
		case "PORTAL_JWT_KEY":
			// no sessions are signed here
			return "admintui"
		}
		return os.Getenv(key)
	}, os.ReadFile)
	if err != nil {
		return err
	}
	interval := cfg.Polling.Admin()
	if pollSeconds > 0 {
		interval = time.Duration(pollSeconds) * time.Second
	}

	client, err := contestapi.New(cfg.BackendURL,
		contestapi.WithTimeout(cfg.HTTPTimeout),
		contestapi.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a := &app{ctx: ctx}
	program := tea.NewProgram(newModel(a), tea.WithAltScreen())

	a.login = adminlogin.New(client,
		page.RenderFunc[adminlogin.Screen](func(s adminlogin.Screen) { program.Send(loginMsg(s)) }),
		page.NavigateFunc(func(path string) { program.Send(navMsg(path)) }))
	a.dash = admin.New(client,
		page.RenderFunc[admin.Screen](func(s admin.Screen) { program.Send(screenMsg(s)) }),
		programDialog{program: program},
		admin.Config{
			ProblemNames: cfg.Contest.Names(),
			ProblemCount: cfg.Contest.ProblemCount,
			PollInterval: interval,
			Location:     time.Local,
			Logger:       logger,
		})
	defer a.dash.Close()

	log.Info().Str("backend", cfg.BackendURL).Msg("admin dashboard starting")
	if _, err := program.Run(); err != nil {
		log.Error().Err(err).Msg("dashboard exited")
		return err
	}
	return nil
}

// programDialog confirms unconditionally (the model asked y/n before the
// action ran) and shows alerts in the status line.
type programDialog struct {
	program *tea.Program
}

func (d programDialog) Confirm(string) bool { return true }

func (d programDialog) Alert(msg string) {
	d.program.Send(alertMsg(msg))
}
