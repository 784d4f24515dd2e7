package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/yukikurage/learnflow-api/internal/config"
	"github.com/yukikurage/learnflow-api/internal/logger"
)

var CLI struct {
	Version  kong.VersionFlag
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn" env:"LOG_LEVEL"`

	Migrate MigrateCmd `cmd:"" help:"Run database migrations."`
	Seed    SeedCmd    `cmd:"" help:"Create the demo account with sample goals and resources."`
	Report  ReportCmd  `cmd:"" help:"Write an analytics report for a user."`
	Export  ExportCmd  `cmd:"" help:"Write a data export for a user."`
	Remote  struct {
		Summary RemoteSummaryCmd `cmd:"" help:"Log in to a running server and print the analytics summary." default:"1"`
	} `cmd:"" help:"Talk to a running LearnFlow server."`
}

// Context is passed to every command's Run method.
type Context struct {
	Config *config.Config
}

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file found, using environment variables")
	}

	ctx := kong.Parse(&CLI,
		kong.Name("learnctl"),
		kong.Description("Administration tool for the LearnFlow API"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": "v1.0.0"},
	)

	cfg := config.Load()
	if err := logger.Init(logger.Config{Level: CLI.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := ctx.Run(&Context{Config: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
