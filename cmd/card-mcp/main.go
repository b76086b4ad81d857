package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/cardscan/internal/app"
	"github.com/ironsheep/cardscan/internal/config"
	"github.com/ironsheep/cardscan/pkg/logger"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("card-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			fmt.Println("card-mcp - MCP server for playing card recognition")
			fmt.Println()
			fmt.Println("Usage: card-mcp [options]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --version, -v    Print version information")
			fmt.Println("  --help, -h       Print this help message")
			fmt.Println()
			fmt.Println("Environment variables:")
			fmt.Println("  CARDSCAN_TEMPLATE_DIR=template   Template library (rank/ and suit/)")
			fmt.Println("  CARDSCAN_LOG_LEVEL=debug         Enable debug logging")
			fmt.Println()
			fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
			fmt.Println("Configure it in your MCP client.")
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "card-mcp: %v\n", err)
		os.Exit(1)
	}

	// Configure logging to stderr (stdout is for MCP protocol)
	log, err := app.InitLogging(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "card-mcp: %v\n", err)
		os.Exit(1)
	}
	log.Debug(ctx, "card MCP server starting",
		logger.String("version", Version),
		logger.String("built", BuildTime),
		logger.String("commit", GitCommit))

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal(ctx, "startup failed", logger.Error(err))
	}
	defer a.Close()

	if err := a.Server(os.Stdin, os.Stdout, Version).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal(ctx, "server error", logger.Error(err))
	}
}
