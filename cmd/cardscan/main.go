package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ironsheep/cardscan/internal/app"
	"github.com/ironsheep/cardscan/internal/config"
	"github.com/ironsheep/cardscan/internal/pipeline"
	"github.com/ironsheep/cardscan/pkg/logger"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("cardscan - playing card recognizer")
	fmt.Println()
	fmt.Println("Usage: cardscan <input-dir> <output-dir>")
	fmt.Println()
	fmt.Println("Every image in <input-dir> is scanned for cards. An annotated copy with")
	fmt.Println("card outlines and labels is written to <output-dir> under the same name,")
	fmt.Println("and one line per image is printed to stdout.")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Configuration (YAML file, .env or environment):")
	fmt.Println("  CARDSCAN_CONFIG=cardscan.yaml   Optional YAML config file")
	fmt.Println("  CARDSCAN_TEMPLATE_DIR=template  Template library (rank/ and suit/)")
	fmt.Println("  CARDSCAN_WORKERS=4              Images processed concurrently")
	fmt.Println("  CARDSCAN_FAIL_FAST=true         Stop at the first bad image")
	fmt.Println("  CARDSCAN_BACKEND=opencv         Use the OpenCV backend (gocv builds)")
	fmt.Println("  CARDSCAN_METRICS_FILE=out.prom  Write Prometheus metrics after the run")
	fmt.Println("  CARDSCAN_LOG_LEVEL=debug        Enable debug logging")
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("cardscan %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			usage()
			return
		}
	}
	if len(os.Args) != 3 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1], os.Args[2]))
}

func run(ctx context.Context, in, out string) int {
	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cardscan: %v\n", err)
		return 1
	}

	// Logs go to stderr; stdout carries the per-image results.
	log, err := app.InitLogging(cfg, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cardscan: %v\n", err)
		return 1
	}
	defer logger.Sync()
	log.Debug(ctx, "starting", logger.String("version", Version), logger.String("commit", GitCommit))

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error(ctx, "startup failed", logger.Error(err))
		return 1
	}
	defer a.Close()

	sum, err := a.RunBatch(ctx, in, out)
	if sum != nil {
		printSummary(sum)
	}
	if err != nil {
		log.Error(ctx, "batch failed", logger.Error(err))
		return 1
	}
	return 0
}

func printSummary(sum *pipeline.Summary) {
	for _, f := range sum.Files {
		if f.Status != pipeline.StatusOK {
			fmt.Printf("%s\t%s\n", f.Name, f.Status)
			continue
		}
		labels := make([]string, len(f.Detections))
		for i, d := range f.Detections {
			labels[i] = d.Label
		}
		fmt.Printf("%s\t%s\n", f.Name, strings.Join(labels, " "))
	}
}
