package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/semajyllek/image-transform-app/internal/config"
	"github.com/semajyllek/image-transform-app/internal/imaging"
	"github.com/semajyllek/image-transform-app/internal/logger"
	"github.com/semajyllek/image-transform-app/internal/pipeline"
	"github.com/semajyllek/image-transform-app/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, problems := config.Load(os.Getenv)
	log := logger.NewConsole(cfg.LogLevel)
	for _, p := range problems {
		log.Warn().Err(p).Msg("ignoring invalid configuration")
	}

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("image-transform-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		case "apply":
			if err := runApply(cfg, log, os.Args[2:]); err != nil {
				log.Fatal().Err(err).Msg("apply failed")
			}
			return
		}
	}

	log.Debug().Str("version", Version).Str("built", BuildTime).Str("commit", GitCommit).Msg("starting image transform MCP server")

	srv := server.New(cfg, log)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}

func printHelp() {
	fmt.Println("image-transform-mcp - MCP server for image transformation pipelines")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  image-transform-mcp                 Serve MCP over stdin/stdout")
	fmt.Println("  image-transform-mcp apply -in IMG -pipeline FILE.json -out OUT")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  " + config.EnvLogLevel + "=debug              Log level (debug, info, warn, error)")
	fmt.Println("  " + config.EnvMaxPixels + "=N                 Largest image accepted, in pixels")
	fmt.Println("  " + config.EnvStrict + "=true                 Reject unknown kinds and out-of-range params")
	fmt.Println("  " + config.EnvFixedPointHysteresis + "=true   Iterate Canny hysteresis until stable")
	fmt.Println("  " + config.EnvSeed + "=N                      Seed random segment colors")
}

// runApply runs one pipeline file over one image and saves the result.
func runApply(cfg config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	in := fs.String("in", "", "input image")
	pipelinePath := fs.String("pipeline", "", "pipeline JSON file")
	out := fs.String("out", "", "output image (.png, .jpg, .bmp)")
	maxDim := fs.Int("max-dimension", 0, "downscale so neither side exceeds this (0 = off)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" || *pipelinePath == "" || *out == "" {
		return fmt.Errorf("-in, -pipeline and -out are required")
	}

	imaging.SetMaxPixels(cfg.MaxPixels)

	data, err := os.ReadFile(*pipelinePath)
	if err != nil {
		return fmt.Errorf("reading pipeline: %w", err)
	}
	stages, err := pipeline.Decode(data, cfg.Strict)
	if err != nil {
		return err
	}

	src, err := imaging.NewBufferCache().Load(*in, *maxDim)
	if err != nil {
		return err
	}
	result, err := pipeline.Recompute(context.Background(), src, stages, server.EnvFromConfig(cfg))
	if err != nil {
		return err
	}
	if err := imaging.Save(*out, result); err != nil {
		return err
	}

	log.Info().Str("in", *in).Str("out", *out).Int("stages", len(stages)).Msg("pipeline applied")
	return nil
}
