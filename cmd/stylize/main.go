package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"stylegen/internal/imagegen"
	"stylegen/internal/infra"
	"stylegen/internal/postprocess"
	"stylegen/internal/service"
	"stylegen/internal/style"
)

func main() {
	var (
		inFlag           string
		outFlag          string
		promptFlag       string
		styleFlag        string
		instructionsFlag string
		backendFlag      string
		widthFlag        int
		heightFlag       int
		opts             style.Options
		listFlag         bool
	)
	flag.StringVar(&inFlag, "in", "", "source image to restyle (omit for text-to-image)")
	flag.StringVar(&outFlag, "out", "out.png", "destination PNG path")
	flag.StringVar(&promptFlag, "prompt", "", "content description")
	flag.StringVar(&styleFlag, "style", "", "style name, see -list")
	flag.StringVar(&instructionsFlag, "instructions", "", "extra guidance appended to the prompt")
	flag.StringVar(&backendFlag, "backend", "", "override BACKEND (sdwebui or synthetic)")
	flag.IntVar(&widthFlag, "width", imagegen.DefaultDimension, "output width for text-to-image")
	flag.IntVar(&heightFlag, "height", imagegen.DefaultDimension, "output height for text-to-image")
	flag.StringVar(&opts.Film, "film", "", "ghibli film preset")
	flag.StringVar(&opts.Scene, "scene", "", "ghibli scene preset")
	flag.StringVar(&opts.Era, "era", "", "pixel art console era")
	flag.StringVar(&opts.Game, "game", "", "pixel art game preset")
	flag.IntVar(&opts.PixelSize, "pixel-size", 0, "pixel art block size")
	flag.IntVar(&opts.ColorCount, "colors", 0, "pixel art palette size")
	flag.BoolVar(&listFlag, "list", false, "print the style catalog and exit")
	flag.Parse()

	if listFlag {
		for _, entry := range style.Catalog() {
			fmt.Printf("%-14s %-14s %s\n", entry.ID, entry.DisplayName, strings.Join(entry.Aliases, ", "))
		}
		return
	}

	_ = godotenv.Load()
	if backendFlag != "" {
		_ = os.Setenv("BACKEND", backendFlag)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := infra.NewLogger(cfg.AppEnv, cfg.LogLevel)

	req := imagegen.GenerationRequest{
		ID:           uuid.NewString(),
		Prompt:       promptFlag,
		Style:        styleFlag,
		StyleOptions: opts,
		Instructions: instructionsFlag,
		Width:        widthFlag,
		Height:       heightFlag,
	}
	if inFlag != "" {
		src, err := readImage(inFlag)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read %s: %v\n", inFlag, err)
			os.Exit(1)
		}
		req.Source = src
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := service.NewOrchestrator(cfg, logger, nil).Generate(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		os.Exit(1)
	}
	if err := writePNG(outFlag, res.Image); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", outFlag, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%s, style=%s, %.2fs)\n", outFlag, res.Mode, res.Spec.Style, res.Duration.Seconds())
}

func readImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return postprocess.Decode(data)
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
