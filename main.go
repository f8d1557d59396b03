package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/df07/go-row-raytracer/pkg/config"
	"github.com/df07/go-row-raytracer/pkg/imagefile"
	"github.com/df07/go-row-raytracer/pkg/progress"
	"github.com/df07/go-row-raytracer/pkg/renderer"
	"github.com/df07/go-row-raytracer/pkg/scene"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// renderFlags holds the render command's flag values. A flag only
// overrides the config file when it was set on the command line.
type renderFlags struct {
	configPath   string
	scene        string
	width        int
	height       int
	samples      int
	depth        int
	workers      int
	seed         int64
	output       string
	format       string
	acceleration string
	hitPolicy    string
	noProgress   bool
	logLevel     string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "raytracer",
		Short:        "Row-parallel path tracer for sphere scenes",
		SilenceUsage: true,
	}
	root.AddCommand(newRenderCmd(), newScenesCmd())
	return root
}

func newRenderCmd() *cobra.Command {
	flags := &renderFlags{}
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a scene to an image file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveConfig(cmd, flags)
			if err != nil {
				return err
			}
			return runRender(cmd.Context(), cfg, cmd.ErrOrStderr())
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configPath, "config", "", "TOML or YAML config file")
	f.StringVar(&flags.scene, "scene", defaults.Scene, "Scene name (see 'raytracer scenes')")
	f.IntVar(&flags.width, "width", defaults.Width, "Image width in pixels")
	f.IntVar(&flags.height, "height", defaults.Height, "Image height in pixels, 0 = from the camera aspect ratio")
	f.IntVar(&flags.samples, "samples", defaults.SamplesPerPixel, "Samples per pixel, 0 = scene default")
	f.IntVar(&flags.depth, "depth", defaults.MaxDepth, "Maximum bounce depth, 0 = scene default")
	f.IntVar(&flags.workers, "workers", defaults.Workers, "Row workers, 0 = one per CPU")
	f.Int64Var(&flags.seed, "seed", defaults.Seed, "Base random seed")
	f.StringVarP(&flags.output, "output", "o", defaults.Output, "Output image path")
	f.StringVar(&flags.format, "format", defaults.Format, "Output format: ppm, png, bmp or tiff (default from extension)")
	f.StringVar(&flags.acceleration, "acceleration", defaults.Acceleration, "Hit acceleration: bvh, boxes or linear")
	f.StringVar(&flags.hitPolicy, "hit-policy", defaults.HitPolicy, "Hit policy: nearest or first")
	f.BoolVar(&flags.noProgress, "no-progress", !defaults.Progress, "Disable the progress bar")
	f.StringVar(&flags.logLevel, "log-level", defaults.LogLevel, "Log level: debug, info, warn or error")

	return cmd
}

func newScenesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, info := range scene.List() {
				if _, err := fmt.Fprintf(out, "%-10s %s\n", info.Name, info.Description); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// resolveConfig layers defaults, the optional config file and changed flags
func resolveConfig(cmd *cobra.Command, flags *renderFlags) (config.Config, error) {
	cfg := config.Default()
	if flags.configPath != "" {
		var err error
		if cfg, err = config.Load(flags.configPath); err != nil {
			return cfg, err
		}
	}

	changed := cmd.Flags().Changed
	if changed("scene") {
		cfg.Scene = flags.scene
	}
	if changed("width") {
		cfg.Width = flags.width
	}
	if changed("height") {
		cfg.Height = flags.height
	}
	if changed("samples") {
		cfg.SamplesPerPixel = flags.samples
	}
	if changed("depth") {
		cfg.MaxDepth = flags.depth
	}
	if changed("workers") {
		cfg.Workers = flags.workers
	}
	if changed("seed") {
		cfg.Seed = flags.seed
	}
	if changed("output") {
		cfg.Output = flags.output
	}
	if changed("format") {
		cfg.Format = flags.format
	}
	if changed("acceleration") {
		cfg.Acceleration = flags.acceleration
	}
	if changed("hit-policy") {
		cfg.HitPolicy = flags.hitPolicy
	}
	if changed("no-progress") {
		cfg.Progress = !flags.noProgress
	}
	if changed("log-level") {
		cfg.LogLevel = flags.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// createScene builds the configured scene with its camera overrides and
// hit settings applied
func createScene(cfg config.Config) (*scene.Scene, error) {
	var overrides []renderer.CameraConfig
	if !cfg.Camera.IsZero() {
		overrides = append(overrides, cfg.Camera.CameraConfig())
	}

	s, err := scene.Lookup(cfg.Scene, overrides...)
	if err != nil {
		return nil, err
	}

	// Both were checked by Validate. Registered builders return a built
	// scene, and neither setting invalidates the BVH.
	s.Acceleration, _ = scene.ParseAcceleration(cfg.Acceleration)
	s.HitPolicy, _ = scene.ParseHitPolicy(cfg.HitPolicy)
	return s, nil
}

// imageSize returns the output size and the camera aspect ratio to use. An
// explicit height wins over the scene's aspect ratio.
func imageSize(cfg config.Config, camera renderer.CameraConfig) (width, height int, aspect float64) {
	width = cfg.Width
	if cfg.Height > 0 {
		return width, cfg.Height, float64(width) / float64(cfg.Height)
	}

	aspect = camera.AspectRatio
	if aspect <= 0 {
		aspect = renderer.DefaultCameraConfig().AspectRatio
	}
	height = int(math.Round(float64(width) / aspect))
	if height < 1 {
		height = 1
	}
	return width, height, aspect
}

func runRender(ctx context.Context, cfg config.Config, stderr io.Writer) error {
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	s, err := createScene(cfg)
	if err != nil {
		return err
	}

	cameraConfig := s.CameraConfig
	width, height, aspect := imageSize(cfg, cameraConfig)
	cameraConfig.AspectRatio = aspect
	camera := renderer.NewCamera(cameraConfig)

	sampling := s.SamplingConfig
	if cfg.SamplesPerPixel > 0 {
		sampling.SamplesPerPixel = cfg.SamplesPerPixel
	}
	if cfg.MaxDepth > 0 {
		sampling.MaxDepth = cfg.MaxDepth
	}

	rt := renderer.NewRaytracer(s, camera, width, height)
	rt.SetSamplingConfig(sampling)
	rt.Workers = cfg.Workers
	rt.Seed = cfg.Seed
	rt.Logger = logger
	if cfg.Progress {
		rt.Progress = progress.New(stderr)
	} else {
		rt.Progress = progress.Nop{}
	}

	attrs := []any{
		"scene", cfg.Scene,
		"primitives", s.PrimitiveCount(),
		"acceleration", s.Acceleration,
		"hit_policy", s.HitPolicy,
	}
	if bounds, ok := s.Bounds.Bounds(); ok {
		attrs = append(attrs, "bounds_min", bounds.Min, "bounds_max", bounds.Max)
	}
	logger.Info("scene ready", attrs...)

	img, stats, err := rt.Render(ctx)
	if err != nil {
		return err
	}

	format, _ := cfg.OutputFormat()
	if err := imagefile.WriteFile(cfg.Output, format, img); err != nil {
		return err
	}

	logger.Info("image saved",
		"path", cfg.Output,
		"format", format,
		"width", width,
		"height", height,
		"box_tests", stats.BoxTests,
		"primitive_tests", stats.PrimitiveTests,
		"hits", stats.Hits,
		"average_luminance", renderer.CalculateAverageLuminance(img.RGBA()))
	return nil
}
