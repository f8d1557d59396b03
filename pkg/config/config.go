// Package config loads render settings from TOML or YAML files
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-row-raytracer/pkg/core"
	"github.com/df07/go-row-raytracer/pkg/imagefile"
	"github.com/df07/go-row-raytracer/pkg/renderer"
	"github.com/df07/go-row-raytracer/pkg/scene"
)

// Config holds everything needed for one render
type Config struct {
	Scene  string `toml:"scene" yaml:"scene"`
	Output string `toml:"output" yaml:"output"`
	Format string `toml:"format" yaml:"format"` // Empty = from the output extension

	Width  int `toml:"width" yaml:"width"`
	Height int `toml:"height" yaml:"height"` // 0 = from the camera aspect ratio

	SamplesPerPixel int   `toml:"samples_per_pixel" yaml:"samples_per_pixel"` // 0 = scene default
	MaxDepth        int   `toml:"max_depth" yaml:"max_depth"`                 // 0 = scene default
	Workers         int   `toml:"workers" yaml:"workers"`                     // 0 = one per CPU
	Seed            int64 `toml:"seed" yaml:"seed"`

	Acceleration string `toml:"acceleration" yaml:"acceleration"`
	HitPolicy    string `toml:"hit_policy" yaml:"hit_policy"`

	Progress bool   `toml:"progress" yaml:"progress"`
	LogLevel string `toml:"log_level" yaml:"log_level"`

	Camera CameraOverride `toml:"camera" yaml:"camera"`
}

// CameraOverride replaces parts of a scene's camera. Unset fields keep the
// scene's value.
type CameraOverride struct {
	LookFrom      []float64 `toml:"look_from" yaml:"look_from"`
	LookAt        []float64 `toml:"look_at" yaml:"look_at"`
	Up            []float64 `toml:"up" yaml:"up"`
	VFov          float64   `toml:"vfov" yaml:"vfov"`
	Aperture      float64   `toml:"aperture" yaml:"aperture"`
	FocusDistance float64   `toml:"focus_distance" yaml:"focus_distance"`
}

// Default returns the settings used when no file or flag says otherwise
func Default() Config {
	return Config{
		Scene:        "default",
		Output:       "render.ppm",
		Width:        400,
		Acceleration: scene.AccelBVH.String(),
		HitPolicy:    scene.NearestHit.String(),
		Progress:     true,
		LogLevel:     "info",
	}
}

// Load reads path on top of Default. The decoder is chosen by extension and
// unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	expanded, err := homedir.Expand(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to expand config path: %w", err)
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(expanded)); ext {
	case ".toml":
		err = decodeTOML(data, &cfg)
	case ".yaml", ".yml":
		err = decodeYAML(data, &cfg)
	default:
		return cfg, fmt.Errorf("unsupported config format %q (want .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

func decodeTOML(data []byte, cfg *Config) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(cfg)
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Validate reports every invalid setting at once
func (c Config) Validate() error {
	var errs []error

	if c.Scene == "" {
		errs = append(errs, errors.New("scene must be set"))
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output must be set"))
	}
	if c.Width <= 0 {
		errs = append(errs, fmt.Errorf("width must be positive, got %d", c.Width))
	}
	if c.Height < 0 {
		errs = append(errs, fmt.Errorf("height must not be negative, got %d", c.Height))
	}
	if c.SamplesPerPixel < 0 {
		errs = append(errs, fmt.Errorf("samples_per_pixel must not be negative, got %d", c.SamplesPerPixel))
	}
	if c.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if _, err := c.OutputFormat(); err != nil {
		errs = append(errs, err)
	}
	if _, err := scene.ParseAcceleration(c.Acceleration); err != nil {
		errs = append(errs, err)
	}
	if _, err := scene.ParseHitPolicy(c.HitPolicy); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	vectors := []struct {
		name string
		v    []float64
	}{
		{"camera.look_from", c.Camera.LookFrom},
		{"camera.look_at", c.Camera.LookAt},
		{"camera.up", c.Camera.Up},
	}
	for _, vec := range vectors {
		if len(vec.v) != 0 && len(vec.v) != 3 {
			errs = append(errs, fmt.Errorf("%s needs 3 components, got %d", vec.name, len(vec.v)))
		}
	}
	if c.Camera.VFov < 0 || c.Camera.VFov >= 180 {
		errs = append(errs, fmt.Errorf("camera.vfov must be in [0, 180), got %g", c.Camera.VFov))
	}
	if c.Camera.Aperture < 0 {
		errs = append(errs, fmt.Errorf("camera.aperture must not be negative, got %g", c.Camera.Aperture))
	}
	if c.Camera.FocusDistance < 0 {
		errs = append(errs, fmt.Errorf("camera.focus_distance must not be negative, got %g", c.Camera.FocusDistance))
	}

	return errors.Join(errs...)
}

// OutputFormat returns Format, or the format implied by Output when Format is empty
func (c Config) OutputFormat() (imagefile.Format, error) {
	if c.Format != "" {
		return imagefile.ParseFormat(c.Format)
	}
	return imagefile.FormatFromPath(c.Output)
}

// SlogLevel parses LogLevel ("debug", "info", "warn" or "error")
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// CameraConfig converts the override into a partial renderer.CameraConfig
// suitable for renderer.MergeCameraConfig
func (o CameraOverride) CameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		LookFrom:      toVec3(o.LookFrom),
		LookAt:        toVec3(o.LookAt),
		Up:            toVec3(o.Up),
		VFov:          o.VFov,
		Aperture:      o.Aperture,
		FocusDistance: o.FocusDistance,
	}
}

// IsZero reports whether the override changes nothing
func (o CameraOverride) IsZero() bool {
	return o.CameraConfig() == renderer.CameraConfig{}
}

func toVec3(v []float64) core.Vec3 {
	if len(v) != 3 {
		return core.Vec3{}
	}
	return core.NewVec3(v[0], v[1], v[2])
}
