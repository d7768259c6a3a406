// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"
)

// Demo names accepted by demo.kind.
const (
	DemoModel    = "model"
	DemoLighting = "lighting"
	DemoScene    = "scene"
)

// Config holds all application settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Demo    DemoConfig    `yaml:"demo"`
	Model   ModelConfig   `yaml:"model"`
	Scene   SceneConfig   `yaml:"scene"`
	Camera  CameraConfig  `yaml:"camera"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings.
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Fullscreen bool   `yaml:"fullscreen"`
	Resizable  bool   `yaml:"resizable"`
	VSync      bool   `yaml:"vsync"`

	// ScreenshotDir receives F12 captures.
	ScreenshotDir string `yaml:"screenshot_dir"`
}

// DemoConfig selects which demo runs.
type DemoConfig struct {
	Kind string `yaml:"kind"`
}

// ModelConfig holds the model-loading demo settings.
type ModelConfig struct {
	Path        string `yaml:"path"`
	Triangulate bool   `yaml:"triangulate"`
	FlipUVs     bool   `yaml:"flip_uvs"`
}

// SceneConfig holds the textured cube scene settings.
type SceneConfig struct {
	TextureDir string   `yaml:"texture_dir"`
	Textures   []string `yaml:"textures"`
}

// CameraConfig holds the initial camera state.
type CameraConfig struct {
	Position    [3]float32 `yaml:"position,flow"`
	Speed       float32    `yaml:"speed"`
	Sensitivity float32    `yaml:"sensitivity"`
	Zoom        float32    `yaml:"zoom"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:         "LearnOpenGL",
			Width:         800,
			Height:        600,
			VSync:         true,
			ScreenshotDir: "screenshots",
		},
		Demo: DemoConfig{
			Kind: DemoLighting,
		},
		Model: ModelConfig{
			Path:        "assets/nanosuit/nanosuit.obj",
			Triangulate: true,
			FlipUVs:     true,
		},
		Scene: SceneConfig{
			TextureDir: "assets/textures",
			Textures:   []string{"container.jpg", "awesomeface.png"},
		},
		Camera: CameraConfig{
			Position:    [3]float32{0, 0, 3},
			Speed:       3.0,
			Sensitivity: 0.25,
			Zoom:        45.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Validate checks values that would otherwise fail later at startup.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Window.Width, c.Window.Height)
	}
	switch c.Demo.Kind {
	case DemoModel:
		if c.Model.Path == "" {
			return fmt.Errorf("%w: model.path is required for the %q demo", ErrInvalid, DemoModel)
		}
	case DemoLighting, DemoScene:
	default:
		return fmt.Errorf("%w: unknown demo %q", ErrInvalid, c.Demo.Kind)
	}
	if c.Camera.Zoom < 1 || c.Camera.Zoom > 45 {
		return fmt.Errorf("%w: camera.zoom %v outside [1, 45]", ErrInvalid, c.Camera.Zoom)
	}
	return nil
}
