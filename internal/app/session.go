package app

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/glprojects/internal/config"
	"github.com/Faultbox/glprojects/internal/engine/camera"
	"github.com/Faultbox/glprojects/internal/engine/debug"
	"github.com/Faultbox/glprojects/internal/engine/gpu"
	"github.com/Faultbox/glprojects/internal/engine/input"
	"github.com/Faultbox/glprojects/internal/engine/renderer"
	"github.com/Faultbox/glprojects/internal/engine/window"
	"github.com/Faultbox/glprojects/internal/logger"
)

var clearColor = [4]float32{0.1, 0.1, 0.1, 1.0}

// Session owns the window, input and camera shared by every demo.
type Session struct {
	Window *window.Window
	Input  *input.Input
	State  *input.State
	Camera *camera.Camera
	Device gpu.Device

	Width, Height int

	screenshots *debug.Screenshotter
	capture     bool

	deltaTime float32
	lastFrame float32
	frames    int
}

// NewSession opens the window and GL context described by cfg.
func NewSession(cfg *config.Config) (*Session, error) {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		Resizable:  cfg.Window.Resizable,
		VSync:      cfg.Window.VSync,
	})
	if err != nil {
		return nil, fmt.Errorf("creating window: %w", err)
	}

	width, height := win.GetSize()
	if err := renderer.InitGL(renderer.Config{Width: width, Height: height, ClearColor: clearColor}); err != nil {
		win.Close()
		return nil, err
	}

	in := input.New()
	if err := in.SetRelative(true); err != nil {
		logger.Warn("relative mouse mode unavailable", zap.Error(err))
	}

	return &Session{
		Window:      win,
		Input:       in,
		State:       input.NewState(width, height),
		Camera:      newCamera(cfg.Camera),
		Device:      gpu.GLDevice{},
		Width:       width,
		Height:      height,
		screenshots: debug.NewScreenshotter(cfg.Window.ScreenshotDir, cfg.Demo.Kind),
		lastFrame:   window.Ticks(),
	}, nil
}

func newCamera(cfg config.CameraConfig) *camera.Camera {
	cam := camera.New(mgl32.Vec3(cfg.Position))
	if cfg.Speed > 0 {
		cam.MovementSpeed = cfg.Speed
	}
	if cfg.Sensitivity > 0 {
		cam.MouseSensitivity = cfg.Sensitivity
	}
	if cfg.Zoom > 0 {
		cam.Zoom = cfg.Zoom
	}
	return cam
}

// BeginFrame advances frame timing, processes input and clears the frame.
// It returns false once the user asked to quit.
func (s *Session) BeginFrame() bool {
	now := window.Ticks()
	s.deltaTime = now - s.lastFrame
	s.lastFrame = now

	s.Input.Update()
	for _, ev := range s.Input.Events() {
		switch {
		case ev.Type == input.EventWindowResize:
			s.Width, s.Height = ev.Width, ev.Height
			renderer.Resize(ev.Width, ev.Height)
		case ev.Type == input.EventKeyDown && ev.Key == screenshotKey:
			s.capture = true
		}
	}
	s.State.ApplyAll(s.Input.Events())
	if s.State.QuitRequested() {
		return false
	}

	applyMotion(s.Camera, s.State.Take())
	s.DoMovement()

	renderer.Begin()
	return true
}

// EndFrame presents the frame, saving it first if a capture was requested.
func (s *Session) EndFrame() {
	if s.capture {
		s.capture = false
		path, err := s.screenshots.CaptureFromPixels(renderer.ReadPixels(s.Width, s.Height), s.Width, s.Height)
		if err != nil {
			logger.Warn("screenshot failed", zap.Error(err))
		} else {
			logger.Info("screenshot saved", zap.String("path", path))
		}
	}
	s.Window.SwapBuffers()
	s.frames++
}

// DoMovement moves the camera for each held WASD key.
func (s *Session) DoMovement() {
	doMovement(s.Camera, s.State, s.deltaTime)
}

// View returns the camera view matrix.
func (s *Session) View() mgl32.Mat4 {
	return s.Camera.ViewMatrix()
}

// Projection returns the perspective matrix for the current window size.
func (s *Session) Projection() mgl32.Mat4 {
	return s.Camera.Projection(s.Width, s.Height)
}

// Frames returns how many frames have been presented.
func (s *Session) Frames() int {
	return s.frames
}

// Close destroys the window.
func (s *Session) Close() {
	if s.Window != nil {
		s.Window.Close()
	}
}

const screenshotKey = sdl.SCANCODE_F12

var movementKeys = []struct {
	key sdl.Scancode
	dir camera.Movement
}{
	{sdl.SCANCODE_W, camera.Forward},
	{sdl.SCANCODE_S, camera.Backward},
	{sdl.SCANCODE_A, camera.Left},
	{sdl.SCANCODE_D, camera.Right},
}

func doMovement(cam *camera.Camera, state *input.State, dt float32) {
	for _, mk := range movementKeys {
		if state.Pressed(mk.key) {
			cam.ProcessKeyboard(mk.dir, dt)
		}
	}
}

func applyMotion(cam *camera.Camera, m input.Motion) {
	if m.XOffset != 0 || m.YOffset != 0 {
		cam.ProcessMouseMovement(m.XOffset, m.YOffset, true)
	}
	if m.Scroll != 0 {
		cam.ProcessMouseScroll(m.Scroll)
	}
}

// runLoop calls frame once per frame until quit.
func runLoop(s *Session, frame func()) {
	for s.BeginFrame() {
		frame()
		s.EndFrame()
	}
}
