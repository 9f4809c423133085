package uibackend

import (
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/mogaika/glapp/config"
)

// GLFW owns the window and its OpenGL context. All methods must run on
// the main thread.
type GLFW struct {
	window *glfw.Window
}

// NewGLFW creates a window with a current core-profile context.
func NewGLFW(cfg config.Window) (*GLFW, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize glfw")
	}

	glfw.WindowHint(glfw.ContextVersionMajor, cfg.GLMajor)
	glfw.WindowHint(glfw.ContextVersionMinor, cfg.GLMinor)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if cfg.Debug {
		glfw.WindowHint(glfw.OpenGLDebugContext, glfw.True)
	}

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Wrap(err, "failed to create window")
	}
	window.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	b := &GLFW{window: window}
	window.SetKeyCallback(b.onKey)
	return b, nil
}

func (b *GLFW) onKey(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
	if key == glfw.KeyEscape && action == glfw.Press {
		logrus.Debug("escape pressed, closing window")
		w.SetShouldClose(true)
	}
}

func (b *GLFW) Destroy() {
	b.window.Destroy()
	glfw.Terminate()
}

func (b *GLFW) ShouldStop() bool {
	return b.window.ShouldClose()
}

// Stop asks the loop to end after the current frame.
func (b *GLFW) Stop() {
	b.window.SetShouldClose(true)
}

func (b *GLFW) ProcessEvents() {
	glfw.PollEvents()
}

// FramebufferSize is the drawable size in pixels, which differs from the
// window size on high DPI displays.
func (b *GLFW) FramebufferSize() (width, height int32) {
	w, h := b.window.GetFramebufferSize()
	return int32(w), int32(h)
}

func (b *GLFW) PostRender() {
	b.window.SwapBuffers()
}
