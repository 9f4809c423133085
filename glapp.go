package main

import (
	"flag"
	"fmt"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/mogaika/glapp/config"
	"github.com/mogaika/glapp/glbackend"
	"github.com/mogaika/glapp/renderer"
	"github.com/mogaika/glapp/uibackend"
	"github.com/mogaika/glapp/utils"
)

func init() {
	// GL and GLFW calls must stay on the main thread
	runtime.LockOSThread()
}

func main() {
	var cfgpath string
	var frames uint64
	var coupled, debug, dumpconfig bool
	flag.StringVar(&cfgpath, "config", "", "Path to yaml config, defaults are used if empty")
	flag.Uint64Var(&frames, "frames", 0, "Exit after this many frames, 0 - run until the window is closed")
	flag.BoolVar(&coupled, "coupled", false, "Drive the scale with the offset direction flag instead of its own")
	flag.BoolVar(&debug, "debug", false, "Debug logging and GL debug output")
	flag.BoolVar(&dumpconfig, "dumpconfig", false, "Print the effective config and exit")
	flag.Parse()

	cfg := config.Default()
	if cfgpath != "" {
		var err error
		if cfg, err = config.Load(cfgpath); err != nil {
			logrus.Fatal(err)
		}
	}
	if coupled {
		cfg.Animation.Coupled = true
	}
	if debug {
		cfg.Window.Debug = true
	}
	if cfg.Window.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if dumpconfig {
		fmt.Print(utils.SDump(cfg))
		return
	}

	sources, err := cfg.Shaders.Sources(renderer.DefaultSources())
	if err != nil {
		logrus.Fatal(err)
	}

	back, err := uibackend.NewGLFW(cfg.Window)
	if err != nil {
		logrus.Fatal(err)
	}
	defer back.Destroy()

	if err := glbackend.Init(cfg.Window.Debug); err != nil {
		back.Destroy()
		logrus.Fatal(err)
	}

	ctx := glbackend.Context{}
	width, height := back.FramebufferSize()
	ctx.Viewport(0, 0, width, height)

	state := renderer.Initialize(ctx, renderer.Options{
		Animation:  cfg.Animation,
		Sources:    sources,
		ClearColor: cfg.Render.Color(),
	})
	defer state.Destroy()

	for !back.ShouldStop() {
		back.ProcessEvents()

		if w, h := back.FramebufferSize(); w != width || h != height {
			width, height = w, h
			ctx.Viewport(0, 0, width, height)
		}

		state.RunFrame()
		back.PostRender()

		if frames != 0 && state.Frames() >= frames {
			back.Stop()
		}
	}

	logrus.WithFields(logrus.Fields{
		"frames": state.Frames(),
		"draws":  state.Draws(),
	}).Info("window closed")
}
