package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/glapp/anim"
	"github.com/mogaika/glapp/r3d"
)

type Window struct {
	Width   int    `yaml:"width"`
	Height  int    `yaml:"height"`
	Title   string `yaml:"title"`
	GLMajor int    `yaml:"gl_major"`
	GLMinor int    `yaml:"gl_minor"`
	VSync   bool   `yaml:"vsync"`
	// Debug enables the GL debug output callback and debug logging.
	Debug bool `yaml:"debug"`
}

type Render struct {
	ClearColor []float32 `yaml:"clear_color"`
}

// Color returns the clear color as RGBA.
func (r Render) Color() (c [4]float32) {
	copy(c[:], r.ClearColor)
	return c
}

// Shaders holds optional paths replacing the embedded shader sources.
type Shaders struct {
	Vertex   string `yaml:"vertex"`
	Fragment string `yaml:"fragment"`
}

type Config struct {
	Window    Window      `yaml:"window"`
	Animation anim.Config `yaml:"animation"`
	Render    Render      `yaml:"render"`
	Shaders   Shaders     `yaml:"shaders"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:   800,
			Height:  600,
			Title:   "OpenGL App",
			GLMajor: 4,
			GLMinor: 3,
			VSync:   true,
		},
		Animation: anim.DefaultConfig(),
		Render: Render{
			ClearColor: []float32{0, 0, 0, 1},
		},
	}
}

// Load reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "cannot read config %q", path)
	}
	cfg, err := Parse(data)
	return cfg, errors.Wrapf(err, "config %q", path)
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshaling error")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d is invalid", c.Window.Width, c.Window.Height)
	}
	if c.Window.GLMajor < 3 || (c.Window.GLMajor == 3 && c.Window.GLMinor < 3) {
		return errors.Errorf("OpenGL %d.%d has no core profile, 3.3 is the minimum",
			c.Window.GLMajor, c.Window.GLMinor)
	}
	if len(c.Render.ClearColor) != 4 {
		return errors.Errorf("clear color needs 4 components, got %d", len(c.Render.ClearColor))
	}
	return errors.Wrap(c.Animation.Validate(), "animation")
}

// Sources returns the shader text, reading the override files if set.
func (s Shaders) Sources(embedded r3d.Sources) (r3d.Sources, error) {
	src := embedded
	for _, f := range []struct {
		path string
		dst  *string
	}{
		{s.Vertex, &src.Vertex},
		{s.Fragment, &src.Fragment},
	} {
		if f.path == "" {
			continue
		}
		data, err := os.ReadFile(f.path)
		if err != nil {
			return r3d.Sources{}, errors.Wrapf(err, "cannot read shader %q", f.path)
		}
		*f.dst = string(data)
	}
	return src, nil
}
