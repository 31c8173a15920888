// Package sandbox renders fragment shaders enriched with
// #import directives. User text goes through the GLSL preprocessor in
// glslbuild, the resulting standard GLSL is compiled by the OpenGL driver,
// and a Clock pumps the render loop with the built-in uniforms
// u_resolution, u_time, u_delta, u_mouse and u_frame.
//
// Example usage:
//
//	sb, err := sandbox.New(sandbox.Config{Title: "demo"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer sb.Destroy()
//	sb.OnError(func(err error) { log.Println(err) })
//	sb.Load(`
//	#import fbm from 'sandbox/effects'
//	void main() {
//	    vec2 uv = gl_FragCoord.xy / u_resolution;
//	    gl_FragColor = vec4(vec3(fbm(uv + u_time * 0.1)), 1.0);
//	}
//	`)
//	sb.SetOption("fbm", "intensity", float32(0.8))
//	log.Fatal(sb.Play().Run())
package sandbox

import (
	"fmt"
	"image/png"
	"os"
	"time"

	"github.com/rosalana/sandbox/gldriver"
	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/glslbuild"
	"github.com/rosalana/sandbox/loop"
)

// Config configures the sandbox window and loop.
type Config struct {
	Width  int
	Height int
	Title  string
	// MaxFPS caps the render loop; zero leaves it uncapped.
	MaxFPS int
	// Silent suppresses progress logging.
	Silent bool
	// VertexSource overrides the passthrough vertex shader.
	VertexSource string
}

// Sandbox is the chainable façade over the preprocessor, the driver and
// the clock. Methods that can fault route the error into the OnError
// callback and keep the sandbox in its previous state; Err returns the
// last fault for callers that prefer polling.
type Sandbox struct {
	cfg    Config
	driver *gldriver.Driver
	clock  *loop.Clock

	before loop.Hooks
	after  loop.Hooks

	runtime *glslbuild.Registry
	shader  *glslbuild.Shader
	version int
	loaded  bool

	onError func(error)
	lastErr error
	log     func(args ...any)
}

// New opens the window and prepares an empty sandbox. The returned value
// must be driven from the goroutine that created it.
func New(cfg Config) (*Sandbox, error) {
	drv, err := gldriver.New(gldriver.Config{
		Width:  cfg.Width,
		Height: cfg.Height,
		Title:  cfg.Title,
	})
	if err != nil {
		return nil, err
	}
	s := &Sandbox{
		cfg:     cfg,
		driver:  drv,
		clock:   loop.NewClock(),
		runtime: glslbuild.NewRegistry(),
	}
	s.clock.SetNow(drv.Now)
	s.clock.SetMaxFPS(cfg.MaxFPS)
	// Bind the render callback now so manual Frame ticks work before the
	// first Play.
	s.clock.Start(s.renderFrame)
	s.clock.Stop()
	s.log = func(args ...any) {
		if !cfg.Silent {
			fmt.Println(args...)
		}
	}
	return s, nil
}

// OnError installs the single error callback every fault is routed into.
func (s *Sandbox) OnError(cb func(error)) *Sandbox {
	s.onError = cb
	return s
}

// Err returns the last reported fault, or nil.
func (s *Sandbox) Err() error { return s.lastErr }

func (s *Sandbox) report(err error) {
	s.lastErr = err
	if s.onError != nil {
		s.onError(err)
	}
}

// Load compiles the fragment source and swaps it onto the GPU. Compilation
// fills a fresh runtime registry, which replaces the previous one once the
// new program is built; that is what makes SetOption resolve against the
// new uniform names. On any fault the previous shader keeps rendering and
// its option mapping stays in place.
func (s *Sandbox) Load(fragment string) *Sandbox {
	runtime := glslbuild.NewRegistry()
	shader := glslbuild.NewShader(fragment)
	shader.SetRegistries(glslbuild.DefaultRegistry(), runtime)
	compiled, err := shader.Compile()
	if err != nil {
		s.report(err)
		return s
	}
	version := glsl.NewParser(fragment).Version()
	if err := s.driver.BuildProgram(compiled, version, s.cfg.VertexSource); err != nil {
		s.report(err)
		return s
	}
	s.runtime = runtime
	s.shader = shader
	s.version = version
	s.loaded = true
	s.uploadOptionDefaults()
	s.log("loaded shader,", len(compiled), "bytes compiled")
	return s
}

// uploadOptionDefaults pushes every option default registered during the
// compile so imported functions see sane values before the first
// SetOption call.
func (s *Sandbox) uploadOptionDefaults() {
	for _, set := range s.runtime.AllOptions() {
		for _, opt := range set {
			if opt.Default == nil {
				continue
			}
			if err := s.driver.SetUniform(opt.Uniform, opt.Default); err != nil {
				s.report(err)
				return
			}
		}
	}
}

// Version reports the GLSL profile of the loaded shader: 2 for
// "#version 300 es" sources, 1 otherwise.
func (s *Sandbox) Version() int { return s.version }

// CompiledSource returns the preprocessed GLSL of the loaded shader.
func (s *Sandbox) CompiledSource() string {
	if !s.loaded {
		return ""
	}
	src, _ := s.shader.Compile()
	return src
}

// SetOption maps a user-level option to its namespaced uniform through
// the runtime registry and uploads the value. It reports whether the
// option resolved.
func (s *Sandbox) SetOption(funcOrAlias, option string, value any) bool {
	set := s.runtime.ResolveOptions(funcOrAlias)
	if set == nil {
		return false
	}
	opt, ok := set[option]
	if !ok {
		return false
	}
	if err := s.driver.SetUniform(opt.Uniform, value); err != nil {
		s.report(err)
		return false
	}
	return true
}

// BeforeRender registers a hook run before each frame. The returned
// function removes it; returning false from the hook removes it too.
func (s *Sandbox) BeforeRender(h loop.Hook) func() { return s.before.Add(h) }

// AfterRender registers a hook run after each frame.
func (s *Sandbox) AfterRender(h loop.Hook) func() { return s.after.Add(h) }

// Play arms the clock. Time resumes where Pause left it.
func (s *Sandbox) Play() *Sandbox {
	s.clock.Start(s.renderFrame)
	return s
}

// Pause stops the clock without losing the accumulated time.
func (s *Sandbox) Pause() *Sandbox {
	s.clock.Stop()
	return s
}

// Toggle flips between Play and Pause.
func (s *Sandbox) Toggle() *Sandbox {
	if s.clock.State().Running {
		return s.Pause()
	}
	return s.Play()
}

// Stop halts the loop and zeroes the clock.
func (s *Sandbox) Stop() *Sandbox {
	s.clock.Reset()
	return s
}

// Frame renders exactly one frame with a fixed 1/60 s step, whether or
// not the sandbox is playing.
func (s *Sandbox) Frame() *Sandbox {
	s.clock.Tick(1.0 / 60.0)
	s.driver.Swap()
	return s
}

// renderFrame is the clock callback: hooks around a uniform upload and a
// quad draw. Any fault aborts the frame and reaches the error callback;
// nothing is presented for that tick.
func (s *Sandbox) renderFrame(st loop.State) {
	if err := s.before.Run(st); err != nil {
		s.report(err)
		return
	}
	if err := s.driver.UploadState(st); err != nil {
		s.report(err)
		return
	}
	s.driver.Draw()
	if err := s.after.Run(st); err != nil {
		s.report(err)
	}
}

// Run drives the loop until the window closes. When the frame cap or a
// pause rejects a tick, only window events are pumped.
func (s *Sandbox) Run() error {
	for !s.driver.ShouldClose() {
		if s.clock.Advance() {
			s.driver.Swap()
			continue
		}
		s.driver.Poll()
		time.Sleep(time.Second / 240)
	}
	return s.lastErr
}

// Screenshot writes the current framebuffer to a PNG file.
func (s *Sandbox) Screenshot(filename string) error {
	img, err := s.driver.Screenshot()
	if err != nil {
		s.report(err)
		return err
	}
	fp, err := os.Create(filename)
	if err != nil {
		s.report(err)
		return err
	}
	defer fp.Close()
	if err := png.Encode(fp, img); err != nil {
		s.report(err)
		return err
	}
	fp.Sync()
	s.log("wrote", filename)
	return nil
}

// Destroy releases the GPU resources and empties the hook lists.
func (s *Sandbox) Destroy() {
	s.clock.Reset()
	s.before.Destroy()
	s.after.Destroy()
	s.driver.Terminate()
}

// DefineModule registers a user module in the design-time registry.
// Names inside the bundled sandbox namespace are rejected.
func DefineModule(name, source string, options glsl.Options) (*glslbuild.Module, error) {
	return glslbuild.Define(name, source, options)
}

// Compile preprocesses a fragment source without touching the GPU. The
// returned registry resolves the option-to-uniform mapping of the compiled
// text; it is what a Sandbox consults after Load.
func Compile(fragment string) (string, *glslbuild.Registry, error) {
	runtime := glslbuild.NewRegistry()
	shader := glslbuild.NewShader(fragment)
	shader.SetRegistries(glslbuild.DefaultRegistry(), runtime)
	out, err := shader.Compile()
	if err != nil {
		return "", nil, err
	}
	return out, runtime, nil
}
