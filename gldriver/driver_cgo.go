//go:build !tinygo && cgo

package gldriver

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/soypat/geometry/ms2"
	"github.com/soypat/geometry/ms3"
	"github.com/soypat/glgl/v4.6-core/glgl"

	"github.com/rosalana/sandbox/glsl"
	"github.com/rosalana/sandbox/loop"
	"github.com/rosalana/sandbox/sberr"
)

// Driver owns one GLFW window with a current GL context and the quad
// program rendering the compiled fragment shader.
type Driver struct {
	window *glfw.Window
	prog   glgl.Program
	built  bool

	vao uint32
	vbo uint32

	mouse ms2.Vec

	// locations are resolved lazily per program; -1 marks uniforms the
	// GLSL compiler optimised away, which are quietly skipped.
	locations map[string]int32
}

var quadVertices = []float32{
	-1, -1,
	1, -1,
	-1, 1,
	-1, 1,
	1, -1,
	1, 1,
}

// New creates the window, makes the context current and prepares the
// fullscreen quad. Callers must keep using the driver from the same
// goroutine; GLFW pins the context to the OS thread.
func New(cfg Config) (*Driver, error) {
	cfg.defaults()
	if err := glfw.Init(); err != nil {
		return nil, sberr.Wrap(sberr.CodeContext, err, "GLFW initialization failed")
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 6)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if cfg.Resizable {
		glfw.WindowHint(glfw.Resizable, glfw.True)
	} else {
		glfw.WindowHint(glfw.Resizable, glfw.False)
	}
	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, sberr.Wrap(sberr.CodeContext, err, "window creation failed")
	}
	window.MakeContextCurrent()
	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, sberr.Wrap(sberr.CodeContext, err, "OpenGL initialization failed")
	}

	d := &Driver{window: window}
	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		d.trackMouse(xpos, ypos)
	})
	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		gl.Viewport(0, 0, int32(width), int32(height))
	})

	gl.GenVertexArrays(1, &d.vao)
	gl.BindVertexArray(d.vao)
	gl.GenBuffers(1, &d.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(quadVertices), gl.Ptr(quadVertices), gl.STATIC_DRAW)
	return d, nil
}

// trackMouse converts window coordinates to framebuffer pixels with the
// origin at the bottom-left, matching gl_FragCoord.
func (d *Driver) trackMouse(xpos, ypos float64) {
	ww, wh := d.window.GetSize()
	fw, fh := d.window.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return
	}
	sx := float32(fw) / float32(ww)
	sy := float32(fh) / float32(wh)
	x := math32.Min(math32.Max(float32(xpos)*sx, 0), float32(fw))
	y := math32.Min(math32.Max(float32(fh)-float32(ypos)*sy, 0), float32(fh))
	d.mouse = ms2.Vec{X: x, Y: y}
}

// Mouse returns the last cursor position in framebuffer pixels.
func (d *Driver) Mouse() ms2.Vec { return d.mouse }

// Resolution returns the framebuffer size in pixels.
func (d *Driver) Resolution() ms2.Vec {
	fw, fh := d.window.GetFramebufferSize()
	return ms2.Vec{X: float32(fw), Y: float32(fh)}
}

// Now returns GLFW's monotonic time in seconds; the Clock reads it.
func (d *Driver) Now() float64 { return glfw.GetTime() }

// BuildProgram compiles the fragment source against a version-matched
// vertex shader and rebinds the quad attribute. version is the fragment
// profile reported by the parser (1 or 2).
func (d *Driver) BuildProgram(fragment string, version int, vertexOverride string) error {
	vertex := vertexOverride
	if vertex == "" {
		vertex = vertexSource(version)
	} else if vv := glsl.NewParser(vertex).Version(); vv != version {
		return sberr.New(sberr.CodeValidation,
			"vertex and fragment shader versions differ").WithTypes(profileName(version), profileName(vv))
	}
	prog, err := glgl.CompileProgram(glgl.ShaderSource{
		Vertex:   vertex + "\x00",
		Fragment: fragment + "\x00",
	})
	if err != nil {
		return sberr.Wrap(sberr.CodeProgram, err, "program compile/link failed")
	}
	if d.built {
		d.prog.Delete()
	}
	d.prog = prog
	d.built = true
	d.locations = make(map[string]int32)
	d.prog.Bind()

	gl.BindVertexArray(d.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.vbo)
	pos, err := d.prog.AttribLocation("a_position\x00")
	if err != nil {
		return sberr.Wrap(sberr.CodeProgram, err, "quad attribute missing")
	}
	gl.EnableVertexAttribArray(pos)
	gl.VertexAttribPointer(pos, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
	return nil
}

func profileName(version int) string {
	if version == 2 {
		return "300 es"
	}
	return "100"
}

func (d *Driver) location(name string) int32 {
	if loc, ok := d.locations[name]; ok {
		return loc
	}
	loc, err := d.prog.UniformLocation(name + "\x00")
	if err != nil {
		loc = -1
	}
	d.locations[name] = loc
	return loc
}

// SetUniform uploads one uniform by name. Names the GLSL compiler
// optimised away are quietly dropped, per the driver contract.
func (d *Driver) SetUniform(name string, value any) error {
	if !d.built {
		return sberr.New(sberr.CodeProgram, "no program built")
	}
	loc := d.location(name)
	if loc < 0 {
		return nil
	}
	d.prog.Bind()
	switch v := value.(type) {
	case float32:
		gl.Uniform1f(loc, v)
	case float64:
		gl.Uniform1f(loc, float32(v))
	case int:
		gl.Uniform1i(loc, int32(v))
	case int32:
		gl.Uniform1i(loc, v)
	case bool:
		var b int32
		if v {
			b = 1
		}
		gl.Uniform1i(loc, b)
	case ms2.Vec:
		gl.Uniform2f(loc, v.X, v.Y)
	case ms3.Vec:
		gl.Uniform3f(loc, v.X, v.Y, v.Z)
	case [4]float32:
		gl.Uniform4f(loc, v[0], v[1], v[2], v[3])
	case []float32:
		gl.Uniform1fv(loc, int32(len(v)), &v[0])
	case [2]ms3.Vec:
		flat := [6]float32{v[0].X, v[0].Y, v[0].Z, v[1].X, v[1].Y, v[1].Z}
		gl.Uniform3fv(loc, 2, &flat[0])
	case []ms3.Vec:
		flat := make([]float32, 0, 3*len(v))
		for _, e := range v {
			flat = append(flat, e.X, e.Y, e.Z)
		}
		gl.Uniform3fv(loc, int32(len(v)), &flat[0])
	default:
		return sberr.New(sberr.CodeProgram, "unsupported uniform value type %T for %q", value, name)
	}
	return glgl.Err()
}

// UploadState pushes the five built-in uniforms for one frame.
func (d *Driver) UploadState(st loop.State) error {
	if err := d.SetUniform("u_resolution", d.Resolution()); err != nil {
		return err
	}
	if err := d.SetUniform("u_time", float32(st.Time)); err != nil {
		return err
	}
	if err := d.SetUniform("u_delta", float32(st.Delta)); err != nil {
		return err
	}
	if err := d.SetUniform("u_mouse", d.mouse); err != nil {
		return err
	}
	return d.SetUniform("u_frame", st.Frame)
}

// Draw clears the frame and renders the quad.
func (d *Driver) Draw() {
	gl.ClearColor(0, 0, 0, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT)
	if !d.built {
		return
	}
	d.prog.Bind()
	gl.BindVertexArray(d.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
}

// Swap presents the frame and pumps window events.
func (d *Driver) Swap() {
	d.window.SwapBuffers()
	glfw.PollEvents()
}

// Poll pumps window events without presenting a frame. The paused render
// loop calls it so the window stays responsive.
func (d *Driver) Poll() { glfw.PollEvents() }

// ShouldClose reports whether the user asked the window to close.
func (d *Driver) ShouldClose() bool { return d.window.ShouldClose() }

// Screenshot reads the framebuffer back into an image, flipped so row 0
// is the top of the picture.
func (d *Driver) Screenshot() (*image.RGBA, error) {
	fw, fh := d.window.GetFramebufferSize()
	img := image.NewRGBA(image.Rect(0, 0, fw, fh))
	gl.ReadPixels(0, 0, int32(fw), int32(fh), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	if err := glgl.Err(); err != nil {
		return nil, sberr.Wrap(sberr.CodeProgram, err, "framebuffer read failed")
	}
	stride := img.Stride
	tmp := make([]byte, stride)
	for y := 0; y < fh/2; y++ {
		top := img.Pix[y*stride : (y+1)*stride]
		bot := img.Pix[(fh-1-y)*stride : (fh-y)*stride]
		copy(tmp, top)
		copy(top, bot)
		copy(bot, tmp)
	}
	return img, nil
}

// Terminate destroys the program, the window and the GLFW state.
func (d *Driver) Terminate() {
	if d.built {
		d.prog.Delete()
		d.built = false
	}
	gl.DeleteBuffers(1, &d.vbo)
	gl.DeleteVertexArrays(1, &d.vao)
	glfw.Terminate()
}
