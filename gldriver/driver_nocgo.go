//go:build tinygo || !cgo

package gldriver

import (
	"image"

	"github.com/soypat/geometry/ms2"

	"github.com/rosalana/sandbox/loop"
	"github.com/rosalana/sandbox/sberr"
)

// Driver without cgo cannot reach the GPU; every entry point that returns
// an error reports CONTEXT_ERROR so the error callback fires exactly as it
// would on a machine without working GL. The others do nothing.
type Driver struct{}

func errNoCGO() error {
	return sberr.New(sberr.CodeContext, "OpenGL rendering requires cgo and is not supported on TinyGo")
}

func New(cfg Config) (*Driver, error) { return nil, errNoCGO() }

func (d *Driver) Mouse() ms2.Vec      { return ms2.Vec{} }
func (d *Driver) Resolution() ms2.Vec { return ms2.Vec{} }
func (d *Driver) Now() float64        { return 0 }

func (d *Driver) BuildProgram(fragment string, version int, vertexOverride string) error {
	return errNoCGO()
}

func (d *Driver) SetUniform(name string, value any) error { return errNoCGO() }
func (d *Driver) UploadState(st loop.State) error         { return errNoCGO() }
func (d *Driver) Draw()                                   {}
func (d *Driver) Swap()                                   {}
func (d *Driver) Poll()                                   {}
func (d *Driver) ShouldClose() bool                       { return true }
func (d *Driver) Screenshot() (*image.RGBA, error)        { return nil, errNoCGO() }
func (d *Driver) Terminate()                              {}
