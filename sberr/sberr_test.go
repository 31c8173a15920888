package sberr

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorString(t *testing.T) {
	err := New(CodeShader, "uniform %q declared with conflicting type", "u_time").
		WithTypes("float", "vec4").WithLine(3)
	got := err.Error()
	for _, want := range []string{"SHADER_ERROR", "u_time", "expected float, got vec4", "line 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("%q missing %q", got, want)
		}
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("link failed")
	err := Wrap(CodeProgram, cause, "program compile/link failed")
	if !errors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if !IsCode(err, CodeProgram) {
		t.Error("IsCode missed the code")
	}
	if IsCode(err, CodeShader) {
		t.Error("IsCode matched the wrong code")
	}
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(CodeModule, "module %q not found", "m")
	outer := fmt.Errorf("compiling: %w", inner)
	if !IsCode(outer, CodeModule) {
		t.Error("IsCode must see through fmt wrapping")
	}
	if CodeOf(outer) != CodeModule {
		t.Errorf("CodeOf = %v", CodeOf(outer))
	}
	if CodeOf(errors.New("plain")) != CodeUnknown {
		t.Error("plain errors must report CodeUnknown")
	}
}
