package r3d

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrCreateProgram = errors.New("failed to create program object")
	ErrInvalidState  = errors.New("invalid program state")
)

// CompileError is returned when the driver rejects a shader stage.
type CompileError struct {
	Stage ShaderStage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to compile %v shader: %q", e.Stage, e.Log)
}

type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("failed to link program: %q", e.Log)
}

type ValidateError struct {
	Log string
}

func (e *ValidateError) Error() string {
	return fmt.Sprintf("failed to validate program: %q", e.Log)
}
