package sandbox

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for error classification.
var (
	// ErrModuleNotFound indicates a require call nothing in the
	// configuration could satisfy.
	ErrModuleNotFound = errors.New("module not found")

	// ErrAssertion indicates a failed injected assertion.
	ErrAssertion = errors.New("assertion failed")
)

// ModuleNotFoundError is raised inside the sandbox when require cannot
// resolve a module name.
type ModuleNotFoundError struct {
	// Name is the requested module name.
	Name string
}

func (e *ModuleNotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attempted to require '%s' but was not found in config.\n", e.Name)
	b.WriteString("You need to include it in the require section of your doctest setup file.\n\n")
	b.WriteString("For example:\n")
	b.WriteString("require:\n")
	fmt.Fprintf(&b, "  %s: ...\n", e.Name)
	return b.String()
}

// Is reports whether target is ErrModuleNotFound.
func (e *ModuleNotFoundError) Is(target error) bool {
	return target == ErrModuleNotFound
}

// AssertionError reports a failed equality check.
type AssertionError struct {
	// Message describes what was compared.
	Message string

	// Diff is the structural difference, (-expected +actual).
	Diff string
}

func (e *AssertionError) Error() string {
	if e.Diff == "" {
		return "AssertionError: " + e.Message
	}
	return "AssertionError: " + e.Message + "\n" + e.Diff
}

// Is reports whether target is ErrAssertion.
func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}
