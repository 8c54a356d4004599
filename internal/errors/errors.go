package errors

import (
	"fmt"
	"strings"
)

// LoadKind classifies why loading an input-method description failed.
type LoadKind int

const (
	NotFound LoadKind = iota
	Parse
	Validate
	Module
	VersionTooOld
	Io
)

func (k LoadKind) String() string {
	switch k {
	case NotFound:
		return "not-found"
	case Parse:
		return "parse"
	case Validate:
		return "validate"
	case Module:
		return "module"
	case VersionTooOld:
		return "version-too-old"
	case Io:
		return "io"
	default:
		return "unknown"
	}
}

// LoadError is a fatal error raised while compiling a description tree
// into an InputMethodDef. It carries enough source context to render a
// caret under the offending token.
type LoadError struct {
	Kind    LoadKind
	Message string
	Source  string
	File    string
	Pos     Position
}

func NewLoadError(kind LoadKind, pos Position, message, source, file string) *LoadError {
	return &LoadError{Kind: kind, Pos: pos, Message: message, Source: source, File: file}
}

func (e *LoadError) Error() string {
	return e.Format(false)
}

// Format renders the error with a source line and a caret under the
// offending column. If no position is available it falls back to a plain
// one-line message.
func (e *LoadError) Format(color bool) string {
	var sb strings.Builder

	if e.Pos.IsZero() {
		sb.WriteString(fmt.Sprintf("%s error: %s", e.Kind, e.Message))
		return sb.String()
	}

	if e.File != "" {
		sb.WriteString(fmt.Sprintf("%s error in %s:%d:%d\n", e.Kind, e.File, e.Pos.Line, e.Pos.Column))
	} else {
		sb.WriteString(fmt.Sprintf("%s error at line %d:%d\n", e.Kind, e.Pos.Line, e.Pos.Column))
	}

	if line := e.sourceLine(e.Pos.Line); line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", e.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+e.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	if color {
		sb.WriteString("\033[1m")
	}
	sb.WriteString(e.Message)
	if color {
		sb.WriteString("\033[0m")
	}
	return sb.String()
}

func (e *LoadError) sourceLine(lineNum int) string {
	if e.Source == "" {
		return ""
	}
	lines := strings.Split(e.Source, "\n")
	if lineNum < 1 || lineNum > len(lines) {
		return ""
	}
	return lines[lineNum-1]
}

// RuntimeKind classifies a non-fatal error observed while filtering a key.
type RuntimeKind int

const (
	Unhandled RuntimeKind = iota
	Internal
)

// RuntimeError never escapes filter(): the driver always downgrades it
// to Unhandled. DebugLog, when non-nil, receives a formatted line for
// RuntimeKind Internal errors so a host can surface them without the
// engine ever panicking or returning an error type to callers.
type RuntimeError struct {
	Kind    RuntimeKind
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Message
}

// DebugLog is the engine-wide debug hook: nil by default, a host wires
// it up to see RuntimeKind Internal diagnostics.
var DebugLog func(format string, args ...any)

func LogInternal(format string, args ...any) {
	if DebugLog != nil {
		DebugLog(format, args...)
	}
}
