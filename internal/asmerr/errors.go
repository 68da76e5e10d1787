// Package asmerr provides positioned diagnostics for the assembler pipeline.
package asmerr

import (
	"fmt"
	"strings"
)

// Position identifies a location in the source file being assembled.
type Position struct {
	Filename string
	Line     int
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("line %d", p.Line)
	}
	return fmt.Sprintf("%s:%d", p.Filename, p.Line)
}

// Kind categorizes a diagnostic, mirroring the error table in the spec.
type Kind int

const (
	KindSyntax Kind = iota
	KindDuplicateSymbol
	KindMultipleName
	KindEquateContainsImport
	KindInvalidDirectiveArg
	KindInvalidOperand
	KindInvalidOperandMode
	KindUnresolvedSymbol
	KindUsage
	KindIO
)

// Error is a single diagnostic with source position and the offending line.
type Error struct {
	Pos     Position
	Kind    Kind
	Message string
	Source  string // raw source line, for echoing back to the user
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Pos.String())
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Source != "" {
		sb.WriteString(fmt.Sprintf(" (source: %s)", strings.TrimSpace(e.Source)))
	}
	return sb.String()
}

// New builds an Error at the given position.
func New(pos Position, kind Kind, message string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message}
}

// NewWithSource builds an Error that also echoes the offending source line.
func NewWithSource(pos Position, kind Kind, message, source string) *Error {
	return &Error{Pos: pos, Kind: kind, Message: message, Source: source}
}

// List collects diagnostics produced while assembling a single file.
type List struct {
	Errors []*Error
}

// Add appends a diagnostic.
func (l *List) Add(err *Error) {
	l.Errors = append(l.Errors, err)
}

// HasErrors reports whether any diagnostic was recorded.
func (l *List) HasErrors() bool {
	return len(l.Errors) > 0
}

// Error implements the error interface by concatenating all diagnostics.
func (l *List) Error() string {
	var sb strings.Builder
	for _, e := range l.Errors {
		sb.WriteString(e.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}
