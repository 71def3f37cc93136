package docxmerge

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformedXML is returned when a body cannot be parsed as XML.
	ErrMalformedXML = errors.New("malformed template XML")
	// ErrNotDocx is returned when a package lacks word/document.xml.
	ErrNotDocx = errors.New("not a valid DOCX file")
	// ErrUnsupportedValue is returned for data values that are neither scalars
	// nor flat sequences of scalars.
	ErrUnsupportedValue = errors.New("unsupported value shape")
	// ErrOverlappingBlocks is returned when the repeated blocks of array
	// placeholders share or contain one another.
	ErrOverlappingBlocks = errors.New("overlapping placeholder blocks")
	// ErrTemplateClosed is returned when a closed Template is used.
	ErrTemplateClosed = errors.New("template is closed")
)

// Stage names the step of a render call that failed.
type Stage string

const (
	StageOpen   Stage = "open"
	StageExpand Stage = "expand"
	StageSave   Stage = "save"
	StageRead   Stage = "read"
)

// RenderError reports which stage of a render call failed, for which
// template and placeholder.
type RenderError struct {
	Stage       Stage
	Path        string
	Placeholder string
	Cause       error
}

func (e *RenderError) Error() string {
	var sb strings.Builder
	sb.WriteString("render ")
	sb.WriteString(string(e.Stage))
	if e.Path != "" {
		fmt.Fprintf(&sb, " of '%s'", e.Path)
	}
	if e.Placeholder != "" {
		fmt.Fprintf(&sb, " at placeholder '%s'", e.Placeholder)
	}
	if e.Cause != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Cause.Error())
	}
	return sb.String()
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

func newRenderError(stage Stage, path, placeholder string, cause error) error {
	return &RenderError{
		Stage:       stage,
		Path:        path,
		Placeholder: placeholder,
		Cause:       cause,
	}
}

// DocumentError represents an error during document operations
type DocumentError struct {
	Operation string
	Path      string
	Cause     error
}

func (e *DocumentError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("document error during %s of '%s': %v", e.Operation, e.Path, e.Cause)
	} else if e.Path != "" {
		return fmt.Sprintf("document error during %s of '%s'", e.Operation, e.Path)
	} else if e.Cause != nil {
		return fmt.Sprintf("document error during %s: %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("document error during %s", e.Operation)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

// NewDocumentError creates a new document error
func NewDocumentError(operation, path string, cause error) error {
	return &DocumentError{
		Operation: operation,
		Path:      path,
		Cause:     cause,
	}
}

// OverlapError names the two placeholders whose blocks collide.
type OverlapError struct {
	First  string
	Second string
}

func (e *OverlapError) Error() string {
	if e.First == e.Second {
		return fmt.Sprintf("%v: blocks of '%s' are nested", ErrOverlappingBlocks, e.First)
	}
	return fmt.Sprintf("%v: '%s' and '%s'", ErrOverlappingBlocks, e.First, e.Second)
}

func (e *OverlapError) Unwrap() error {
	return ErrOverlappingBlocks
}

// RecoverError converts a panic recovery value to an error
func RecoverError(r interface{}) error {
	switch v := r.(type) {
	case error:
		return fmt.Errorf("panic recovered: %w", v)
	case string:
		return fmt.Errorf("panic recovered: %s", v)
	default:
		return fmt.Errorf("panic recovered: %v", v)
	}
}

// IsDocumentError checks if an error is a document error
func IsDocumentError(err error) bool {
	var de *DocumentError
	return errors.As(err, &de)
}

// StageOf returns the failed stage recorded in err, or "" when err does not
// come from a render call.
func StageOf(err error) Stage {
	var re *RenderError
	if errors.As(err, &re) {
		return re.Stage
	}
	return ""
}
