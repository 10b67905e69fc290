package epub

import (
	"fmt"
	"strings"
)

// EmptyBookError is returned when book has no chapters with content.
type EmptyBookError struct{}

func (e *EmptyBookError) Error() string {
	return "book has no renderable chapters"
}

// DanglingLinkError is a link between chapters which target is unknown.
type DanglingLinkError struct {
	Chapter string
	Target  string
	Reason  string
}

func (e *DanglingLinkError) Error() string {
	msg := fmt.Sprintf("chapter %q links to unknown chapter %q", e.Chapter, e.Target)
	if len(e.Reason) > 0 {
		msg += ": " + e.Reason
	}
	return msg
}

// DanglingResourceError is a local resource reference which cannot be
// resolved inside book source.
type DanglingResourceError struct {
	Chapter  string
	Resource string
	// Via names stylesheet when reference comes from CSS
	Via    string
	Reason string
}

func (e *DanglingResourceError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "chapter %q references missing resource %q", e.Chapter, e.Resource)
	if len(e.Via) > 0 {
		fmt.Fprintf(&sb, " (from %q)", e.Via)
	}
	if len(e.Reason) > 0 {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	return sb.String()
}

// ResourceReadError is returned when existing resource cannot be read.
type ResourceReadError struct {
	Chapter  string
	Resource string
	Err      error
}

func (e *ResourceReadError) Error() string {
	return fmt.Sprintf("unable to read resource %q referenced by %q: %v", e.Resource, e.Chapter, e.Err)
}

func (e *ResourceReadError) Unwrap() error {
	return e.Err
}

// ManifestConsistencyError lists every href which is referenced but not
// declared and every declared href nothing references.
type ManifestConsistencyError struct {
	Undeclared []string
	Unused     []string
}

func (e *ManifestConsistencyError) Error() string {
	var parts []string
	if len(e.Undeclared) > 0 {
		parts = append(parts, fmt.Sprintf("%d undeclared (%s)", len(e.Undeclared), strings.Join(e.Undeclared, ", ")))
	}
	if len(e.Unused) > 0 {
		parts = append(parts, fmt.Sprintf("%d unused (%s)", len(e.Unused), strings.Join(e.Unused, ", ")))
	}
	return "manifest is inconsistent: " + strings.Join(parts, "; ")
}

// ContainerWriteError is I/O failure while producing or promoting archive.
type ContainerWriteError struct {
	Path string
	Err  error
}

func (e *ContainerWriteError) Error() string {
	return fmt.Sprintf("unable to write container %q: %v", e.Path, e.Err)
}

func (e *ContainerWriteError) Unwrap() error {
	return e.Err
}

// RenderError is returned when chapter body cannot be turned into XHTML.
type RenderError struct {
	Chapter string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("unable to render chapter %q: %v", e.Chapter, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}

// MetadataError reports unusable package metadata.
type MetadataError struct {
	Field  string
	Reason string
}

func (e *MetadataError) Error() string {
	return fmt.Sprintf("bad package metadata %s: %s", e.Field, e.Reason)
}
