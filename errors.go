package hgcalhistory

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by strict id lookups that miss.
	ErrNotFound = errors.New("not found")
	// ErrOutOfRange is returned for unregistered layers and for bin queries
	// against a grid that holds no data or outside its shape.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidConstruction is returned when an object cannot be built from
	// its inputs. The object is not returned alongside it.
	ErrInvalidConstruction = errors.New("invalid construction")
	// ErrBrokenReference marks a vertex whose parent track id is set but
	// absent from the event.
	ErrBrokenReference = errors.New("broken reference")
)

// NotFoundError reports a strict lookup miss.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// BrokenReferenceError reports a vertex pointing at a parent track that is not
// part of the event, typically because it was filtered out upstream.
type BrokenReferenceError struct {
	VertexID      int64
	ParentTrackID int64
}

func (e *BrokenReferenceError) Error() string {
	return fmt.Sprintf("vertex %d: parent track %d is not in the event", e.VertexID, e.ParentTrackID)
}

func (e *BrokenReferenceError) Unwrap() error { return ErrBrokenReference }

// ConstructionError describes why an object could not be built.
type ConstructionError struct {
	What   string
	Reason string
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("cannot build %s: %s", e.What, e.Reason)
}

func (e *ConstructionError) Unwrap() error { return ErrInvalidConstruction }

// Constructionf is a shorthand for returning a *ConstructionError.
func Constructionf(what, format string, args ...any) error {
	return &ConstructionError{What: what, Reason: fmt.Sprintf(format, args...)}
}

// LayerError reports a layer that is not registered for an endcap.
type LayerError struct {
	Layer  int
	Endcap string
}

func (e *LayerError) Error() string {
	return fmt.Sprintf("layer %d is not registered for endcap %s", e.Layer, e.Endcap)
}

func (e *LayerError) Unwrap() error { return ErrOutOfRange }

// BinError reports a bin query that cannot be answered.
type BinError struct {
	I, J   int
	Reason string
}

func (e *BinError) Error() string {
	return fmt.Sprintf("bin (%d,%d): %s", e.I, e.J, e.Reason)
}

func (e *BinError) Unwrap() error { return ErrOutOfRange }
