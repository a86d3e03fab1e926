package hgcalhistory

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		err      error
		sentinel error
		msg      string
	}{
		{&NotFoundError{Kind: "track", ID: 7}, ErrNotFound, "track 7 not found"},
		{&BrokenReferenceError{VertexID: 3, ParentTrackID: 9}, ErrBrokenReference, "vertex 3: parent track 9 is not in the event"},
		{Constructionf("grid", "%d edges", 1), ErrInvalidConstruction, "cannot build grid: 1 edges"},
		{&LayerError{Layer: 29, Endcap: "+"}, ErrOutOfRange, "layer 29 is not registered for endcap +"},
		{&BinError{I: 1, J: 2, Reason: "no data"}, ErrOutOfRange, "bin (1,2): no data"},
	}
	for _, tt := range tests {
		wrapped := fmt.Errorf("context: %w", tt.err)
		assert.ErrorIs(t, wrapped, tt.sentinel)
		assert.Equal(t, tt.msg, tt.err.Error())
	}

	var notFound *NotFoundError
	require.True(t, errors.As(fmt.Errorf("x: %w", &NotFoundError{Kind: "vertex", ID: 1}), &notFound))
	assert.Equal(t, "vertex", notFound.Kind)
	assert.False(t, errors.Is(&NotFoundError{}, ErrOutOfRange))
}
