package errors

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	plain := New(ErrCodeMissingAttribute, "node %s has no loc", "7")
	assert.Equal(t, "MISSING_ATTRIBUTE: node 7 has no loc", plain.Error())
	assert.Equal(t, "node 7 has no loc", plain.Message)
	assert.Nil(t, plain.Unwrap())

	wrapped := Wrap(ErrCodeInvalidInput, io.ErrUnexpectedEOF, "decode trace %s", "a.json")
	assert.Equal(t, "INVALID_INPUT: decode trace a.json: unexpected EOF", wrapped.Error())
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrCodeInvalidFormat, io.ErrUnexpectedEOF, "decode mask")

	assert.Same(t, io.ErrUnexpectedEOF, errors.Unwrap(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestCodeLookupThroughChain(t *testing.T) {
	inner := New(ErrCodeCycleDetected, "the graph contains undirected cycles")
	chain := fmt.Errorf("load neuron: %w", inner)

	tests := []struct {
		name    string
		err     error
		code    Code
		message string
	}{
		{"direct", inner, ErrCodeCycleDetected, "the graph contains undirected cycles"},
		{"fmt wrapped", chain, ErrCodeCycleDetected, "the graph contains undirected cycles"},
		{"plain", io.EOF, "", "EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, GetCode(tt.err))
			assert.Equal(t, tt.message, UserMessage(tt.err))
			if tt.code != "" {
				assert.True(t, Is(tt.err, tt.code))
			}
			assert.False(t, Is(tt.err, ErrCodeEmptyGraph))
		})
	}

	assert.Equal(t, Code(""), GetCode(nil))
	assert.False(t, Is(nil, ErrCodeInternal))
}

func TestOutermostCodeWins(t *testing.T) {
	inner := New(ErrCodeDuplicateCoordinate, "nodes 1 and 2 share a location")
	outer := Wrap(ErrCodeInvalidInput, inner, "import trace")

	assert.Equal(t, ErrCodeInvalidInput, GetCode(outer))
	assert.False(t, Is(outer, ErrCodeDuplicateCoordinate))

	var e *Error
	require.ErrorAs(t, outer.Cause, &e)
	assert.Equal(t, ErrCodeDuplicateCoordinate, e.Code)
}

func TestGetCodeOr(t *testing.T) {
	assert.Equal(t, ErrCodeCycleDetected, GetCodeOr(New(ErrCodeCycleDetected, "x"), ErrCodeInternal))
	assert.Equal(t, ErrCodeInternal, GetCodeOr(io.EOF, ErrCodeInternal))
}

func TestKinds(t *testing.T) {
	tests := []struct {
		code Code
		kind Kind
	}{
		{ErrCodeMissingAttribute, KindValidation},
		{ErrCodeNonRealElement, KindValidation},
		{ErrCodeDisconnectedGraph, KindValidation},
		{ErrCodeEmptyGraph, KindValidation},
		{ErrCodeInvalidSampleShape, KindParameter},
		{ErrCodeInvalidSampleSize, KindParameter},
		{ErrCodeInvalidFormat, KindInput},
		{ErrCodeFileNotFound, KindNotFound},
		{ErrCodeUnsupported, KindUnsupported},
		{ErrCodeInternal, KindInternal},
		{Code("SOMETHING_NEW"), KindInternal},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.code.Kind())
			assert.Equal(t, tt.kind, KindOf(New(tt.code, "x")))
			assert.Equal(t, tt.kind == KindValidation, IsValidation(New(tt.code, "x")))
		})
	}

	assert.Equal(t, KindInternal, KindOf(io.EOF))
	assert.False(t, IsValidation(io.EOF))
}
