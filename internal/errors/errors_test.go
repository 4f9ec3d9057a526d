package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenGapsError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("permission denied")

	// When: wrapping with TokenGapsError
	err := New(ErrCodeFilePermission, "cannot read input.txt", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, err)
	assert.Equal(t, originalErr, errors.Unwrap(err))
	assert.True(t, errors.Is(err, originalErr))
}

func TestTokenGapsError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "file error",
			code:     ErrCodeFileNotFound,
			message:  "doc.txt not found",
			expected: "[ERR_201_FILE_NOT_FOUND] doc.txt not found",
		},
		{
			name:     "validation error",
			code:     ErrCodeQueryEmpty,
			message:  "phrase is empty",
			expected: "[ERR_404_QUERY_EMPTY] phrase is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestTokenGapsError_Is_MatchesByCode(t *testing.T) {
	// Given: two errors with the same code but different messages
	a := New(ErrCodeUnknownParameter, "first", nil)
	b := New(ErrCodeUnknownParameter, "second", nil)
	c := New(ErrCodeConfigInvalid, "third", nil)

	// Then: Is matches by code only
	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestNew_DerivesCategoryAndSeverity(t *testing.T) {
	tests := []struct {
		code     string
		category Category
		severity Severity
	}{
		{ErrCodeConfigInvalid, CategoryConfig, SeverityError},
		{ErrCodeUnknownComponent, CategoryConfig, SeverityError},
		{ErrCodeFileNotFound, CategoryIO, SeverityError},
		{ErrCodeCorruptIndex, CategoryIO, SeverityFatal},
		{ErrCodeQueryEmpty, CategoryValidation, SeverityWarning},
		{ErrCodeSearchFailed, CategoryInternal, SeverityError},
		{"BAD", CategoryInternal, SeverityError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "msg", nil)
			assert.Equal(t, tt.category, err.Category)
			assert.Equal(t, tt.severity, err.Severity)
		})
	}
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestUnknownParameters_ListsSortedKeys(t *testing.T) {
	// Given: unconsumed arguments
	args := map[string]string{"zeta": "1", "alpha": "2"}

	// When: building the error
	err := UnknownParameters("removeTokenGaps", args)

	// Then: keys are listed in order and the code is stable
	assert.Equal(t, ErrCodeUnknownParameter, err.Code)
	assert.Contains(t, err.Message, "alpha, zeta")
	assert.Equal(t, "removeTokenGaps", err.Details["component"])
	assert.NotEmpty(t, err.Suggestion)
}

func TestUnknownComponent(t *testing.T) {
	err := UnknownComponent("filter", "nope")

	assert.Equal(t, ErrCodeUnknownComponent, GetCode(err))
	assert.Equal(t, CategoryConfig, GetCategory(err))
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Contains(t, err.Suggestion, "tokengaps config filters")
}

func TestHelpers_FindWrappedError(t *testing.T) {
	// Given: a structured error wrapped with fmt.Errorf
	inner := New(ErrCodeCorruptIndex, "index is corrupted", nil).WithSuggestion("rebuild it")
	wrapped := fmt.Errorf("failed to open index: %w", inner)

	// Then: the helpers see through the wrapping
	te, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, te)
	assert.Equal(t, ErrCodeCorruptIndex, GetCode(wrapped))
	assert.Equal(t, CategoryIO, GetCategory(wrapped))
	assert.True(t, IsFatal(wrapped))

	// And: CLI output keeps the code and hint instead of reporting ERR_501
	out := FormatForCLI(wrapped)
	assert.Contains(t, out, "Code: "+ErrCodeCorruptIndex)
	assert.Contains(t, out, "Hint: rebuild it")
	assert.NotContains(t, out, ErrCodeInternal)

	attrs := LogAttrs(wrapped)
	require.NotEmpty(t, attrs)
	assert.Equal(t, ErrCodeCorruptIndex, attrs[0].Value.String())
}

func TestHelpers_PlainErrors(t *testing.T) {
	plain := errors.New("boom")

	assert.Empty(t, GetCode(plain))
	assert.Empty(t, GetCategory(plain))
	assert.False(t, IsFatal(plain))
	assert.True(t, IsFatal(New(ErrCodeCorruptIndex, "bad", nil)))
}

func TestFormatForCLI(t *testing.T) {
	// Given: a structured error with a suggestion
	err := ConfigError("bad tokenizer", nil).WithSuggestion("use 'code' or 'whitespace'")

	// When: formatting for the terminal
	out := FormatForCLI(err)

	// Then: message, hint and code are present
	assert.Contains(t, out, "Error: bad tokenizer")
	assert.Contains(t, out, "Hint: use 'code' or 'whitespace'")
	assert.Contains(t, out, "Code: ERR_102_CONFIG_INVALID")

	assert.Empty(t, FormatForCLI(nil))
	assert.Contains(t, FormatForCLI(errors.New("plain")), ErrCodeInternal)
}

func TestFormatJSON(t *testing.T) {
	err := IOError("missing", errors.New("no such file")).WithDetail("path", "a.txt")

	data, jerr := FormatJSON(err)
	require.NoError(t, jerr)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ErrCodeFileNotFound, decoded["code"])
	assert.Equal(t, "IO", decoded["category"])
	assert.Equal(t, "no such file", decoded["cause"])
}

func TestLogAttrs(t *testing.T) {
	assert.Nil(t, LogAttrs(nil))

	plain := LogAttrs(errors.New("x"))
	require.Len(t, plain, 1)
	assert.Equal(t, "error", plain[0].Key)

	attrs := LogAttrs(ValidationError("bad", errors.New("cause")).
		WithDetail("b", "2").WithDetail("a", "1"))
	keys := make([]string, 0, len(attrs))
	for _, a := range attrs {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"error_code", "message", "category", "severity", "cause", "detail_a", "detail_b"}, keys)
}
