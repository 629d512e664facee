package errors

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeDecodeFailed, cause, "failed to decode")

	if err.Code != ErrCodeDecodeFailed {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeDecodeFailed)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "DECODE_FAILED: failed to decode: underlying error"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidImage, "test"),
			code:     ErrCodeInvalidImage,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidImage, "test"),
			code:     ErrCodeRasterizeFailed,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeRasterizeFailed, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeRasterizeFailed,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeElementNotFound, "x")); got != ErrCodeElementNotFound {
		t.Errorf("GetCode() = %v, want %v", got, ErrCodeElementNotFound)
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(New(ErrCodeInvalidImage, "image has zero area")); got != "image has zero area" {
		t.Errorf("UserMessage() = %q", got)
	}
	if got := UserMessage(errors.New("plain")); got != "plain" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestFamilies(t *testing.T) {
	tests := []struct {
		code     Code
		invalid  bool
		resource bool
	}{
		{ErrCodeInvalidImage, true, false},
		{ErrCodeEmptyArrangement, true, false},
		{ErrCodeInvalidAspect, true, false},
		{ErrCodeDecodeFailed, false, true},
		{ErrCodeRasterizeFailed, false, true},
		{ErrCodeElementNotFound, false, false},
		{ErrCodeInternal, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := Wrap(ErrCodeInternal, New(tt.code, "inner"), "outer")
			inner := New(tt.code, "x")
			if got := IsInvalidInput(inner); got != tt.invalid {
				t.Errorf("IsInvalidInput() = %v, want %v", got, tt.invalid)
			}
			if got := IsResourceFailure(inner); got != tt.resource {
				t.Errorf("IsResourceFailure() = %v, want %v", got, tt.resource)
			}
			// The outermost code wins.
			if IsInvalidInput(err) {
				t.Error("IsInvalidInput() should look at the outermost code")
			}
		})
	}
}
