package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorString(t *testing.T) {
	cause := errors.New("unexpected EOF")
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"bare", New(ErrCodeInvalidDocument, "missing %q array", "edges"), `INVALID_DOCUMENT: missing "edges" array`},
		{"wrapped", Wrap(ErrCodeInvalidFormat, cause, "parse flow.json"), "INVALID_FORMAT: parse flow.json: unexpected EOF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("permission denied")
	err := Wrap(ErrCodeFileNotFound, cause, "open %s", "flow.json")

	if errors.Unwrap(err) != cause || !errors.Is(err, cause) {
		t.Error("cause not reachable through the error chain")
	}
	if err.Message != "open flow.json" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestCodeLookup(t *testing.T) {
	notFound := New(ErrCodeNotFound, "node %q", "bank")
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", notFound, ErrCodeNotFound},
		{"fmt wrapped", fmt.Errorf("edit: %w", notFound), ErrCodeNotFound},
		{"outermost wins", Wrap(ErrCodeInternal, New(ErrCodeRejected, "self-loop"), "apply"), ErrCodeInternal},
		{"plain", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{Wrap(ErrCodeInvalidConfig, errors.New("toml: line 3"), "load config"), "load config"},
		{fmt.Errorf("serve: %w", New(ErrCodeRejected, "connection rejected")), "connection rejected"},
		{errors.New("plain error"), "plain error"},
	}
	for _, tt := range tests {
		if got := UserMessage(tt.err); got != tt.want {
			t.Errorf("UserMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestIsInvalid(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"invalid document", New(ErrCodeInvalidDocument, "x"), true},
		{"invalid name wrapped", fmt.Errorf("put: %w", New(ErrCodeInvalidName, "x")), true},
		{"not found", New(ErrCodeNotFound, "x"), false},
		{"rejected", New(ErrCodeRejected, "x"), false},
		{"plain", errors.New("x"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsInvalid(tt.err); got != tt.want {
				t.Errorf("IsInvalid() = %v, want %v", got, tt.want)
			}
		})
	}
}
