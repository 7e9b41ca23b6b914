package cli

import (
	"errors"
	"testing"

	"github.com/yllada/vpn-supervisor/common"
)

func TestSignatureFromFile(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		wantErr  bool
	}{
		{
			name:     "signature with comment",
			raw:      "untrusted comment: signed by key id 1\nRWQBASE64SIGNATURELINE\n",
			expected: "RWQBASE64SIGNATURELINE",
		},
		{
			name:     "bare signature line",
			raw:      "RWQBASE64SIGNATURELINE",
			expected: "RWQBASE64SIGNATURELINE",
		},
		{
			name:     "leading blank lines",
			raw:      "\n\nRWQBASE64SIGNATURELINE\n",
			expected: "RWQBASE64SIGNATURELINE",
		},
		{
			name:    "only comments",
			raw:     "untrusted comment: nothing else\n",
			wantErr: true,
		},
		{
			name:    "empty file",
			raw:     "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SignatureFromFile(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, common.ErrMalformedInput) {
					t.Fatalf("Expected ErrMalformedInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SignatureFromFile failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestShortID(t *testing.T) {
	tests := []struct {
		uuid     string
		expected string
	}{
		{"01234567-89ab-cdef-0123-456789abcdef", "01234567"},
		{"short", "short"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := shortID(tt.uuid); got != tt.expected {
			t.Errorf("shortID(%q) = %q, expected %q", tt.uuid, got, tt.expected)
		}
	}
}
