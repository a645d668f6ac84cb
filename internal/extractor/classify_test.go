package extractor

import (
	"errors"
	"testing"

	"streamgate/internal/domain"
)

func TestClassify_PasswordRequired(t *testing.T) {
	stderr := []byte("ERROR: This video is protected by a password, use the --video-password option\n")

	err := classify("youtube-dl --dump-json https://x", 1, stderr)

	var pwErr *domain.PasswordRequiredError
	if !errors.As(err, &pwErr) {
		t.Fatalf("error = %T, want *domain.PasswordRequiredError", err)
	}
	if pwErr.ExitCode != 1 {
		t.Errorf("ExitCode = %d, want 1", pwErr.ExitCode)
	}
}

func TestClassify_WrongPassword(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
	}{
		{"bare prefix", "ERROR: Wrong password"},
		{"with suffix", "ERROR: Wrong password, try again"},
		{"surrounding whitespace", "  ERROR: Wrong password\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("cmd", 1, []byte(tt.stderr))

			var wrongErr *domain.WrongPasswordError
			if !errors.As(err, &wrongErr) {
				t.Errorf("error = %T, want *domain.WrongPasswordError", err)
			}
		})
	}
}

func TestClassify_Generic(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
	}{
		{"unrelated error", "ERROR: Unsupported URL: https://x"},
		{"empty stderr", ""},
		// The password-required match is exact, not a prefix match.
		{"password message with suffix", "ERROR: This video is protected by a password, use the --video-password option please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify("youtube-dl --dump-json https://x", 2, []byte(tt.stderr))

			var exErr *domain.ExtractorError
			if !errors.As(err, &exErr) {
				t.Fatalf("error = %T, want *domain.ExtractorError", err)
			}
			if exErr.ExitCode != 2 {
				t.Errorf("ExitCode = %d, want 2", exErr.ExitCode)
			}
			if exErr.Cmd != "youtube-dl --dump-json https://x" {
				t.Errorf("Cmd = %q", exErr.Cmd)
			}
		})
	}
}
