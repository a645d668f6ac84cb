package extractor

import (
	"strings"

	"streamgate/internal/domain"
)

// Literal messages the extractor prints for password failures. Matched
// exactly (after trimming) so unrelated errors never masquerade as
// credential problems.
const (
	passwordRequiredMessage = "ERROR: This video is protected by a password, use the --video-password option"
	wrongPasswordPrefix     = "ERROR: Wrong password"
)

// classify maps a failed extractor invocation to a typed error.
// First match wins: exact password-required message, then the
// wrong-password prefix, then a generic extractor failure carrying the
// full command line.
func classify(cmdline string, exitCode int, stderr []byte) error {
	msg := strings.TrimSpace(string(stderr))

	if msg == passwordRequiredMessage {
		return &domain.PasswordRequiredError{ExitCode: exitCode}
	}
	if strings.HasPrefix(msg, wrongPasswordPrefix) {
		return &domain.WrongPasswordError{ExitCode: exitCode}
	}

	return &domain.ExtractorError{
		Cmd:      cmdline,
		Stderr:   msg,
		ExitCode: exitCode,
	}
}
