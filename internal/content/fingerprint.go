package content

import (
	"strings"

	"github.com/inful/mdfp"
)

// Fingerprint hashes the raw metadata block and the markdown body. A single
// trailing newline on the block is ignored so the value does not depend on
// how the closing fence was reached.
func Fingerprint(rawFrontMatter, body []byte) string {
	return mdfp.CalculateFingerprintFromParts(trimSingleTrailingNewline(string(rawFrontMatter)), string(body))
}

func trimSingleTrailingNewline(s string) string {
	if before, ok := strings.CutSuffix(s, "\r\n"); ok {
		return before
	}
	if before, ok := strings.CutSuffix(s, "\n"); ok {
		return before
	}
	return s
}
