package app

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatVersion(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.2.0 (commit: 0123456789ab, built: 2026-01-02)",
		formatVersion("1.2.0", "0123456789abcdef", "2026-01-02"))
	assert.Equal(t, "dev (commit: unknown, built: unknown)",
		formatVersion("dev", "unknown", "unknown"))
}

func TestBuildVersion_StartsWithVersion(t *testing.T) {
	t.Parallel()

	assert.True(t, strings.HasPrefix(BuildVersion(), Version+" (commit: "))
}
