package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntropyCommand(t *testing.T) {
	args := []string{"entropy",
		"--population", "50", "--attempts", "200", "--interval", "50",
		"--size", "8", "--seed", "7"}
	out, err := execute(t, NewRootCommand(), args...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// Header plus 200/50 samples.
	require.Len(t, lines, 5)
	assert.Equal(t, "attempts\tentropy\tunique\tpopulation", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "50\t"))
	assert.True(t, strings.HasPrefix(lines[4], "200\t"))

	// Deterministic for a fixed seed.
	again, err := execute(t, NewRootCommand(), args...)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestEntropyCommand_BadInterval(t *testing.T) {
	_, err := execute(t, NewRootCommand(), "entropy",
		"--population", "10", "--attempts", "10", "--interval", "0")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
