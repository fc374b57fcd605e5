package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)
	err := rootCmd.Execute()
	return buf.String(), err
}

// TestKBCmd_ListEmpty tests the empty-store message.
func TestKBCmd_ListEmpty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "kb", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored mappings")
}

// TestKBCmd_ShowAndClear tests the inspect and delete flow.
func TestKBCmd_ShowAndClear(t *testing.T) {
	kb := setupTestServices(t)
	ctx := context.Background()
	require.NoError(t, kb.AddMapping(ctx, "london_system", map[int]int{2: 1, 1: 2}))

	out, err := execute(t, "kb", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "london_system")

	out, err = execute(t, "kb", "show", "london_system")
	require.NoError(t, err)
	assert.Contains(t, out, "variation 1 -> pattern 2")
	assert.Contains(t, out, "variation 2 -> pattern 1")

	out, err = execute(t, "kb", "clear", "london_system")
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared mappings for london_system")

	out, err = execute(t, "kb", "show", "london_system")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored mappings for london_system")
}
