package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetOut(nil) })
	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
	return out.String()
}

func TestSequenceCommand(t *testing.T) {
	t.Setenv("ROLL_PREFIX", "24UECC")
	t.Setenv("ROLL_START", "8001")
	t.Setenv("ROLL_END", "8003")
	t.Setenv("ROLL_PRIORITY", "8002")

	require.Equal(t, "24UECC8002\n24UECC8001\n24UECC8003\n", run(t, "sequence"))
}

func TestMergeCommandEmptyDir(t *testing.T) {
	dir := t.TempDir()
	require.Contains(t, run(t, "merge", dir), "No PDFs found")
}
