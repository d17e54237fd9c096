package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/torchgen/internal/progress"
)

// AssertNoFile fails the test when rel exists under the harness root.
func AssertNoFile(t *testing.T, result *HarnessResult, rel string) {
	t.Helper()
	_, err := os.Stat(result.Path(rel))
	require.True(t, os.IsNotExist(err), "expected '%s' not to exist", rel)
}

// AssertStages checks the sequence of compile status stages that were
// reported during the run.
func AssertStages(t *testing.T, result *HarnessResult, want ...progress.Stage) {
	t.Helper()
	require.Equal(t, want, result.Progress.Stages(), "unexpected compile status sequence")
}
