package qa

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// RunOnlyInDebug skips tests that start long-running servers, unless they
// run under delve, which names its binaries __debug_bin*
func RunOnlyInDebug(t *testing.T) {
	ex, _ := os.Executable()
	if !strings.HasPrefix(filepath.Base(ex), "__debug_bin") {
		t.Skipf("%s is debug-only test", t.Name())
	}
}
