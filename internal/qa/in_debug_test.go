package qa

import "testing"

func TestRunOnlyInDebugSkips(t *testing.T) {
	ran := t.Run("inner", func(t *testing.T) {
		RunOnlyInDebug(t)
		t.Fatal("must be skipped outside of debugger")
	})
	if !ran {
		t.Fatal("skipped test must not fail")
	}
}
