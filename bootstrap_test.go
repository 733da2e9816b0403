package airride

import "testing"

func TestIsPID1(t *testing.T) {
	// The test binary itself is never pid 1.
	if IsPID1() {
		t.Fatal("test process should not be pid 1")
	}
}

func TestBootstrapMountsCarrySpecFlags(t *testing.T) {
	for _, m := range bootstrapMounts {
		if m.target == "/proc" && m.fs != "proc" {
			t.Errorf("/proc mount fs = %q, want proc", m.fs)
		}
		if m.target == "/dev/pts" && m.flags != 0 {
			t.Errorf("devpts mount should carry no MS_ flags, got %d", m.flags)
		}
	}
	if len(bootstrapMounts) != 6 {
		t.Errorf("bootstrapMounts has %d entries, want 6", len(bootstrapMounts))
	}
}
