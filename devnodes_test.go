package airride

import "testing"

func TestDevNodesMatchSpecTable(t *testing.T) {
	want := map[string][3]uint32{ // path -> {mode, major, minor}
		"console":        {0600, 5, 1},
		"null":           {0666, 1, 3},
		"zero":           {0666, 1, 5},
		"random":         {0666, 1, 8},
		"urandom":        {0666, 1, 9},
		"tty":            {0666, 5, 0},
		"tty0":           {0620, 4, 0},
		"tty1":           {0620, 4, 1},
		"tty2":           {0620, 4, 2},
		"tty3":           {0620, 4, 3},
		"ttyS0":          {0660, 4, 64},
		"fb0":            {0666, 29, 0},
		"dri/card0":      {0666, 226, 0},
		"dri/renderD128": {0666, 226, 128},
	}
	if len(devNodes) != len(want) {
		t.Fatalf("devNodes has %d entries, want %d", len(devNodes), len(want))
	}
	seen := map[string]bool{}
	for _, n := range devNodes {
		seen[n.Path] = true
		exp, ok := want[n.Path]
		if !ok {
			t.Errorf("unexpected device node %q", n.Path)
			continue
		}
		if n.Mode != exp[0] || n.Major != exp[1] || n.Minor != exp[2] {
			t.Errorf("%s = mode %o major %d minor %d, want mode %o major %d minor %d",
				n.Path, n.Mode, n.Major, n.Minor, exp[0], exp[1], exp[2])
		}
	}
	for path := range want {
		if !seen[path] {
			t.Errorf("missing device node %q", path)
		}
	}
}
