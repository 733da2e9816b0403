package airride

// devNode describes one character device node bootstrap must create under
// /dev (spec §6).
type devNode struct {
	Path  string
	Mode  uint32
	Major uint32
	Minor uint32
}

// devNodes is the fixed set of character devices spec §6 requires. Bootstrap
// walks this table and creates each one idempotently.
var devNodes = []devNode{
	{"console", 0600, 5, 1},
	{"null", 0666, 1, 3},
	{"zero", 0666, 1, 5},
	{"random", 0666, 1, 8},
	{"urandom", 0666, 1, 9},
	{"tty", 0666, 5, 0},
	{"tty0", 0620, 4, 0},
	{"tty1", 0620, 4, 1},
	{"tty2", 0620, 4, 2},
	{"tty3", 0620, 4, 3},
	{"ttyS0", 0660, 4, 64},
	{"fb0", 0666, 29, 0},
	{"dri/card0", 0666, 226, 0},
	{"dri/renderD128", 0666, 226, 128},
}
