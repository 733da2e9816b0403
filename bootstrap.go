package airride

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// hostnameFile is read for the single-line hostname (spec §6); devDir is the
// root under which device nodes are created.
const (
	hostnameFile    = "/etc/hostname"
	defaultHostname = "airride"
	devDir          = "/dev"
)

type mountSpec struct {
	source string
	target string
	fs     string
	flags  uintptr
	data   string
	perm   os.FileMode
}

// bootstrapMounts is the fixed mount table of spec §6.
var bootstrapMounts = []mountSpec{
	{"proc", "/proc", "proc", unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, "", 0o755},
	{"sysfs", "/sys", "sysfs", unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, "", 0o755},
	{"devtmpfs", "/dev", "devtmpfs", unix.MS_NOSUID, "mode=0755", 0o755},
	{"devpts", "/dev/pts", "devpts", 0, "gid=5,mode=620", 0o755},
	{"tmpfs", "/run", "tmpfs", unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, "mode=0755", 0o755},
	{"tmpfs", "/tmp", "tmpfs", unix.MS_NOEXEC | unix.MS_NOSUID | unix.MS_NODEV, "mode=1777", 0o1777},
}

// Bootstrap prepares the filesystem namespace (spec §4.A). It is only
// meaningful when the calling process is process one; IsPID1 should gate
// the call. Every individual mount, mkdir, and device-node creation is
// best-effort: failures are logged and bootstrap proceeds (BootstrapPartial,
// spec §7), so that an emergency shell remains reachable even on a
// partially-broken image.
func Bootstrap(log *slog.Logger) {
	log.Info("bootstrap starting")

	for _, m := range bootstrapMounts {
		if err := os.MkdirAll(m.target, m.perm); err != nil {
			log.Warn("mkdir failed", "path", m.target, "error", err)
			continue
		}
		if err := unix.Mount(m.source, m.target, m.fs, m.flags, m.data); err != nil && !errors.Is(err, unix.EBUSY) {
			log.Warn("mount failed", "source", m.source, "target", m.target, "fs", m.fs, "error", err)
		}
	}

	if err := os.MkdirAll("/dev/dri", 0o755); err != nil {
		log.Warn("mkdir failed", "path", "/dev/dri", "error", err)
	}

	for _, n := range devNodes {
		if err := makeDevNode(n); err != nil && !os.IsExist(err) {
			log.Warn("device node creation failed", "path", n.Path, "error", err)
		}
	}

	if name := readHostname(); name != "" {
		if err := unix.Sethostname([]byte(name)); err != nil {
			log.Warn("sethostname failed", "hostname", name, "error", err)
		}
	}

	log.Info("bootstrap complete")
}

func makeDevNode(n devNode) error {
	path := fmt.Sprintf("%s/%s", devDir, n.Path)
	dev := unix.Mkdev(n.Major, n.Minor)
	return unix.Mknod(path, unix.S_IFCHR|n.Mode, int(dev))
}

func readHostname() string {
	data, err := os.ReadFile(hostnameFile)
	if err != nil {
		return defaultHostname
	}
	lines := strings.SplitN(string(data), "\n", 2)
	name := strings.TrimSpace(lines[0])
	if name == "" {
		return defaultHostname
	}
	return name
}

// IsPID1 reports whether the current process is process one.
func IsPID1() bool {
	return os.Getpid() == 1
}
