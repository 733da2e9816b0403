package airride

import (
	"bufio"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// declarationSuffix is the filename suffix the loader scans for (spec §6).
const declarationSuffix = ".service"

// LoadServices builds a fresh ServiceTable: the built-in shell first (spec
// §4.B, invariant 4), followed by every well-formed declaration found under
// dir. Malformed files are logged and skipped; loading never fails outright
// (ConfigParseError, spec §7).
func LoadServices(log *slog.Logger, dir string) *ServiceTable {
	table := NewServiceTable()
	table.Add(builtinShell())

	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Warn("service directory unreadable", "dir", dir, "error", err)
		return table
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), declarationSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		svc, err := parseDeclarationFile(path)
		if err != nil {
			log.Warn("discarding unparsable service declaration", "path", path, "error", err)
			continue
		}
		if svc == nil {
			continue // empty name, discarded silently per spec §4.B
		}
		if !table.Add(svc) {
			log.Warn("duplicate service name, keeping first declaration", "name", svc.Name, "path", path)
		}
	}
	return table
}

func parseDeclarationFile(path string) (*Service, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseDeclaration(f)
}

// parseDeclaration implements the grammar of spec §4.B: two recognized
// sections, Service and Dependencies, key=value lines, quoted-string
// stripping, and the type/restart/bool value coercions.
func parseDeclaration(r io.Reader) (*Service, error) {
	svc := &Service{Kind: KindSimple}
	section := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		line = strings.TrimRight(strings.TrimLeft(line, " \t"), " \t")
		if line == "" || line[0] == '#' {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = line[1 : len(line)-1]
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			continue
		}
		key := strings.TrimRight(line[:eq], " \t")
		val := strings.TrimLeft(line[eq+1:], " \t")
		val = unquote(val)

		switch section {
		case "Service":
			applyServiceKey(svc, key, val)
		case "Dependencies":
			applyDependencyKey(svc, key, val)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if svc.Name == "" {
		return nil, nil
	}
	return svc, nil
}

func unquote(val string) string {
	if len(val) >= 2 && val[0] == '"' && val[len(val)-1] == '"' {
		return val[1 : len(val)-1]
	}
	return val
}

func parseBool(val string) bool {
	switch val {
	case "true", "yes", "1":
		return true
	default:
		return false
	}
}

func applyServiceKey(svc *Service, key, val string) {
	switch key {
	case "name":
		svc.Name = val
	case "description":
		svc.Description = val
	case "type":
		svc.Kind = parseKind(val)
	case "exec_start":
		svc.ExecStart = val
	case "exec_stop":
		svc.ExecStop = val
	case "tty":
		svc.TTY = val
	case "foreground":
		svc.Foreground = parseBool(val)
	case "autostart":
		svc.Autostart = parseBool(val)
	case "parallel":
		svc.Parallel = parseBool(val)
	case "restart":
		svc.RestartOnFailure = val == "on-failure" || val == "always"
	case "restart_delay":
		svc.RestartDelay = atoiDefault(val, 0)
	case "clear_screen":
		svc.ClearScreen = parseBool(val)
	}
}

func applyDependencyKey(svc *Service, key, val string) {
	fields := strings.Fields(val)
	switch key {
	case "requires":
		svc.Requires = append(svc.Requires, fields...)
	case "after":
		svc.After = append(svc.After, fields...)
	}
}

func atoiDefault(s string, def int) int {
	n := 0
	neg := false
	for i, r := range s {
		if i == 0 && r == '-' {
			neg = true
			continue
		}
		if r < '0' || r > '9' {
			return def
		}
		n = n*10 + int(r-'0')
	}
	if s == "" || (neg && len(s) == 1) {
		return def
	}
	if neg {
		n = -n
	}
	return n
}
