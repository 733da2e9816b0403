// Command airridectl is the companion client for the airride supervisor: it
// speaks the control socket's plain-text protocol to start, stop, restart,
// query, and list services.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	kongcompletion "github.com/jotaen/kong-completion"
)

// Context carries shared, resolved dependencies into every subcommand's
// Run method (grounded on cmd/sand/main.go's Context struct).
type Context struct {
	SocketPath string
	Token      string
	Color      bool
	client     *client
}

// CLI is the root kong command tree.
type CLI struct {
	SocketPath string `default:"/run/airride.sock" help:"control socket path"`
	TokenFile  string `help:"path to a control-endpoint shared secret, if auth is enabled"`
	NoColor    bool   `help:"disable ANSI coloring of status/list output"`

	Start      StartCmd           `cmd:"" help:"start a service"`
	Stop       StopCmd            `cmd:"" help:"stop a service"`
	Restart    RestartCmd         `cmd:"" help:"restart a service"`
	Status     StatusCmd          `cmd:"" help:"show a service's status"`
	List       ListCmd            `cmd:"" help:"list all services"`
	History    HistoryCmd         `cmd:"" help:"show recent lifecycle events"`
	Version    VersionCmd         `cmd:"" help:"print version information"`
	Completion kongcompletion.Cmd `cmd:"" help:"print shell completion scripts"`
}

func main() {
	var cli CLI
	parser := kong.Must(&cli,
		kong.Configuration(kong.JSON, ".airridectl.json", "~/.airridectl.json"),
		kong.Description("control client for the airride process supervisor"))

	kongcompletion.Register(parser)

	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	token := readToken(cli.TokenFile)
	cctx := &Context{
		SocketPath: cli.SocketPath,
		Token:      token,
		Color:      !cli.NoColor && isTerminalStdout(),
		client:     newClient(cli.SocketPath, token),
	}

	err = kctx.Run(cctx)
	kctx.FatalIfErrorf(err)
}

func readToken(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return trimNewline(string(data))
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
