package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/tabwriter"
)

type ListCmd struct{}

var listLineRE = regexp.MustCompile(`^  (\S+) - (\S+)(.*)$`)

// Run fetches the supervisor's list reply and re-renders it through a
// tabwriter for aligned columns (grounded on cmd/sand/ls_cmd.go's use of
// text/tabwriter), coloring the state column when the terminal supports it.
func (c *ListCmd) Run(ctx *Context) error {
	reply, err := ctx.client.request("list", "")
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tFLAGS")
	for _, line := range strings.Split(reply, "\n") {
		m := listLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		name, state, flags := m[1], m[2], strings.TrimSpace(m[3])
		fmt.Fprintf(w, "%s\t%s\t%s\n", name, colorState(state, ctx.Color), flags)
	}
	return w.Flush()
}
