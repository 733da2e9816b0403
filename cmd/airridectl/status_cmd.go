package main

import (
	"fmt"
	"strings"
)

type StatusCmd struct {
	Name string `arg:"" help:"service name"`
}

func (c *StatusCmd) Run(ctx *Context) error {
	reply, err := ctx.client.request("status", c.Name)
	if err != nil {
		return err
	}
	if reply == "Service not found\n" {
		fail("Service not found")
	}
	fmt.Print(colorizeStatus(reply, ctx.Color))
	return nil
}

func colorizeStatus(reply string, color bool) string {
	const prefix = "State: "
	lines := strings.Split(reply, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, prefix) {
			lines[i] = prefix + colorState(strings.TrimPrefix(line, prefix), color)
		}
	}
	return strings.Join(lines, "\n")
}
