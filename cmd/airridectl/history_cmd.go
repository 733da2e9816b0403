package main

import "fmt"

// HistoryCmd shows recent audit events recorded by the optional sqlite
// history store (§14.3). Name is optional: empty shows events across all
// services.
type HistoryCmd struct {
	Name string `arg:"" optional:"" help:"service name (omit for all services)"`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	reply, err := ctx.client.request("history", c.Name)
	if err != nil {
		return err
	}
	fmt.Print(reply)
	return nil
}
