package main

import "fmt"

type RestartCmd struct {
	Name string `arg:"" help:"service name"`
}

func (c *RestartCmd) Run(ctx *Context) error {
	reply, err := ctx.client.request("restart", c.Name)
	if err != nil {
		return err
	}
	fmt.Print(reply)
	if reply != "OK\n" {
		fail("restart failed")
	}
	return nil
}
