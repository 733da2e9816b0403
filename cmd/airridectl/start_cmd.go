package main

import "fmt"

type StartCmd struct {
	Name string `arg:"" help:"service name"`
}

func (c *StartCmd) Run(ctx *Context) error {
	reply, err := ctx.client.request("start", c.Name)
	if err != nil {
		return err
	}
	fmt.Print(reply)
	if reply != "OK\n" {
		fail("start failed")
	}
	return nil
}
