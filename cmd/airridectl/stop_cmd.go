package main

import "fmt"

type StopCmd struct {
	Name string `arg:"" help:"service name"`
}

func (c *StopCmd) Run(ctx *Context) error {
	reply, err := ctx.client.request("stop", c.Name)
	if err != nil {
		return err
	}
	fmt.Print(reply)
	if reply != "OK\n" {
		fail("stop failed")
	}
	return nil
}
