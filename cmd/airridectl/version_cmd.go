package main

import (
	"encoding/json"
	"fmt"

	"github.com/airride/airride/version"
)

type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *Context) error {
	info := version.Get()
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
