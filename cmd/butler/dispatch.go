package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vinayprograms/butler/internal/dispatch"
)

// Run dispatches a single message from the command line.
func (c *DispatchCmd) Run(cli *CLI) error {
	rt, err := newRuntime(cli.Config, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := rt.dispatcher.Dispatch(context.Background(), c.Message, dispatch.Request{
		ContextID: c.Context,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	fmt.Println(result.Reply)
	return nil
}
