package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/vinayprograms/butler/internal/dispatch"
)

// Run subscribes to inbound messages on NATS and dispatches each one.
// Subjects look like <prefix>.inbound.<context-id>; the reply goes back on
// the request's reply subject when one is set.
func (c *ServeCmd) Run(cli *CLI) error {
	rt, err := newRuntime(cli.Config, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	prefix := rt.cfg.NATS.SubjectPrefix
	subject := prefix + ".inbound.>"
	log := rt.logger.WithComponent("serve")

	sub, err := rt.nc.QueueSubscribe(subject, c.Queue, func(msg *nats.Msg) {
		contextID := strings.TrimPrefix(msg.Subject, prefix+".inbound.")
		// One goroutine per message: dispatches are independent and the
		// NATS callback must not block on LLM latency.
		go func() {
			result, err := rt.dispatcher.Dispatch(context.Background(), string(msg.Data), dispatch.Request{
				ContextID: contextID,
			})
			if err != nil {
				log.Error("dispatch failed", map[string]interface{}{
					"context": contextID,
					"error":   err.Error(),
				})
				if msg.Reply != "" {
					_ = msg.Respond([]byte("Sorry, I could not work out how to handle that."))
				}
				return
			}
			if msg.Reply != "" {
				_ = msg.Respond([]byte(result.Reply))
			}
		}()
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	log.Info("serving", map[string]interface{}{
		"subject": subject,
		"queue":   c.Queue,
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")
	return nil
}
