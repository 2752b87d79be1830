package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vinayprograms/butler/internal/replay"
	"github.com/vinayprograms/butler/internal/session"
)

// Run replays a recorded session, live-following it when requested.
func (c *ReplayCmd) Run(cli *CLI) error {
	rt, err := newRuntime(cli.Config, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	r := replay.New(os.Stdout, c.Verbose)

	// A JSONL path works regardless of the configured backend.
	path := c.Session
	if !strings.HasSuffix(path, ".jsonl") {
		if fs, ok := rt.store.(*session.FileStore); ok {
			path = fs.Path(c.Session)
		} else {
			sess, err := rt.store.Load(c.Session)
			if err != nil {
				return err
			}
			if c.NoPager {
				return r.Replay(sess)
			}
			return replay.NewPager("session " + sess.ID).Run(r.Render(sess))
		}
	}

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("session not found: %s", c.Session)
	}

	if c.NoPager {
		return r.ReplayFile(path)
	}

	render := func() (string, error) {
		sess, err := session.LoadFile(path)
		if err != nil {
			return "", err
		}
		return r.Render(sess), nil
	}

	title := "session " + strings.TrimSuffix(filepath.Base(path), ".jsonl")
	pager := replay.NewPager(title)
	if c.Follow {
		return pager.RunLive(path, render)
	}
	content, err := render()
	if err != nil {
		return err
	}
	return pager.Run(content)
}
