package session

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"github.com/ideaforge/ideaforge/internal/catalog"
	"github.com/ideaforge/ideaforge/internal/engine"
)

// REPL runs the interactive session loop around a Controller.
type REPL struct {
	controller *Controller
	rl         *readline.Instance
}

// Config holds REPL configuration.
type Config struct {
	Session *engine.Session
	Catalog *catalog.Store // optional
}

// NewREPL creates a REPL for the session.
func NewREPL(cfg *Config) (*REPL, error) {
	if cfg.Session == nil {
		return nil, fmt.Errorf("session is required")
	}
	return &REPL{
		controller: New(cfg.Session, cfg.Catalog, os.Stdout),
	}, nil
}

// Run starts the loop and blocks until the session ends.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            r.controller.Prompt(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "stop",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.controller.Start()

	for !r.controller.Done() {
		rl.SetPrompt(r.controller.Prompt())
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}
		r.controller.Handle(ctx, line)
	}
	return nil
}
