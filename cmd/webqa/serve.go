package main

import (
	"fmt"

	"github.com/fwojciec/webqa"
	webqaecho "github.com/fwojciec/webqa/echo"
	"golang.org/x/sync/errgroup"
)

// Run executes the serve command. It blocks until the context is canceled.
func (c *ServeCmd) Run(deps *Dependencies) error {
	s := webqaecho.NewServer()
	s.Addr = c.Addr
	s.Answerer = deps.Answerer
	s.Logger = deps.Logger
	s.Gatherer = deps.Registry

	if err := s.Open(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", webqa.ErrorMessage(err))
		return err
	}
	deps.Logger.Info("listening", "url", s.URL())

	g, ctx := errgroup.WithContext(deps.Ctx)
	g.Go(func() error {
		<-ctx.Done()
		deps.Logger.Info("shutting down")
		return s.Close()
	})
	return g.Wait()
}
