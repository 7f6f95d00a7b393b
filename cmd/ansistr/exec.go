package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/ansistr/internal/engine/buffer"
	"github.com/dshills/ansistr/internal/engine/cancel"
)

// execute runs fn with a token that is canceled when ctx is done or the
// --timeout elapses. With --progress, a second goroutine logs the token's
// counter until fn returns.
func (c *cli) execute(ctx context.Context, op string, fn func(tok *cancel.Token) error) error {
	if c.opts.timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, c.opts.timeout)
		defer cancelTimeout()
	}

	tok, stop := cancel.WithContext(ctx)
	defer stop()

	log := logrus.WithFields(logrus.Fields{"op": op, "token": tok.ID()})
	start := time.Now()
	done := make(chan struct{})

	var g errgroup.Group
	g.Go(func() error {
		defer close(done)
		return fn(tok)
	})
	if c.opts.progress > 0 {
		g.Go(func() error {
			reportProgress(log, tok, c.opts.progress, done)
			return nil
		})
	}
	err := g.Wait()

	log.WithFields(logrus.Fields{
		"bytes":   tok.Progress(),
		"elapsed": time.Since(start),
	}).Debug("operation finished")

	if errors.Is(err, buffer.ErrCanceled) && ctx.Err() != nil {
		return errors.Wrapf(err, "%s stopped after %d bytes (%v)", op, tok.Progress(), context.Cause(ctx))
	}
	return err
}

func reportProgress(log logrus.FieldLogger, tok *cancel.Token, every time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			log.WithField("bytes", tok.Progress()).Info("progress")
		}
	}
}
