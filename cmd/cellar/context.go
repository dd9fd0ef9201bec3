package main

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/cellar/internal/app"
	"github.com/mamadbah2/cellar/internal/config"
	"github.com/mamadbah2/cellar/pkg/logger"
)

type commandContext struct {
	envFlag     *string
	verboseFlag *bool

	appOnce sync.Once
	app     *app.App
	appErr  error
}

func newCommandContext(envFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{envFlag: envFlag, verboseFlag: verboseFlag}
}

// ensureApp loads the configuration and opens the cellar once per invocation.
func (c *commandContext) ensureApp(ctx context.Context) (*app.App, error) {
	c.appOnce.Do(func() {
		var path string
		if c.envFlag != nil {
			path = strings.TrimSpace(*c.envFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.appErr = err
			return
		}

		log := zap.NewNop()
		if c.verboseFlag != nil && *c.verboseFlag {
			log, err = logger.New(cfg.Log.Level)
			if err != nil {
				c.appErr = err
				return
			}
		}

		c.app, c.appErr = app.New(ctx, cfg, log)
	})
	return c.app, c.appErr
}

func (c *commandContext) withApp(ctx context.Context, fn func(*app.App) error) error {
	a, err := c.ensureApp(ctx)
	if err != nil {
		return err
	}
	return fn(a)
}

func (c *commandContext) close(ctx context.Context) error {
	if c.app == nil {
		return nil
	}
	return c.app.Close(ctx)
}
