package main

import (
	"context"
	"os"

	"github.com/zibot/farmconnect/config"
	"github.com/zibot/farmconnect/internal/adapter/cli"
	"github.com/zibot/farmconnect/internal/app"
	"github.com/zibot/farmconnect/pkg/sigctx"
)

func main() {
	sigCtx, stop := sigctx.NotifyContext(context.Background())

	root := cli.NewRootCmd(func(cfg config.Config) (cli.Services, error) {
		return app.New(cfg)
	})
	code := cli.Execute(sigCtx, root)

	stop()
	os.Exit(code)
}
