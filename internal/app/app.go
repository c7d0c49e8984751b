package app

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/zibot/farmconnect/config"
	"github.com/zibot/farmconnect/internal/adapter/apiclient"
	"github.com/zibot/farmconnect/internal/adapter/asset"
	"github.com/zibot/farmconnect/internal/adapter/snapshot"
	"github.com/zibot/farmconnect/internal/core/domain"
	"github.com/zibot/farmconnect/internal/core/port"
	"github.com/zibot/farmconnect/internal/core/service"
)

// App owns the API client and hands out the per-screen controllers.
type App struct {
	cfg    config.Config
	client apiclient.Client
	picker asset.Picker
}

type Opt func(*appOpts)

type appOpts struct {
	logOutput io.Writer
}

// LogOutputOpt redirects the JSON log from stderr to w.
func LogOutputOpt(w io.Writer) Opt {
	return func(o *appOpts) {
		if w != nil {
			o.logOutput = w
		}
	}
}

func New(cfg config.Config, opts ...Opt) (*App, error) {
	const op = "app.New"

	options := appOpts{logOutput: os.Stderr}
	for _, opt := range opts {
		opt(&options)
	}

	app := &App{cfg: cfg}
	app.initLogger(options.logOutput)

	if err := app.initClient(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	slog.Debug("application is ready", "baseURL", app.client.BaseURL())
	return app, nil
}

func (app *App) initLogger(w io.Writer) {
	opts := &slog.HandlerOptions{Level: app.cfg.LogLevel}
	logger := slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(logger)
}

func (app *App) initClient() error {
	client, err := apiclient.New(
		apiclient.BaseURLOpt(app.cfg.API.BaseURL),
		apiclient.UserAgentOpt(app.cfg.API.UserAgent),
		apiclient.TLSOpt(apiclient.TLSFiles{
			CA:   app.cfg.API.TLS.CAFile,
			Cert: app.cfg.API.TLS.CertFile,
			Key:  app.cfg.API.TLS.KeyFile,
		}),
	)
	if err != nil {
		return err
	}
	app.client = client
	return nil
}

func (app *App) Config() config.Config {
	return app.cfg
}

func (app *App) Session() service.Session {
	return service.NewSession(app.client)
}

func (app *App) Catalog() *service.Catalog {
	return service.NewCatalog(app.client)
}

func (app *App) Moderation() *service.Moderation {
	return service.NewModeration(app.client)
}

func (app *App) Listings(seller domain.User) *service.Listings {
	return service.NewListings(app.client, seller)
}

func (app *App) Submission(seller domain.User) service.Submission {
	return service.NewSubmission(app.client, seller)
}

func (app *App) ImagePicker() port.ImagePicker {
	return app.picker
}

func (app *App) Exporter() snapshot.Exporter {
	return snapshot.NewExporter(app.client)
}
