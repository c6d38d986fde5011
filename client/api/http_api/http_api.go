package http_api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echo_middleware "github.com/labstack/echo/v4/middleware"

	"github.com/qash-finance/qash-sub002/client/api/http_api/handlers"
	"github.com/qash-finance/qash-sub002/client/api/http_api/router"
	"github.com/qash-finance/qash-sub002/client/config"
	"github.com/qash-finance/qash-sub002/client/modules/logger"
	"github.com/qash-finance/qash-sub002/client/services"
)

type RESTApiProvider struct {
	config       *config.HttpApiConfig
	echoInstance *echo.Echo
}

func (p *RESTApiProvider) NewServer(config *config.Config, sp *services.ServiceProvider) error {
	if config.HttpApiConfig == nil || config.HttpApiConfig.ListenAddr == "" {
		return errors.New("http_api.listen_addr is required")
	}
	p.config = config.HttpApiConfig

	p.echoInstance = NewEcho(handlers.NewHTTPApp(sp), sp.GetLogger(), config.HttpApiConfig.Debug)
	return nil
}

// NewEcho builds the echo instance serving app.
func NewEcho(app *handlers.HTTPApp, l logger.Logger, debug bool) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true
	e.Debug = debug

	e.HTTPErrorHandler = customHTTPErrorHandler(l)

	// Middlewares

	e.Use(echo_middleware.Recover())
	if debug {
		e.Use(echo_middleware.Logger())
	}

	e.Use(contextServiceMiddleware)

	router.SetRouter(e, app)

	return e
}

// Start blocks until the server is stopped.
func (p *RESTApiProvider) Start() error {
	if err := p.echoInstance.Start(p.config.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (p *RESTApiProvider) Stop(ctx context.Context) error {
	return p.echoInstance.Shutdown(ctx)
}
