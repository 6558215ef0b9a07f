package main

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/eientei/wsgraphqlbc"
	"github.com/eientei/wsgraphqlbc/apollows"
	"github.com/eientei/wsgraphqlbc/auth"
	"github.com/eientei/wsgraphqlbc/compat/gorillaws"
	"github.com/eientei/wsgraphqlbc/compat/nhooyrws"
	"github.com/eientei/wsgraphqlbc/compat/otelwsgraphql"
	"github.com/eientei/wsgraphqlbc/internal/config"
	"github.com/eientei/wsgraphqlbc/internal/schema"
	"github.com/eientei/wsgraphqlbc/router"
	"github.com/gorilla/mux"
	"github.com/graphql-go/graphql"
)

func newUpgrader(cfg config.WebsocketConfig, protocol apollows.Protocol) wsgraphql.Upgrader {
	if cfg.Library == config.LibraryNhooyr {
		return nhooyrws.New(protocol, cfg.CheckOrigin)
	}

	return gorillaws.New(protocol, cfg.CheckOrigin)
}

func newServer(
	cfg *config.Config,
	logger *slog.Logger,
	gqlschema graphql.Schema,
	protocol apollows.Protocol,
	extra ...wsgraphql.ServerOption,
) (wsgraphql.Server, error) {
	options := []wsgraphql.ServerOption{
		wsgraphql.WithUpgrader(newUpgrader(cfg.Websocket, protocol)),
		wsgraphql.WithProtocol(protocol),
		wsgraphql.WithKeepalive(cfg.Websocket.Keepalive),
		wsgraphql.WithConnectTimeout(cfg.Websocket.ConnectTimeout),
		wsgraphql.WithLogger(logger.With("protocol", string(protocol))),
	}

	server, err := wsgraphql.NewServer(gqlschema, append(options, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create %s server: %w", protocol, err)
	}

	return server, nil
}

// newHandler assembles the http handler: websocket upgrades are routed between modern and legacy servers, anything
// else receives empty 404
func newHandler(cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	gqlschema, err := schema.New()
	if err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	legacy, err := newServer(cfg, logger, gqlschema, apollows.WebsocketSubprotocolGraphqlWS)
	if err != nil {
		return nil, err
	}

	modern, err := newServer(
		cfg,
		logger,
		gqlschema,
		apollows.WebsocketSubprotocolGraphqlTransportWS,
		wsgraphql.WithExtraInterceptors(wsgraphql.Interceptors{
			Init: auth.InitInterceptor(auth.StaticToken{
				Header: cfg.Auth.Header,
				Token:  cfg.Auth.Token,
			}),
			Operation: otelwsgraphql.NewOperationInterceptor(),
		}),
	)
	if err != nil {
		return nil, err
	}

	upgrades, err := router.New(modern, legacy, router.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create router: %w", err)
	}

	mx := mux.NewRouter()

	mx.MatcherFunc(func(r *http.Request, _ *mux.RouteMatch) bool {
		return router.IsUpgrade(r)
	}).Handler(upgrades)

	mx.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	return mx, nil
}
