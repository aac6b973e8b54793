package api

import (
	"Genie/bot/chat"
	"Genie/internal/config"
	"Genie/internal/http-server/handlers/activity"
	"Genie/internal/http-server/handlers/conversation"
	"Genie/internal/http-server/handlers/errors"
	wshandler "Genie/internal/http-server/handlers/ws"
	"Genie/internal/http-server/middleware/authenticate"
	"Genie/internal/http-server/middleware/timeout"
	"Genie/internal/lib/sl"
	"Genie/internal/ws"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
	"net"
	"net/http"
)

type Server struct {
	conf       *config.Config
	httpServer *http.Server
	log        *slog.Logger
}

type Handler interface {
	authenticate.Authenticate
	activity.Core
	conversation.Core
	ws.TurnHandler
}

// NewRouter builds the API routes.
func NewRouter(conf *config.Config, log *slog.Logger, handler Handler) http.Handler {
	bot := chat.Account{ID: conf.Bot.ID, Name: conf.Bot.Name}
	hub := ws.NewHub(handler, bot, log)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)
	router.Use(authenticate.New(log, handler))

	router.NotFound(errors.NotFound(log))
	router.MethodNotAllowed(errors.NotAllowed(log))

	router.Handle("/metrics", promhttp.Handler())

	router.Route("/api/v1", func(v1 chi.Router) {
		// long lived, no timeout
		v1.Get("/ws", wshandler.Connect(log, hub))

		v1.Group(func(r chi.Router) {
			r.Use(timeout.Timeout(30))
			r.Use(render.SetContentType(render.ContentTypeJSON))

			r.Post("/messages", activity.PostActivity(log, handler))
			r.Route("/conversations", func(r chi.Router) {
				r.Get("/{id}", conversation.GetState(log, handler))
				r.Delete("/{id}", conversation.ResetConversation(log, handler))
			})
		})
	})

	return router
}

func New(conf *config.Config, log *slog.Logger, handler Handler) error {

	server := Server{
		conf: conf,
		log:  log.With(sl.Module("api.server")),
	}

	httpLog := slog.NewLogLogger(log.Handler(), slog.LevelError)
	server.httpServer = &http.Server{
		Handler:  NewRouter(conf, log, handler),
		ErrorLog: httpLog,
	}

	serverAddress := fmt.Sprintf("%s:%s", conf.Listen.BindIP, conf.Listen.Port)
	listener, err := net.Listen("tcp", serverAddress)
	if err != nil {
		return err
	}

	server.log.Info("starting api server", slog.String("address", serverAddress))

	return server.httpServer.Serve(listener)
}
