package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/talakhisi-be/internal/api/handlers"
	"github.com/isdelr/talakhisi-be/internal/auth"
	"github.com/isdelr/talakhisi-be/internal/controller"
	"github.com/isdelr/talakhisi-be/internal/services"
	"github.com/isdelr/talakhisi-be/internal/websocket"
)

// Dependencies are the components the router exposes.
type Dependencies struct {
	App       *controller.Controller
	Tokens    *auth.Manager
	Hub       *websocket.Hub
	Accounts  services.AccountServiceProvider
	Library   services.LibraryServiceProvider
	Feedback  services.FeedbackServiceProvider
	Messages  services.MessageServiceProvider
	Dashboard services.DashboardServiceProvider
	Chat      handlers.ChatProvider
	Speech    handlers.SpeechProvider

	AllowedOrigins []string
	SecureCookies  bool
}

// NewRouter creates and configures a new Chi router.
func NewRouter(deps Dependencies) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(deps.App, deps.Tokens, deps.SecureCookies)
	stateHandler := handlers.NewStateHandler(deps.App)
	assistHandler := handlers.NewAssistHandler(deps.Chat, deps.Speech)
	libraryHandler := handlers.NewLibraryHandler(deps.Library, deps.App)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Feedback)
	messageHandler := handlers.NewMessageHandler(deps.Messages)
	adminHandler := handlers.NewAdminHandler(deps.Accounts, deps.Dashboard)
	wsHandler := handlers.NewWebSocketHandler(deps.Hub, deps.AllowedOrigins)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// API versioning
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
			r.With(deps.Tokens.JWTMiddleware()).Post("/logout", authHandler.Logout)
			r.With(deps.Tokens.JWTMiddleware()).Get("/me", authHandler.GetMe)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Tokens.JWTMiddleware())

			// The application state belongs to the account logged in to it.
			r.Group(func(r chi.Router) {
				r.Use(stateHandler.RequireOwner)

				r.Route("/state", func(r chi.Router) {
					r.Get("/", stateHandler.Get)
					r.Post("/view", stateHandler.SetView)
					r.Post("/home", stateHandler.Home)
					r.Post("/reset", stateHandler.Reset)
				})
				r.Post("/process", stateHandler.Process)
			})

			r.Get("/ws", wsHandler.Serve)
			r.Post("/chat", assistHandler.Chat)
			r.Post("/speech", assistHandler.Speech)

			r.Route("/library", func(r chi.Router) {
				r.Get("/", libraryHandler.List)
				r.Post("/", libraryHandler.Add)
				r.Get("/subjects", libraryHandler.Subjects)
				r.Post("/toggle", libraryHandler.Toggle)
				r.Delete("/{id}", libraryHandler.Delete)
				r.With(stateHandler.RequireOwner).Post("/{id}/open", libraryHandler.Open)
			})

			r.Get("/messages", messageHandler.Inbox)
			r.Post("/feedback", feedbackHandler.Submit)

			r.Route("/admin", func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Get("/accounts", adminHandler.ListAccounts)
				r.Delete("/accounts/{email}", adminHandler.DeleteAccount)
				r.Post("/accounts/{email}/role", adminHandler.SetRole)

				r.Get("/feedback", feedbackHandler.List)
				r.Post("/feedback/{id}/status", feedbackHandler.SetStatus)

				r.Get("/messages", messageHandler.List)
				r.Post("/messages", messageHandler.Send)
				r.Delete("/messages/{id}", messageHandler.Delete)

				r.Get("/stats", adminHandler.Stats)
			})
		})
	})

	return r
}
