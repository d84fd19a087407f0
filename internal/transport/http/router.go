package http

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/news-api/internal/config"
	"github.com/news-api/internal/domain"
	jwtinfra "github.com/news-api/internal/infrastructure/jwt"
	"github.com/news-api/internal/transport/http/handler"
	appmiddleware "github.com/news-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router. ctx bounds the
// lifetime of background work such as rate limiter cleanup.
func NewRouter(ctx context.Context, cfg *config.Config, tokens *jwtinfra.Provider, svcs *Services) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authMw := appmiddleware.Auth(tokens, svcs.Sessions)
	// Applied to the credential and code endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(svcs.Auth)
	phoneH := handler.NewPhoneConfirmHandler(svcs.Auth)
	sessionH := handler.NewSessionHandler(svcs.Sessions)
	userH := handler.NewUserHandler(svcs.Users)
	roleH := handler.NewRoleHandler(svcs.Roles)
	articleH := handler.NewArticleHandler(svcs.Articles)
	categoryH := handler.NewCategoryHandler(svcs.Categories)
	tagH := handler.NewTagHandler(svcs.Tags)
	commentH := handler.NewCommentHandler(svcs.Comments)
	statsH := handler.NewStatisticsHandler(svcs.Statistics)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/login", authH.Login)
			r.Post("/register", authH.Register)
			r.Post("/forgot-password", authH.ForgotPassword)
			r.Post("/2fa/verify-login", authH.VerifyLogin)
			r.Post("/2fa/verify-reset-password", authH.VerifyReset)
			r.Post("/2fa/resend-code", authH.ResendCode)
		})

		r.Get("/articles", articleH.ListPublished)
		r.Get("/articles/search", articleH.Search)
		r.Get("/articles/top", articleH.Top)
		r.Get("/articles/{id}", articleH.View)
		r.Get("/articles/{id}/images", articleH.ListImages)
		r.Get("/articles/{id}/comments", commentH.List)
		r.Get("/comments/{commentID}", commentH.GetComment)
		r.Get("/comments/{commentID}/replies", commentH.ListReplies)
		r.Get("/replies/{replyID}", commentH.GetReply)
		r.Get("/replies/{replyID}/replies", commentH.ListChildReplies)
		r.Get("/categories", categoryH.List)
		r.Get("/categories/{id}", categoryH.Get)
		r.Get("/tags", tagH.List)
		r.Get("/tags/{id}", tagH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)

			r.Get("/users/profile", userH.Profile)
			r.Put("/users/password", userH.ChangePassword)
			r.Get("/users/{id}", userH.Get)
			r.Put("/users/{id}", userH.Update)
			r.Delete("/users/{id}", userH.Delete)
			r.Post("/confirm-phone/{action}", phoneH.Action)

			r.Get("/roles", roleH.List)
			r.Get("/roles/{name}", roleH.Get)

			r.Post("/articles/{id}/comments", commentH.Create)
			r.Post("/comments/{commentID}/replies", commentH.Reply)
			r.Post("/comments/{commentID}/like", commentH.LikeComment)
			r.Put("/comments/{commentID}", commentH.UpdateComment)
			r.Patch("/comments/{commentID}/status", commentH.SetCommentStatus)
			r.Delete("/comments/{commentID}", commentH.DeleteComment)
			r.Post("/replies/{replyID}/like", commentH.LikeReply)
			r.Put("/replies/{replyID}", commentH.UpdateReply)
			r.Patch("/replies/{replyID}/status", commentH.SetReplyStatus)
			r.Delete("/replies/{replyID}", commentH.DeleteReply)

			// Writers and admins
			r.Route("/writer", func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleWriter))

				r.Get("/articles", articleH.ListOwn)
				r.Post("/articles", articleH.Create)
				r.Get("/articles/{id}", articleH.GetForEdit)
				r.Put("/articles/{id}", articleH.Update)
				r.Patch("/articles/{id}/status", articleH.UpdateStatus)
				r.Delete("/articles/{id}", articleH.Delete)
				r.Post("/articles/{id}/images", articleH.UploadImage)
				r.Delete("/articles/{id}/images/{imageID}", articleH.DeleteImage)
				r.Get("/statistics", statsH.Writer)
			})

			// Admin-only routes
			r.Route("/admin", func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/users", userH.List)
				r.Put("/users/{id}/role", userH.ChangeRole)
				r.Get("/articles", articleH.ListAll)

				r.Post("/categories", categoryH.Create)
				r.Put("/categories/{id}", categoryH.Update)
				r.Delete("/categories/{id}", categoryH.Delete)

				r.Post("/tags", tagH.Create)
				r.Put("/tags/{id}", tagH.Update)
				r.Delete("/tags/{id}", tagH.Delete)

				r.Get("/statistics", statsH.Admin)
			})
		})
	})

	return r
}
