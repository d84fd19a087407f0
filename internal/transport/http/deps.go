package http

import (
	"fmt"
	"time"

	"github.com/news-api/internal/application/article"
	"github.com/news-api/internal/application/auth"
	"github.com/news-api/internal/application/category"
	"github.com/news-api/internal/application/comment"
	"github.com/news-api/internal/application/role"
	"github.com/news-api/internal/application/session"
	"github.com/news-api/internal/application/statistics"
	"github.com/news-api/internal/application/tag"
	"github.com/news-api/internal/application/twofactor"
	"github.com/news-api/internal/application/user"
	"github.com/news-api/internal/config"
	"github.com/news-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/news-api/internal/infrastructure/jwt"
	s3infra "github.com/news-api/internal/infrastructure/s3"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	SessionRepo      *dynamo.SessionRepo
	ArticleRepo      *dynamo.ArticleRepo
	ArticleImageRepo *dynamo.ArticleImageRepo
	CategoryRepo     *dynamo.CategoryRepo
	TagRepo          *dynamo.TagRepo
	CommentRepo      *dynamo.CommentRepo
	ReplyRepo        *dynamo.ReplyRepo
	// Codes backs both code channels and pending logins. Emails and phone
	// numbers never collide as keys.
	Codes       twofactor.Store
	S3Store     *s3infra.Store
	Mailer      twofactor.NotificationSender
	SMSSender   twofactor.NotificationSender
	JWTProvider *jwtinfra.Provider
	// Now is shared by every time-dependent service. It must be the clock
	// Codes was built with.
	Now func() time.Time
}

// Services are the application services behind the HTTP handlers.
type Services struct {
	Auth       auth.Service
	Sessions   session.Service
	Users      user.Service
	Roles      role.Service
	Articles   article.Service
	Categories category.Service
	Tags       tag.Service
	Comments   comment.Service
	Statistics statistics.Service
}

// NewServices wires the application services over deps.
func NewServices(cfg *config.Config, deps *Deps) (*Services, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	verifier, err := auth.NewBcryptVerifier(deps.UserRepo, 0)
	if err != nil {
		return nil, fmt.Errorf("init password verifier: %w", err)
	}

	sessionSvc := session.NewService(session.ServiceDeps{
		SessionRepo: deps.SessionRepo,
		UserRepo:    deps.UserRepo,
		Signer:      deps.JWTProvider,
		Now:         now,
	})

	generator := twofactor.NewGenerator(cfg.TwoFactor.CodeLength)
	emailCodes := twofactor.NewService(twofactor.ServiceDeps{
		Store:     deps.Codes,
		Sender:    deps.Mailer,
		Generator: generator,
		TTL:       cfg.TwoFactor.CodeTTL,
		Now:       now,
		Channel:   "email",
	})
	phoneCodes := twofactor.NewService(twofactor.ServiceDeps{
		Store:     deps.Codes,
		Sender:    deps.SMSSender,
		Generator: generator,
		TTL:       cfg.TwoFactor.CodeTTL,
		Now:       now,
		Channel:   "sms",
	})

	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:          deps.UserRepo,
		SessionRepo:       deps.SessionRepo,
		Verifier:          verifier,
		Issuer:            sessionSvc,
		EmailCodes:        emailCodes,
		PhoneCodes:        phoneCodes,
		Pending:           deps.Codes,
		CodeTTL:           cfg.TwoFactor.CodeTTL,
		PasswordMinLength: cfg.PasswordMinLength,
		Now:               now,
	})

	return &Services{
		Auth:     authSvc,
		Sessions: sessionSvc,
		Users: user.NewService(user.ServiceDeps{
			UserRepo:    deps.UserRepo,
			SessionRepo: deps.SessionRepo,
			Hasher:      verifier,
			Now:         now,
		}),
		Roles: role.NewService(),
		Articles: article.NewService(article.ServiceDeps{
			ArticleRepo:  deps.ArticleRepo,
			ImageRepo:    deps.ArticleImageRepo,
			Objects:      deps.S3Store,
			CommentRepo:  deps.CommentRepo,
			ReplyRepo:    deps.ReplyRepo,
			CategoryRepo: deps.CategoryRepo,
			TagRepo:      deps.TagRepo,
			ObjectKey:    s3infra.ImageKey,
			Now:          now,
		}),
		Categories: category.NewService(deps.CategoryRepo),
		Tags:       tag.NewService(deps.TagRepo),
		Comments: comment.NewService(comment.ServiceDeps{
			CommentRepo: deps.CommentRepo,
			ReplyRepo:   deps.ReplyRepo,
			ArticleRepo: deps.ArticleRepo,
			Now:         now,
		}),
		Statistics: statistics.NewService(statistics.ServiceDeps{
			ArticleRepo:  deps.ArticleRepo,
			UserRepo:     deps.UserRepo,
			CategoryRepo: deps.CategoryRepo,
			CommentRepo:  deps.CommentRepo,
		}),
	}, nil
}
