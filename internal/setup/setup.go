package setup

import (
	"github.com/redis/go-redis/v9"

	"github.com/pharmhub-dev/pharmhub/internal/config"
	"github.com/pharmhub-dev/pharmhub/internal/email"
	"github.com/pharmhub-dev/pharmhub/internal/handler"
	"github.com/pharmhub-dev/pharmhub/internal/middleware"
	"github.com/pharmhub-dev/pharmhub/internal/password"
	"github.com/pharmhub-dev/pharmhub/internal/revocation"
	"github.com/pharmhub-dev/pharmhub/internal/service"
	"github.com/pharmhub-dev/pharmhub/internal/storage/pg"
	"github.com/pharmhub-dev/pharmhub/internal/token"
)

// Dependencies holds all initialized dependencies.
type Dependencies struct {
	Config         *config.Config
	Storage        *pg.Storage
	Redis          *redis.Client
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
}

// SetupDependencies constructs every component explicitly; nothing lives in
// package-level state.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := storage.EnsureSchema(); err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Public.Redis.Addr,
		Password: cfg.Public.Redis.Password,
		DB:       cfg.Public.Redis.Db,
	})

	mailer := email.New(&cfg.Private.Email)
	hasher := password.NewBcrypt(0)
	tokens := token.NewCodec(cfg.JwtSecret(), cfg.Public.AccessTokenTTL, cfg.Public.RefreshTokenTTL)
	resetTokens := token.NewResetCodec(cfg.JwtSecret())
	revocations := revocation.NewStore(redisClient, "revoked")

	auth := service.NewAuth(storage, mailer, hasher, tokens, resetTokens, revocations, &cfg.Public)
	users := service.NewUsers(storage)
	contact := service.NewContact(mailer, mailer.SiteInbox())

	h := handler.New(auth, users, contact, &cfg.Public)
	authMw := middleware.NewAuth(auth)

	return &Dependencies{
		Config:         cfg,
		Storage:        storage,
		Redis:          redisClient,
		Handler:        h,
		AuthMiddleware: authMw,
	}, nil
}

// Cleanup releases storage and redis connections.
func (d *Dependencies) Cleanup() {
	if d.Storage != nil {
		d.Storage.Cleanup()
	}
	if d.Redis != nil {
		d.Redis.Close()
	}
}
