package container

import (
	"vidtube/internal/config"
	"vidtube/internal/repository"
	"vidtube/internal/service"
	"vidtube/internal/service/auth"
	"vidtube/pkg/database"
	"vidtube/pkg/logger"
	"vidtube/pkg/redis"
	"vidtube/pkg/storage"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *logger.Logger
	DB           *database.PostgresDB
	RedisClient  *redis.Client
	Media        storage.MediaStorage
	Repositories *repository.Repositories
	Services     *service.Services
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger, db *database.PostgresDB, media storage.MediaStorage) (*Container, error) {
	// Redis is optional; without it the derived channel views are computed
	// on every request.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
		if err != nil {
			log.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			log.Info("Redis client initialized successfully")
		}
	} else {
		log.Info("Redis URL not configured, proceeding without caching")
	}

	repos := &repository.Repositories{
		User:         repository.NewUserRepository(db),
		Video:        repository.NewVideoRepository(db),
		Subscription: repository.NewSubscriptionRepository(db),
	}

	var cacheService *service.CacheService
	if redisClient != nil {
		cacheService = service.NewCacheService(redisClient, log.Logger)
	}

	services := &service.Services{
		Auth:         auth.NewService(repos.User, cfg, log),
		User:         service.NewUserService(repos.User, repos.Video, repos.Subscription, media, cacheService, log),
		Video:        service.NewVideoService(repos.Video, media, cacheService, log),
		Subscription: service.NewSubscriptionService(repos.Subscription, repos.User, cacheService, log),
	}

	return &Container{
		Config:       cfg,
		Logger:       log,
		DB:           db,
		RedisClient:  redisClient,
		Media:        media,
		Repositories: repos,
		Services:     services,
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetUserService returns the user service
func (c *Container) GetUserService() service.UserService {
	return c.Services.User
}

// GetVideoService returns the video service
func (c *Container) GetVideoService() service.VideoService {
	return c.Services.Video
}

// GetSubscriptionService returns the subscription service
func (c *Container) GetSubscriptionService() service.SubscriptionService {
	return c.Services.Subscription
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}
