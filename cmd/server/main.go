package main // Entry point package

import (
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/AbdullaK123/writing-website-backend/internal/auth"
	"github.com/AbdullaK123/writing-website-backend/internal/config"
	"github.com/AbdullaK123/writing-website-backend/internal/database"
	"github.com/AbdullaK123/writing-website-backend/internal/handler"
	"github.com/AbdullaK123/writing-website-backend/internal/middleware"
	"github.com/AbdullaK123/writing-website-backend/internal/queue"
	"github.com/AbdullaK123/writing-website-backend/internal/repository"
	"github.com/AbdullaK123/writing-website-backend/internal/router"
	"github.com/AbdullaK123/writing-website-backend/internal/store"
)

func main() {
	// .env is optional; real deployments inject the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		// Sessions and refresh-token revocation live in Redis; without it
		// the auth core cannot honor its contract.
		log.Fatal("redis unavailable: session and token stores require it")
	}
	defer rdb.Close()

	users := repository.NewUserRepo(db)
	stories := repository.NewStoryRepo(db)
	chapters := repository.NewChapterRepo(db)

	sessions := store.NewSessionStore(rdb, time.Duration(cfg.SessionTTLHours)*time.Hour)
	refreshTokens := store.NewRefreshTokenStore(rdb)

	authService := auth.New(users, sessions, refreshTokens, auth.Options{
		Strategy:   cfg.AuthStrategy,
		Secret:     cfg.JWTSecret,
		Algorithm:  cfg.JWTAlgorithm,
		AccessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
		RefreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
		BcryptCost: cfg.BcryptCost,
	})

	authHandler := handler.NewAuthHandler(cfg, authService)
	storyHandler := handler.NewStoryHandler(stories)
	chapterHandler := handler.NewChapterHandler(stories, chapters)

	gate := middleware.RequireUser(cfg.AuthStrategy, authService)
	lookup := middleware.LookupUser(cfg.AuthStrategy, authService)
	limiter := middleware.NewRateLimiter(config.LoadRateLimitConfig(), rdb)

	// Background consumer mirroring signups to logs/signups.log.
	go queue.StartSignupConsumer()

	e := echo.New()
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
	}))

	router.RegisterRoutes(e)
	router.RegisterUsers(e, authHandler, gate, limiter)
	router.RegisterStories(e, storyHandler, chapterHandler, gate, lookup)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, auth=%s)", addr, cfg.Env, cfg.AuthStrategy)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
