package main

import (
	"context"
	"log"

	"storysmith/internal/auth"
	"storysmith/internal/cache"
	"storysmith/internal/config"
	"storysmith/internal/db"
	"storysmith/internal/model"
	"storysmith/internal/repository"
	"storysmith/internal/service"
)

// demoUser is a demo account created by the seed script.
type demoUser struct {
	Email    string
	Username string
	Password string
}

var demoUsers = []demoUser{
	{Email: "alice@example.com", Username: "alice", Password: "storytime1"},
	{Email: "bob@example.com", Username: "bob", Password: "storytime2"},
	{Email: "carol@example.com", Username: "carol", Password: "storytime3"},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)

	ctx := context.Background()
	created, skipped := 0, 0
	for _, u := range demoUsers {
		if _, err := authService.Register(ctx, u.Email, u.Username, u.Password); err != nil {
			if err == service.ErrUserAlreadyExists {
				skipped++
				continue
			}
			log.Fatalf("Failed to seed user %s: %v", u.Email, err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
