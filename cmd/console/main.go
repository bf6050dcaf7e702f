package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/ajibolad/phoneauth/internal/config"
	"github.com/ajibolad/phoneauth/internal/console"
	"github.com/ajibolad/phoneauth/internal/database"
	"github.com/ajibolad/phoneauth/internal/repositories"
	"github.com/ajibolad/phoneauth/internal/services"
	"github.com/ajibolad/phoneauth/internal/sms"
)

func main() {
	ctx := context.Background()

	godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	postgresPool, err := database.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create postgres pool: %v", err)
	}
	defer postgresPool.Close()

	if err := database.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to create redis client: %v", err)
	}
	defer redisClient.Close()

	accountRepo := repositories.NewPostgresAccountRepository(postgresPool)
	challengeRepo := repositories.NewRedisChallengeRepository(redisClient)
	sender := sms.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioPhoneNumber)
	engine := services.NewVerificationEngine(challengeRepo, sender, cfg.CodeLength, cfg.MaxAttempts, cfg.CodeTTL)
	tokens := services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	accountService := services.NewAccountService(accountRepo, engine, tokens, cfg.SessionTimeout())

	if err := console.New(accountService, os.Stdin, os.Stdout).Run(ctx); err != nil {
		log.Fatalf("Console error: %v", err)
	}
}
