package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"userauth/internal/auth"
	"userauth/internal/cache"
	"userauth/internal/config"
	apperrors "userauth/internal/errors"
	"userauth/internal/logging"
	"userauth/internal/repository"
	"userauth/internal/service"
)

// SeedUser is one entry of the seed file.
type SeedUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	path := flag.String("file", "seed/users.json", "JSON file with an array of {name,email,password}")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	logger, err := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("init logger", "error", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, *path, logger); err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, path string, logger *slog.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	entries, err := readSeedUsers(f)
	if err != nil {
		return err
	}
	logger.Info("loaded seed file", "path", path, "users", len(entries))

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	users, closeStore, err := repository.Open(ctx, cfg, cacheClient, logger)
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer closeLogged(logger, "user store", closeStore)

	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	tokens, err := auth.NewTokenCodec(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}

	created, skipped, err := seedUsers(ctx, service.NewAuthService(users, hasher, tokens, logger), entries, logger)
	if err != nil {
		return err
	}

	logger.Info("seed completed", "created", created, "skipped", skipped, "total", created+skipped)
	return nil
}

// closeLogged runs closeFn and logs a failure at warn.
func closeLogged(logger *slog.Logger, what string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn("close "+what, "error", err)
	}
}

// readSeedUsers decodes a JSON array of seed users.
func readSeedUsers(r io.Reader) ([]SeedUser, error) {
	var entries []SeedUser
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return entries, nil
}

// seedUsers signs up each entry. Already registered emails are counted as
// skipped; any other failure stops the run.
func seedUsers(ctx context.Context, svc service.AuthService, entries []SeedUser, logger *slog.Logger) (created int, skipped int, err error) {
	for _, u := range entries {
		if _, err := svc.SignUp(ctx, u.Name, u.Email, u.Password); err != nil {
			if errors.Is(err, apperrors.ErrDuplicateEmail) {
				logger.Debug("user already exists", "email", u.Email)
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("sign up %s: %w", u.Email, err)
		}
		created++
	}
	return created, skipped, nil
}
