package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	pkgAuth "github.com/angelmondragon/limited-access-backend/pkg/auth"
	"github.com/angelmondragon/limited-access-backend/pkg/config"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
)

// admin-token prints a bearer token for the waitlist dashboard routes.
func main() {
	subject := flag.String("subject", "", "admin identity recorded in the token (e.g. an email)")
	ttl := flag.Duration("ttl", 0, "override WAITLIST_ADMIN_TOKEN_TTL")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "admin-token", Output: os.Stderr})
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	if !cfg.Admin.Enabled() {
		logg.Error(ctx, "WAITLIST_ADMIN_JWT_SECRET is not set; admin routes are open", nil)
		os.Exit(1)
	}
	if *ttl > 0 {
		cfg.Admin.TokenTTL = *ttl
	}

	token, err := pkgAuth.MintAdminToken(cfg.Admin, time.Now(), *subject)
	if err != nil {
		logg.Error(logg.WithField(ctx, "subject", *subject), "failed to mint admin token", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
