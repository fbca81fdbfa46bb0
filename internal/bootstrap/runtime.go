// Package bootstrap wires the runtime dependencies (database, Redis, dev
// fixtures) before the server starts.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"memberbase/internal/cache"
	"memberbase/internal/config"
	"memberbase/internal/database"
	"memberbase/internal/models"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// InitRuntime connects to DB and Redis and ensures development fixtures.
func InitRuntime(cfg *config.Config) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootSuperadmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root superadmin: %w", err)
	}

	return db, r, nil
}

// ensureDevRootSuperadmin guarantees a usable superadmin account exists in
// development so the review workflows are reachable on a fresh database.
// Never runs outside the development profile.
func ensureDevRootSuperadmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapRoot {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(cfg.DevRootEmail))
	if email == "" {
		email = "root@memberbase.local"
	}
	password := cfg.DevRootPassword
	if password == "" {
		return fmt.Errorf("DEV_ROOT_PASSWORD must be set when DEV_BOOTSTRAP_ROOT is enabled")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.Principal
		findErr := tx.Where("email = ?", email).First(&root).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.Principal{
				FullName: "Root Superadmin",
				Email:    email,
				Password: string(hashedPassword),
				Role:     models.RoleSuperadmin,
				Status:   models.StatusActive,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			updates := map[string]any{
				"role":     models.RoleSuperadmin,
				"status":   models.StatusActive,
				"password": string(hashedPassword),
			}
			if err := tx.Model(&models.Principal{}).Where("id = ?", root.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	log.Printf("development root superadmin bootstrap ensured (%s)", email)
	return nil
}
