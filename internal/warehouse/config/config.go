// Package config is the biz_config section of the application config.
package config

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	appconsts "github.com/warehouse-management/warehouse/internal/application/consts"
)

const defaultJWTSecret = "default-secret-key"

type AdminAccount struct {
	Username string `yaml:"username" json:"username" validate:"required"`
	Email    string `yaml:"email" json:"email" validate:"required,email"`
	Password string `yaml:"password" json:"password" validate:"required,min=6"`
}

type Config struct {
	JWTSecret  string        `yaml:"jwt_secret" json:"jwt_secret" validate:"required"`
	TokenTTL   time.Duration `yaml:"token_ttl" json:"token_ttl" validate:"gt=0"`
	BcryptCost int           `yaml:"bcrypt_cost" json:"bcrypt_cost" validate:"gte=4,lte=31"`
	SeedData   bool          `yaml:"seed_data" json:"seed_data"`
	Admin      AdminAccount  `yaml:"admin" json:"admin"`
}

func Default() *Config {
	return &Config{
		JWTSecret:  defaultJWTSecret,
		TokenTTL:   24 * time.Hour,
		BcryptCost: bcrypt.DefaultCost,
		SeedData:   true,
		Admin: AdminAccount{
			Username: "admin",
			Email:    "admin@warehouse.com",
			Password: "admin123",
		},
	}
}

// ApplyEnv lets WAREHOUSE_JWT_SECRET override the file.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(appconsts.ENV_JWT_SECRET); ok && v != "" {
		c.JWTSecret = v
	}
}

// UsesDefaultSecret reports whether tokens are signed with the built-in key.
func (c *Config) UsesDefaultSecret() bool { return c.JWTSecret == defaultJWTSecret }

// From extracts the warehouse section, falling back to defaults when the
// application was started without one.
func From(biz any) *Config {
	if c, ok := biz.(*Config); ok && c != nil {
		return c
	}
	return Default()
}
