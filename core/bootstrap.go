package core

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log"
	"os"
)

// BootstrapAccount seeds a first account when the users table is empty, so a
// fresh deployment can be logged into without manual inserts. It is
// idempotent: any existing user disables it. The generated password is only
// ever written to cfg.InitialPasswordPath, never logged.
func BootstrapAccount(ctx context.Context, repo UserRepository, cfg Config) error {
	if !cfg.BootstrapEnabled {
		return nil
	}
	if cfg.InitialPasswordPath == "" {
		return errors.New("bootstrap requires an initial password path")
	}

	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	password, err := generatePassword(32)
	if err != nil {
		return err
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if _, err := repo.Create(ctx, cfg.BootstrapUsername, hash); err != nil {
		return err
	}

	if err := os.WriteFile(cfg.InitialPasswordPath, []byte(password+"\n"), 0o600); err != nil {
		return err
	}
	log.Printf("initial account %q created; password written to %s", cfg.BootstrapUsername, cfg.InitialPasswordPath)
	return nil
}

func generatePassword(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("password length must be positive")
	}
	raw := make([]byte, length)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw)[:length], nil
}
