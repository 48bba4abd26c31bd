package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// ensureAdmin creates the first administrator when the database has no
// active users yet. It returns the generated password, or "" if nothing was
// created.
func ensureAdmin(ctx context.Context, database *sql.DB, name string) (string, error) {
	n, err := store.CountUsers(ctx, database)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return "", nil
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	// The admin also gets the user role so the profile pages work for them.
	roles := []model.Role{model.RoleAdmin, model.RoleUser}
	if _, err := store.CreateUser(ctx, database, name, string(hash), roles); err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}
	return password, nil
}

func printAdmin(dbPath, username, password string) {
	fmt.Printf("Initialized %s\n\n", dbPath)
	fmt.Println("Administrator:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n\n", password)
	fmt.Println("The password is shown only once. Change it with PUT /api/auth/password.")
}

func generatePassword(length int) (string, error) {
	const charset = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%&*"
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}
