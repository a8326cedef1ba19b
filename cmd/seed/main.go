package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Jorge-Marco5/go-api-template/internal/config"
	"github.com/Jorge-Marco5/go-api-template/internal/database"
	"github.com/Jorge-Marco5/go-api-template/internal/domain"
	"github.com/Jorge-Marco5/go-api-template/internal/repository"

	"github.com/google/uuid"
)

// Seeds an initial admin account so a fresh deployment has a login.
func main() {
	email := flag.String("email", "user@example.com", "admin email")
	password := flag.String("password", "password", "admin password")
	name := flag.String("name", "User Example", "admin display name")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.NewPostgres(ctx, &cfg.Database, database.Options{
		ConnectTimeout: 5 * time.Second,
		MaxRetries:     3,
		RetryInterval:  1 * time.Second,
	})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	users := repository.NewPostgresUserRepository(db.Pool())

	exists, err := users.ExistsByEmail(ctx, *email)
	if err != nil {
		log.Fatalf("Failed to check existing user: %v", err)
	}
	if exists {
		fmt.Printf("User %s already exists, nothing to do\n", *email)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), cfg.JWT.BcryptCost)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New().String(),
		Email:        *email,
		PasswordHash: string(hash),
		Name:         *name,
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("Failed to create user: %v", err)
	}

	fmt.Printf("Admin user %s created (id=%s)\n", user.Email, user.ID)
}
