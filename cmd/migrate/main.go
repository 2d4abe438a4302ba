package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [drop|up|seed]")
		os.Exit(1)
	}
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS watch_history CASCADE`,
		`DROP TABLE IF EXISTS subscriptions CASCADE`,
		`DROP TABLE IF EXISTS videos CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			full_name VARCHAR(255) NOT NULL,
			avatar_url TEXT NOT NULL,
			cover_image_url TEXT DEFAULT '',
			password_hash TEXT NOT NULL,
			refresh_token TEXT,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS videos (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title VARCHAR(100) NOT NULL,
			description TEXT DEFAULT '',
			video_url TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL,
			duration DOUBLE PRECISION NOT NULL DEFAULT 0,
			views BIGINT NOT NULL DEFAULT 0,
			is_published BOOLEAN NOT NULL DEFAULT true,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS subscriptions (
			id UUID PRIMARY KEY,
			subscriber_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			channel_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			CONSTRAINT subscriptions_pair_unique UNIQUE (subscriber_id, channel_id)
		)`,

		// No foreign key on video_id: history entries outlive deleted
		// videos and are dropped at read time instead
		`CREATE TABLE IF NOT EXISTS watch_history (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			video_id UUID NOT NULL,
			position BIGSERIAL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			PRIMARY KEY (user_id, position)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_videos_owner_id ON videos(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_videos_created_at ON videos(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_channel_id ON subscriptions(channel_id)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_subscriber_id ON subscriptions(subscriber_id)`,
		`CREATE INDEX IF NOT EXISTS idx_watch_history_user_id ON watch_history(user_id)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	fmt.Println("  Created tables: users, videos, subscriptions, watch_history")

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	hash, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed password: %w", err)
	}

	users := []struct {
		id       string
		username string
		email    string
		fullName string
	}{
		{"6f1d8a8e-0b65-4f0e-9a59-1c4f5f0a2d01", "alice", "alice@example.com", "Alice Chen"},
		{"6f1d8a8e-0b65-4f0e-9a59-1c4f5f0a2d02", "bob", "bob@example.com", "Bob Harris"},
	}

	for _, u := range users {
		_, err := conn.Exec(ctx, `
			INSERT INTO users (id, username, email, full_name, avatar_url, password_hash)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (username) DO NOTHING`,
			u.id, u.username, u.email, u.fullName,
			"https://placehold.co/avatars/"+u.username+".png", string(hash))
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", u.username, err)
		}
		fmt.Printf("  Seeded user: %s\n", u.username)
	}

	_, err = conn.Exec(ctx, `
		INSERT INTO videos (id, owner_id, title, description, video_url, thumbnail_url, duration, views)
		VALUES
			('9c2e61a4-3d6f-4b8a-8d2c-7a1b9e3f5c01', $1, 'Getting started', 'A short intro video', 'https://media.example.com/videos/intro.mp4', 'https://media.example.com/thumbs/intro.jpg', 212.5, 48),
			('9c2e61a4-3d6f-4b8a-8d2c-7a1b9e3f5c02', $2, 'City timelapse', 'Downtown at dusk', 'https://media.example.com/videos/timelapse.mp4', 'https://media.example.com/thumbs/timelapse.jpg', 95.0, 310)
		ON CONFLICT (id) DO NOTHING`,
		users[0].id, users[1].id)
	if err != nil {
		return fmt.Errorf("failed to seed videos: %w", err)
	}
	fmt.Println("  Seeded videos: 2")

	return nil
}
