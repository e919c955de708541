// Package main provides a tool to seed the database with sample catalog data.
//
// This creates a handful of users, books, and reviews so the listing, search,
// and analytics endpoints have something to show during local development.
//
// Usage:
//
//	go run ./cmd/seed --data-path ~/inkwell
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

var dataPath = flag.String("data-path", "", "Base path for data storage (default: $HOME/inkwell)")

type seedBook struct {
	title    string
	author   string
	price    float64
	category string
	isbn     string
	tags     []string
}

var seedBooks = []seedBook{
	{"The Left Hand of Darkness", "Ursula K. Le Guin", 13.99, "science-fiction", "9780441478125", []string{"science-fiction", "classic"}},
	{"The Name of the Wind", "Patrick Rothfuss", 16.50, "fantasy", "9780756404741", []string{"fantasy", "epic"}},
	{"Project Hail Mary", "Andy Weir", 18.00, "science-fiction", "9780593135204", []string{"science-fiction", "space"}},
	{"Piranesi", "Susanna Clarke", 14.25, "fantasy", "9781635575637", []string{"fantasy", "mystery"}},
	{"Educated", "Tara Westover", 15.99, "memoir", "9780399590504", []string{"memoir"}},
	{"The Pragmatic Programmer", "David Thomas", 44.95, "technology", "9780135957059", []string{"technology", "programming"}},
	{"Thinking, Fast and Slow", "Daniel Kahneman", 17.00, "psychology", "9780374533557", []string{"psychology"}},
	{"A Gentleman in Moscow", "Amor Towles", 16.00, "fiction", "9780143110439", []string{"fiction", "historical"}},
}

var seedUsers = []struct {
	name  string
	email string
}{
	{"Margaret Chen", "margaret@example.com"},
	{"Tomas Rivera", "tomas@example.com"},
	{"Priya Nair", "priya@example.com"},
	{"Sam Okafor", "sam@example.com"},
}

func main() {
	flag.Parse()

	base := *dataPath
	if base == "" {
		base = os.ExpandEnv("$HOME/inkwell")
	}

	fmt.Printf("Seeding data at: %s\n", base)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	st, err := store.New(filepath.Join(base, "db"), logger)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	idx, err := search.NewIndex(search.Options{DataPath: base, Logger: logger})
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer idx.Close()

	key, err := auth.LoadOrGenerateKey(base)
	if err != nil {
		log.Fatalf("Failed to load auth key: %v", err)
	}

	tokenService, err := auth.NewTokenService(fmt.Sprintf("%x", key), 15*time.Minute)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	recorder := service.NewActivityRecorder(st, logger)
	validator := validation.New()

	authSvc := service.NewAuthService(st, tokenService, recorder, validator, logger)
	catalog := service.NewCatalogService(st, idx, recorder, validator, logger)
	reviews := service.NewReviewService(st, recorder, validator, logger)

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Users. Registration failures are tolerated so reruns don't abort on
	// duplicate emails.
	users := make([]*service.AuthResponse, 0, len(seedUsers))
	for _, u := range seedUsers {
		resp, err := authSvc.Register(ctx, service.RegisterRequest{
			Name:     u.name,
			Email:    u.email,
			Password: "reading-is-fundamental",
		})
		if err != nil {
			fmt.Printf("  skipping user %s: %v\n", u.email, err)
			continue
		}
		users = append(users, resp)
		fmt.Printf("  created user %s\n", u.email)
	}

	if len(users) == 0 {
		recorder.Close()
		log.Fatal("No users created; database probably already seeded.")
	}

	// Books, spread across the seeded users.
	created := 0
	for i, b := range seedBooks {
		owner := users[i%len(users)].User
		book, err := catalog.CreateBook(ctx, owner, service.CreateBookRequest{
			Title:    b.title,
			Author:   b.author,
			Price:    b.price,
			Category: b.category,
			ISBN:     b.isbn,
			Tags:     b.tags,
		})
		if err != nil {
			fmt.Printf("  skipping book %q: %v\n", b.title, err)
			continue
		}
		created++

		// A few reviews from users other than the owner.
		for _, u := range users {
			if u.User.ID == owner.ID || rng.Float32() > 0.6 {
				continue
			}
			_, err := reviews.CreateReview(ctx, u.User, book.ID, service.CreateReviewRequest{
				Rating:  3 + rng.Intn(3),
				Comment: "Seeded review.",
			})
			if err != nil {
				fmt.Printf("  skipping review on %q: %v\n", b.title, err)
			}
		}
	}

	// Flush buffered activity events before closing.
	recorder.Close()

	fmt.Printf("Done: %d users, %d books\n", len(users), created)
}
