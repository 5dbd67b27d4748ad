// Command seed fills the database with demo users, products and likes.
package main

import (
	"context"
	"flag"
	"log"

	"fashionai/internal/config"
	"fashionai/internal/database"
	"fashionai/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numProducts := flag.Int("products", 100, "Number of products to create")
	maxLikes := flag.Int("likes", 10, "Maximum likes per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	log.Printf("Target: %d users, %d products, up to %d likes each, clean=%v", *numUsers, *numProducts, *maxLikes, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sum, err := seed.NewSeeder(db, *randSeed).Run(ctx, seed.Options{
		NumUsers:       *numUsers,
		NumProducts:    *numProducts,
		MaxLikesPerUsr: *maxLikes,
		Clean:          *shouldClean,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d products, %d likes", sum.Users, sum.Products, sum.Favorites)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
