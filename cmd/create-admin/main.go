// Command create-admin sets (or replaces) an administrator credential in the
// directory's admin store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"business-directory/internal/auth"
	"business-directory/internal/config"
	"business-directory/internal/store"
)

func main() {
	username := flag.String("username", auth.DefaultUsername, "admin username")
	password := flag.String("password", "", "admin password (required)")
	flag.Parse()

	if *password == "" {
		log.Fatal("A password is required: -password <value>")
	}
	if err := auth.ValidatePassword(*password); err != nil {
		log.Fatalf("Invalid password: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	if err := st.UpsertAdmin(ctx, *username, hash); err != nil {
		log.Fatalf("Failed to save admin: %v", err)
	}

	fmt.Printf("Admin credential set for %q\n", *username)
}
