package main

import (
	"flag"
	"log"

	"go-inventory-bom/internal/config"
	"go-inventory-bom/internal/repository"
	"go-inventory-bom/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "admin@example.com", "user whose password is reset")
	newPassword := flag.String("password", "admin123", "new password (min 6 characters)")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, relying on system env")
	}
	if len(*newPassword) < 6 {
		log.Fatal("❌ Password must be at least 6 characters")
	}

	db := database.ConnectDB(config.Load().DatabaseOptions())
	userRepo := repository.NewUserRepo(db)

	user, err := userRepo.FindByEmail(*email)
	if err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *email, err)
	}
	if err := user.SetPassword(*newPassword); err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}
	if err := userRepo.UpdatePassword(user.ID, user.Password); err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Password for %s has been reset", *email)
}
