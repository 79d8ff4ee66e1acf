package main

import (
	"context"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"itongue/internal/config"
	"itongue/internal/db"
	"itongue/internal/model"
	"itongue/internal/repository"
	"itongue/internal/service"
)

var languages = []model.Language{
	{Code: "en", Name: "English"},
	{Code: "fr", Name: "French"},
	{Code: "es", Name: "Spanish"},
	{Code: "de", Name: "German"},
	{Code: "it", Name: "Italian"},
	{Code: "pt", Name: "Portuguese"},
	{Code: "ja", Name: "Japanese"},
	{Code: "zh", Name: "Mandarin"},
	{Code: "ar", Name: "Arabic"},
	{Code: "ru", Name: "Russian"},
}

// Seeds the language catalog and, when ADMIN_EMAIL/ADMIN_PASSWORD are set, an
// administrator account.
func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := gormDB.AutoMigrate(&model.User{}, &model.Language{}, &model.UserLanguage{}); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	ctx := context.Background()

	seeded := 0
	for _, lang := range languages {
		res := gormDB.WithContext(ctx).Where(model.Language{Code: lang.Code}).FirstOrCreate(&lang)
		if res.Error != nil {
			log.Fatalf("Failed to seed language %s: %v", lang.Code, res.Error)
		}
		seeded += int(res.RowsAffected)
	}
	log.Printf("Languages seeded: %d new, %d total", seeded, len(languages))

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL/ADMIN_PASSWORD not set, skipping admin account")
		return
	}

	userRepo := repository.NewUserRepository(gormDB)
	if _, err := userRepo.FindByEmail(ctx, adminEmail); err == nil {
		log.Println("Admin account already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		log.Fatalf("Failed to look up admin account: %v", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	resolver := service.NewSlugResolver(userRepo)
	slug, err := resolver.Resolve(ctx, "iTongue", "Admin")
	if err != nil {
		log.Fatalf("Failed to resolve admin slug: %v", err)
	}

	admin := &model.User{
		Email:        adminEmail,
		PasswordHash: string(hashed),
		Firstname:    "iTongue",
		Lastname:     "Admin",
		Slug:         slug,
		IsAdmin:      true,
	}
	if err := userRepo.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}
	log.Printf("Admin account created (id=%d, slug=%s)", admin.ID, admin.Slug)
}
