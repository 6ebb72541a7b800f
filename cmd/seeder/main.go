package main

import (
	"log"

	"github.com/google/uuid"
	"github.com/phamduchuy/savora/internal/config"
	"github.com/phamduchuy/savora/internal/model"
	"github.com/phamduchuy/savora/pkg/auth"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var starterRecipes = []model.Recipe{
	{Name: "Pasta Carbonara", Category: "Italian", PrepMinutes: 25, Calories: 650, Image: "https://images.savora.local/recipes/pasta-carbonara.jpg"},
	{Name: "Chicken Pho", Category: "Vietnamese", PrepMinutes: 45, Calories: 480, Image: "https://images.savora.local/recipes/chicken-pho.jpg"},
	{Name: "Avocado Toast", Category: "Breakfast", PrepMinutes: 10, Calories: 320, Image: "https://images.savora.local/recipes/avocado-toast.jpg"},
	{Name: "Beef Tacos", Category: "Mexican", PrepMinutes: 30, Calories: 540, Image: "https://images.savora.local/recipes/beef-tacos.jpg"},
	{Name: "Greek Salad", Category: "Salad", PrepMinutes: 15, Calories: 280, Image: "https://images.savora.local/recipes/greek-salad.jpg"},
	{Name: "Banh Mi", Category: "Vietnamese", PrepMinutes: 20, Calories: 460, Image: "https://images.savora.local/recipes/banh-mi.jpg"},
	{Name: "Mushroom Risotto", Category: "Italian", PrepMinutes: 40, Calories: 580, Image: "https://images.savora.local/recipes/mushroom-risotto.jpg"},
	{Name: "Chocolate Lava Cake", Category: "Dessert", PrepMinutes: 35, Calories: 720, Image: "https://images.savora.local/recipes/lava-cake.jpg"},
	{Name: "Salmon Teriyaki", Category: "Japanese", PrepMinutes: 25, Calories: 510, Image: "https://images.savora.local/recipes/salmon-teriyaki.jpg"},
	{Name: "Lentil Soup", Category: "Soup", PrepMinutes: 50, Calories: 350, Image: "https://images.savora.local/recipes/lentil-soup.jpg"},
}

func main() {
	cfg := config.Load()

	// Force DB logging off to avoid noise
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	log.Println("✅ Connected to Database")

	log.Printf("🌱 Seeding %d recipes...", len(starterRecipes))
	for _, recipe := range starterRecipes {
		var existing model.Recipe
		if err := db.Where("name = ?", recipe.Name).First(&existing).Error; err == nil {
			continue
		}

		if err := db.Create(&recipe).Error; err != nil {
			log.Printf("❌ Failed to create recipe %q: %v", recipe.Name, err)
		} else {
			log.Printf("✅ Created recipe: %s (%s)", recipe.Name, recipe.Category)
		}
	}

	// Print a development bearer token so the seeded catalog is easy to poke
	// at with curl. Real tokens come from the identity service.
	if cfg.App.Env != "production" {
		jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Expiry)
		devUserID := uuid.New()
		token, err := jwtManager.GenerateToken(devUserID, "dev@savora.local")
		if err == nil {
			log.Printf("🔑 Dev user: %s", devUserID)
			log.Printf("🔑 Dev token: %s", token)
		}
	}

	log.Println("🎉 Seeding completed!")
}
