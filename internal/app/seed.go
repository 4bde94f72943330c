package app

import (
	"context"
	"log"

	"flavorfix/internal/models"
	"flavorfix/internal/repositories"
)

func starterCatalog() []models.Product {
	return []models.Product{
		{Name: "Maharaja Special Thali", Description: "Paneer butter masala, dal makhani, jeera rice, 3 rotis, raita and gulab jamun", Price: 349, Category: "Special Thali", Type: "special", Image: "/images/special-thali.jpg", Pieces: "8 items", Time: "30 min", Stock: 20, IsBestseller: true, Rating: 4.8},
		{Name: "Royal Deluxe Thali", Description: "Two sabzis, dal tadka, pulao, 4 rotis, salad and sweet", Price: 299, Category: "Deluxe Thali", Type: "deluxe", Image: "/images/deluxe-thali.jpg", Pieces: "7 items", Time: "30 min", Stock: 20, IsHot: true, Rating: 4.6},
		{Name: "Classic Veg Thali", Description: "Seasonal sabzi, dal, rice, 3 rotis and pickle", Price: 199, Category: "Classic Thali", Type: "classic", Image: "/images/classic-thali.jpg", Pieces: "5 items", Time: "25 min", Stock: 30, Rating: 4.4},
		{Name: "Home Style Comfort Thali", Description: "Khichdi, kadhi, papad and ghee", Price: 179, Category: "Comfort Thali", Type: "comfort", Image: "/images/comfort-thali.jpg", Pieces: "4 items", Time: "20 min", Stock: 25, Rating: 4.5},
		{Name: "Everyday Standard Thali", Description: "Sabzi, dal, rice and 2 rotis", Price: 149, Category: "Standard Thali", Type: "standard", Image: "/images/standard-thali.jpg", Pieces: "4 items", Time: "20 min", Stock: 40, Rating: 4.2},
		{Name: "Jain Thali", Description: "No onion, no garlic: paneer sabzi, dal, rice, rotis and sweet", Price: 249, Category: "Jain Thali", Type: "jain", Image: "/images/jain-thali.jpg", Pieces: "6 items", Time: "30 min", Stock: 15, Rating: 4.7},
		{Name: "Rajma Chawal Combo", Description: "Slow cooked rajma with steamed basmati rice", Price: 159, Category: "Rice Combo", Type: "rice", Image: "/images/rajma-chawal.jpg", Time: "15 min", Stock: 30, IsBestseller: true, Rating: 4.6},
		{Name: "Millet Power Bowl", Description: "Foxtail millet, sprouts salad, curd and a seasonal sabzi", Price: 219, Category: "Healthy", Type: "healthy", Image: "/images/millet-bowl.jpg", Time: "20 min", Stock: 20, Discount: 10, Rating: 4.3},
		{Name: "Poha and Chai", Description: "Indori poha with sev and a cup of masala chai", Price: 89, Category: "Breakfast", Type: "breakfast", Image: "/images/poha.jpg", Time: "10 min", Stock: 50, IsHot: true, Rating: 4.5},
	}
}

// SeedProducts inserts the starter catalog into an empty product store.
func SeedProducts(ctx context.Context, repo repositories.ProductRepository) error {
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	products := starterCatalog()
	for i := range products {
		if err := repo.Create(ctx, &products[i]); err != nil {
			log.Printf("Error seeding product %s: %v", products[i].Name, err)
			continue
		}
		log.Printf("Seeded product: %s (ID: %s)", products[i].Name, products[i].ID)
	}
	return nil
}
