package catalog

import "time"

// Product categories
const (
	CategorySeeds  = "seeds"
	CategoryPlants = "plants"
)

// seedSentinelID marks the catalog as seeded. It lives in the products
// table but is never returned by List.
const seedSentinelID = "catalog#seeded"

// Product is the item stored in the products DynamoDB table.
type Product struct {
	ProductID   string    `dynamodbav:"product_id" json:"id"` // PK
	Name        string    `dynamodbav:"name" json:"name"`
	Description string    `dynamodbav:"description" json:"description"`
	Category    string    `dynamodbav:"category" json:"category"` // seeds | plants
	ImageURL    string    `dynamodbav:"image_url" json:"imageUrl"`
	Price       float64   `dynamodbav:"price" json:"price"`
	Stock       int       `dynamodbav:"stock" json:"stock"`
	CreatedAt   time.Time `dynamodbav:"created_at" json:"createdAt"`
}

// StarterCatalog is written once, on first activation against an empty table.
var StarterCatalog = []Product{
	{Name: "Sunflower Seeds", Description: "Giant sunflower seeds, easy to grow.", Price: 150.00, Category: CategorySeeds, ImageURL: "https://placehold.co/300x300/f4e285/333333?text=Sunflower+Seeds", Stock: 100},
	{Name: "Tomato Plant", Description: "Young cherry tomato plant, ready to pot.", Price: 275.00, Category: CategoryPlants, ImageURL: "https://placehold.co/300x300/e6a2a2/333333?text=Tomato+Plant", Stock: 50},
	{Name: "Basil Seeds", Description: "Sweet basil seeds for your herb garden.", Price: 100.00, Category: CategorySeeds, ImageURL: "https://placehold.co/300x300/a2e6a2/333333?text=Basil+Seeds", Stock: 75},
	{Name: "Succulent Plant", Description: "Assorted small succulent, low maintenance.", Price: 350.00, Category: CategoryPlants, ImageURL: "https://placehold.co/300x300/b2d8d8/333333?text=Succulent", Stock: 30},
	{Name: "Lavender Plant", Description: "Fragrant lavender plant, attracts pollinators.", Price: 325.00, Category: CategoryPlants, ImageURL: "https://placehold.co/300x300/c9a2e6/333333?text=Lavender+Plant", Stock: 40},
}
