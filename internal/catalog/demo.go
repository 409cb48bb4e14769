package catalog

import "github.com/moonback/Esil-events-v1-sub001/internal/models"

// DemoProducts is a small seed catalog used when no database is configured.
func DemoProducts() []models.CatalogProduct {
	return []models.CatalogProduct{
		{ID: "mob-table-ronde", Name: "Table ronde 10 personnes", Category: "Mobilier", Subcategory: "Tables", Description: "Table ronde pliante, diamètre 180 cm", Price: 1200, Stock: 40, MinCapacity: 10, MaxCapacity: 400, Available: true, Colors: []string{"Blanc"}},
		{ID: "mob-chaise-napoleon", Name: "Lot de 100 chaises Napoléon III", Category: "Mobilier", Subcategory: "Chaises", Description: "Chaises transparentes empilables", Price: 1500, Stock: 6, MinCapacity: 20, MaxCapacity: 600, Available: true, Colors: []string{"Transparent", "Doré"}},
		{ID: "deco-arche-florale", Name: "Arche florale blanche", Category: "Décoration", Subcategory: "Arches", Description: "Arche de cérémonie avec composition florale", Price: 950, Stock: 3, MinCapacity: 0, Available: true},
		{ID: "deco-centres-table", Name: "Centres de table bougies (x12)", Category: "Décoration", Subcategory: "Centres de table", Description: "Photophores et bougies LED", Price: 480, Stock: 10, MinCapacity: 0, Available: true},
		{ID: "ecl-guirlande", Name: "Guirlande guinguette 50 m", Category: "Éclairage", Subcategory: "Guirlandes", Description: "Guirlande à ampoules blanc chaud", Price: 900, Stock: 8, MinCapacity: 0, Available: true},
		{ID: "ecl-projecteurs-led", Name: "Pack 8 projecteurs LED", Category: "Éclairage", Subcategory: "Projecteurs", Description: "Projecteurs RGBW sur batterie", Price: 1100, Stock: 5, MinCapacity: 30, MaxCapacity: 500, Available: true, TechnicalSpecs: map[string]any{"autonomie": "12 h", "puissance_w": 180}},
		{ID: "son-enceintes", Name: "Pack enceintes 2x1000 W", Category: "Sonorisation", Subcategory: "Enceintes", Description: "Deux enceintes actives avec table de mixage", Price: 1300, Stock: 4, MinCapacity: 30, MaxCapacity: 300, Available: true},
		{ID: "son-micro-hf", Name: "Micro HF main", Category: "Sonorisation", Subcategory: "Micros", Description: "Micro sans fil UHF", Price: 60, Stock: 20, MinCapacity: 0, Available: true},
		{ID: "vid-ecran-led", Name: "Écran LED 3x2 m", Category: "Vidéo", Subcategory: "Écrans", Description: "Mur LED intérieur", Price: 2500, Stock: 1, MinCapacity: 50, MaxCapacity: 1000, Available: true},
		{ID: "scene-podium", Name: "Podium 6x4 m", Category: "Scène", Subcategory: "Podiums", Description: "Scène modulable hauteur 60 cm", Price: 1800, Stock: 2, MinCapacity: 50, MaxCapacity: 2000, Available: true},
		{ID: "jeux-molkky", Name: "Jeux en bois (lot de 6)", Category: "Jeux", Subcategory: "Jeux en bois", Description: "Mölkky, palets, puissance 4 géant", Price: 150, Stock: 3, MinCapacity: 0, Available: true},
		{ID: "mob-bar-lumineux", Name: "Bar lumineux LED", Category: "Mobilier", Subcategory: "Bars", Description: "Comptoir lumineux 2 m", Price: 450, Stock: 0, MinCapacity: 0, Available: false},
	}
}
