// Package taxonomy maps event types to the catalog categories, subcategories
// and essential items that matter for them. The table is immutable.
package taxonomy

import (
	"sort"
	"strings"
)

// Profile describes what an event type needs from the catalog.
// Empty lists mean no constraint on that axis.
type Profile struct {
	Categories    []string `json:"categories"`
	Subcategories []string `json:"subcategories"`
	Essentials    []string `json:"essentials"`
}

// Empty reports whether the profile narrows nothing.
func (p Profile) Empty() bool {
	return len(p.Categories) == 0 && len(p.Subcategories) == 0 && len(p.Essentials) == 0
}

// IsEssential reports whether a product name contains one of the essential item substrings.
func (p Profile) IsEssential(productName string) bool {
	name := strings.ToLower(productName)
	for _, e := range p.Essentials {
		if e == "" {
			continue
		}
		if strings.Contains(name, strings.ToLower(e)) {
			return true
		}
	}
	return false
}

// OtherLabel is offered in the dialogue for events outside the table.
const OtherLabel = "Autre"

var profiles = map[string]Profile{
	"Mariage": {
		Categories:    []string{"Mobilier", "Décoration", "Éclairage", "Sonorisation"},
		Subcategories: []string{"Tables", "Chaises", "Arches", "Centres de table", "Guirlandes", "Projecteurs", "Enceintes", "Micros"},
		Essentials:    []string{"table", "chaise", "arche", "guirlande", "enceinte", "micro"},
	},
	"Anniversaire": {
		Categories:    []string{"Mobilier", "Décoration", "Éclairage", "Sonorisation", "Jeux"},
		Subcategories: []string{"Tables", "Chaises", "Ballons", "Guirlandes", "Jeux de lumière", "Enceintes", "Jeux en bois"},
		Essentials:    []string{"table", "enceinte", "ballon", "jeu de lumière"},
	},
	"Conférence": {
		Categories:    []string{"Mobilier", "Sonorisation", "Vidéo", "Éclairage"},
		Subcategories: []string{"Chaises", "Pupitres", "Micros", "Enceintes", "Écrans", "Vidéoprojecteurs", "Projecteurs"},
		Essentials:    []string{"micro", "pupitre", "écran", "vidéoprojecteur", "chaise"},
	},
	"Séminaire": {
		Categories:    []string{"Mobilier", "Sonorisation", "Vidéo"},
		Subcategories: []string{"Tables", "Chaises", "Micros", "Écrans", "Vidéoprojecteurs", "Paperboards"},
		Essentials:    []string{"vidéoprojecteur", "micro", "table", "paperboard"},
	},
	"Soirée d'entreprise": {
		Categories:    []string{"Mobilier", "Sonorisation", "Éclairage", "Décoration"},
		Subcategories: []string{"Mange-debout", "Bars", "Enceintes", "Platines DJ", "Jeux de lumière", "Photobooth"},
		Essentials:    []string{"mange-debout", "bar", "enceinte", "jeu de lumière"},
	},
	"Gala": {
		Categories:    []string{"Mobilier", "Décoration", "Éclairage", "Sonorisation", "Scène"},
		Subcategories: []string{"Tables", "Chaises", "Nappes", "Projecteurs", "Enceintes", "Podiums", "Tapis rouges"},
		Essentials:    []string{"podium", "projecteur", "nappe", "tapis rouge"},
	},
	"Baptême": {
		Categories:    []string{"Mobilier", "Décoration"},
		Subcategories: []string{"Tables", "Chaises", "Centres de table", "Ballons"},
		Essentials:    []string{"table", "chaise", "centre de table"},
	},
}

// Lookup returns the profile for an event-type label. Unknown labels, including
// OtherLabel, return an empty profile and false.
func Lookup(label string) (Profile, bool) {
	label = strings.TrimSpace(label)
	if p, ok := profiles[label]; ok {
		return p.clone(), true
	}
	for k, p := range profiles {
		if strings.EqualFold(k, label) {
			return p.clone(), true
		}
	}
	return Profile{}, false
}

// Labels lists the known event types in a stable order.
func Labels() []string {
	out := make([]string, 0, len(profiles))
	for k := range profiles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p Profile) clone() Profile {
	return Profile{
		Categories:    append([]string(nil), p.Categories...),
		Subcategories: append([]string(nil), p.Subcategories...),
		Essentials:    append([]string(nil), p.Essentials...),
	}
}
