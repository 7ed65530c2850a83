package database

import (
	"fmt"

	"github.com/sangkips/billing-api/internal/domain/entity"
	"github.com/sangkips/billing-api/internal/logger"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type seedService struct {
	name     string
	category string
	price    int64
	duration int
}

var defaultServices = []seedService{
	{"Diagnostic informatique", "Maintenance", 50, 30},
	{"Maintenance PC / Mac", "Maintenance", 80, 60},
	{"Nettoyage logiciel", "Maintenance", 60, 45},
	{"Suppression de virus / malware", "Maintenance", 90, 90},
	{"Optimisation système", "Maintenance", 70, 60},
	{"Dépannage matériel", "Maintenance", 60, 60},
	{"Dépannage logiciel", "Maintenance", 60, 60},
	{"Assistance à distance", "Maintenance", 40, 30},
	{"Installation système (Windows / Linux)", "Installation", 100, 120},
	{"Installation logiciels", "Installation", 40, 30},
	{"Configuration poste de travail", "Installation", 80, 60},
	{"Mise en réseau", "Installation", 120, 120},
	{"Configuration imprimante", "Installation", 50, 30},
	{"Sauvegarde & restauration", "Installation", 90, 90},
	{"Sécurisation du système", "Sécurité", 100, 90},
	{"Mise en place antivirus", "Sécurité", 50, 30},
	{"Sauvegarde des données", "Sécurité", 80, 60},
	{"Conseils sécurité", "Sécurité", 60, 60},
	{"Configuration box / routeur", "Réseau", 60, 45},
	{"Dépannage connexion", "Réseau", 70, 60},
	{"Wi-Fi / Ethernet", "Réseau", 80, 60},
	{"Création site web", "Développement", 1000, 0},
	{"Maintenance site web", "Développement", 100, 60},
	{"Scripts & automatisation", "Développement", 150, 0},
	{"Assistance technique personnalisée", "Développement", 80, 60},
}

// SeedServices inserts the default catalog entries that are missing, matched by name
func SeedServices(db *gorm.DB) (int, error) {
	log := logger.WithComponent("database")

	created := 0
	for _, s := range defaultServices {
		var count int64
		if err := db.Model(&entity.Service{}).Where("name = ?", s.name).Count(&count).Error; err != nil {
			return created, fmt.Errorf("failed to look up service %q: %w", s.name, err)
		}
		if count > 0 {
			continue
		}

		service := &entity.Service{
			Name:     s.name,
			Category: s.category,
			Price:    decimal.NewFromInt(s.price),
			Duration: s.duration,
		}
		if err := db.Create(service).Error; err != nil {
			return created, fmt.Errorf("failed to create service %q: %w", s.name, err)
		}
		created++
	}

	log.Info().Int("created", created).Msg("service catalog seeded")
	return created, nil
}
