// Package persistence holds helpers shared by the storage backends.
package persistence

import (
	"context"
	"log/slog"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
)

// DefaultCatalog is the starter catalog written into an empty store.
func DefaultCatalog() []entity.Product {
	return []entity.Product{
		{
			ID:                "bio_tribesteron",
			Name:              "💊 Bio Tribesteron",
			Benefits:          "Tabiiy testosteron va energiya ko'chiruvchi",
			Contraindications: "18 yoshgacha yoki gormon-sezgir kasalliklarga ega bo'lgan odamlarga tavsiya qilinmaydi",
			Price:             "150,000 UZS",
		},
		{
			ID:                "vitiligo_neo",
			Name:              "💊 Vitiligo Neo Aktiv",
			Benefits:          "Teri pigmentatsiya muammolariga yordam beradi",
			Contraindications: "Homiladorlik yoki emiziklik davrida shifokor bilan maslahatlashing",
			Price:             "120,000 UZS",
		},
		{
			ID:                "siber_oil",
			Name:              "💊 Siber Firidan Oil",
			Benefits:          "Immunitet tizimini va umumiy sog'likni qo'llab-quvvatlaydi",
			Contraindications: "Ma'lum emas",
			Price:             "85,000 UZS",
		},
		{
			ID:                "tarpeda",
			Name:              "💊 TARPEDA (O'simlik aralashmasi)",
			Benefits:          "Ovqat hazm qilish va tana tozalash uchun",
			Contraindications: "Past qon bosimi bo'lgan odamlarga tavsiya qilinmaydi",
			Price:             "95,000 UZS",
		},
		{
			ID:                "chuvalchan",
			Name:              "💊 Chuvalchan Kapsulalar",
			Benefits:          "Bo'g'imlar va suyak sog'ligini qo'llab-quvvatlaydi",
			Contraindications: "Qonni suyultiruvchi dorilar qabul qilayotgan bo'lsangiz shifokor bilan maslahatlashing",
			Price:             "110,000 UZS",
		},
	}
}

// Seed writes DefaultCatalog into repo when it holds no products.
func Seed(ctx context.Context, repo repository.CatalogRepository, logger *slog.Logger) error {
	existing, err := repo.ListProducts(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}
	if len(existing) > 0 {
		return nil
	}

	for _, p := range DefaultCatalog() {
		if err := repo.PutProduct(ctx, &p); err != nil {
			return errors.Wrapf(err, "seed product %s", p.ID)
		}
	}
	logger.Info("Seeded empty catalog", slog.Int("products", len(DefaultCatalog())))

	return nil
}
