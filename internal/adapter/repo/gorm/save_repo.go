package gormrepo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"outpost/internal/adapter/repo/gorm/model"
	"outpost/internal/app/ports"
)

type SaveRepo struct {
	db *gorm.DB
}

func NewSaveRepo(db *gorm.DB) SaveRepo {
	return SaveRepo{db: db}
}

func (r SaveRepo) Load(ctx context.Context, slot string) ([]byte, error) {
	var m model.SaveSlot
	if err := dbFrom(ctx, r.db).Where("slot = ?", slot).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return m.Blob, nil
}

func (r SaveRepo) Save(ctx context.Context, slot string, blob []byte, savedAt time.Time) error {
	m := model.SaveSlot{
		Slot:      slot,
		Blob:      blob,
		SavedAt:   savedAt.UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	return dbFrom(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot"}},
		DoUpdates: clause.AssignmentColumns([]string{"blob", "saved_at", "updated_at"}),
	}).Create(&m).Error
}
