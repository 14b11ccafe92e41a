package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sangkips/invoicely/internal/domain/entity"
	"github.com/sangkips/invoicely/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormKVStore struct {
	db *gorm.DB
}

// NewGormKVStore creates a key-value store over the kv_entries table
func NewGormKVStore(db *gorm.DB) repository.KeyValueStore {
	return &gormKVStore{db: db}
}

func (r *gormKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row entity.KVEntry
	err := r.db.WithContext(ctx).Where(&entity.KVEntry{Key: key}).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return []byte(row.Value), true, nil
}

func (r *gormKVStore) Set(ctx context.Context, key string, value []byte) error {
	return r.SetMany(ctx, map[string][]byte{key: value})
}

func (r *gormKVStore) SetMany(ctx context.Context, entries map[string][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	rows := make([]entity.KVEntry, 0, len(entries))
	for k, v := range entries {
		rows = append(rows, entity.KVEntry{Key: k, Value: string(v)})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("write %d entries: %w", len(rows), err)
	}
	return nil
}
