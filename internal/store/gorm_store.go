package store

import (
	"context"
	"errors"
	"time"

	"interview_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db, now: time.Now}
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (*Record, error) {
	var row model.KVRecord
	err := s.DB.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Record{ID: row.ID, Data: row.Data, Timestamp: row.Timestamp}, nil
}

func (s *GormStore) Set(ctx context.Context, collection, id string, data []byte) error {
	row := model.KVRecord{
		Collection: collection,
		ID:         id,
		Data:       data,
		Timestamp:  s.now().UnixMilli(),
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "timestamp"}),
	}).Create(&row).Error
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	return s.DB.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&model.KVRecord{}).Error
}

func (s *GormStore) GetAll(ctx context.Context, collection string) ([]Record, error) {
	var rows []model.KVRecord
	err := s.DB.WithContext(ctx).
		Where("collection = ?", collection).
		Order("timestamp asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Record{ID: r.ID, Data: r.Data, Timestamp: r.Timestamp})
	}
	return out, nil
}

func (s *GormStore) Clear(ctx context.Context, collection string) error {
	return s.DB.WithContext(ctx).
		Where("collection = ?", collection).
		Delete(&model.KVRecord{}).Error
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
