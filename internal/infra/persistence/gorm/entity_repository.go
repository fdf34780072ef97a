package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// GormEntityRepository is the EntityRepository implementation. One table
// backs every entity kind; the kind column partitions the collections.
type GormEntityRepository struct {
	db *gorm.DB
}

func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	if db == nil {
		panic("database connection cannot be nil for GormEntityRepository")
	}
	return &GormEntityRepository{db: db}
}

func (r *GormEntityRepository) ListByKind(ctx context.Context, campaignID string, kind domain.EntityKind) ([]domain.Entity, error) {
	var entities []domain.Entity
	err := r.db.WithContext(ctx).
		Where("campaign_id = ? AND kind = ?", campaignID, kind).
		Order("created_at asc").
		Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list %s entities of campaign %s: %w", kind, campaignID, err)
	}
	return entities, nil
}

func (r *GormEntityRepository) FindByID(ctx context.Context, id string) (*domain.Entity, error) {
	var entity domain.Entity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrEntityNotFound
		}
		return nil, fmt.Errorf("gorm: find entity %s: %w", id, err)
	}
	return &entity, nil
}

func (r *GormEntityRepository) Save(ctx context.Context, entity *domain.Entity) error {
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save %s entity %s: %w", entity.Kind, entity.ID, err)
	}
	return nil
}

func (r *GormEntityRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Entity{}).Error; err != nil {
		return fmt.Errorf("gorm: delete entity %s: %w", id, err)
	}
	return nil
}
