package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// GormSessionRepository is the SessionRepository implementation.
type GormSessionRepository struct {
	db *gorm.DB
}

func NewGormSessionRepository(db *gorm.DB) *GormSessionRepository {
	if db == nil {
		panic("database connection cannot be nil for GormSessionRepository")
	}
	return &GormSessionRepository{db: db}
}

func (r *GormSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	var session domain.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}
		return nil, fmt.Errorf("gorm: find session %s: %w", id, err)
	}
	return &session, nil
}

func (r *GormSessionRepository) ListByCampaign(ctx context.Context, campaignID string) ([]domain.Session, error) {
	var sessions []domain.Session
	err := r.db.WithContext(ctx).
		Where("campaign_id = ?", campaignID).
		Order("started_at desc").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list sessions of campaign %s: %w", campaignID, err)
	}
	return sessions, nil
}

func (r *GormSessionRepository) Save(ctx context.Context, session *domain.Session) error {
	if err := r.db.WithContext(ctx).Save(session).Error; err != nil {
		return fmt.Errorf("gorm: save session %s: %w", session.ID, err)
	}
	return nil
}
