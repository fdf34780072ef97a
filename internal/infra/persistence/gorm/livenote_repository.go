package gormpersistence

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// GormLiveNoteRepository is the LiveNoteRepository implementation.
type GormLiveNoteRepository struct {
	db *gorm.DB
}

func NewGormLiveNoteRepository(db *gorm.DB) *GormLiveNoteRepository {
	if db == nil {
		panic("database connection cannot be nil for GormLiveNoteRepository")
	}
	return &GormLiveNoteRepository{db: db}
}

func (r *GormLiveNoteRepository) ListBySession(ctx context.Context, sessionID string) ([]domain.LiveNote, error) {
	var notes []domain.LiveNote
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&notes).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list live notes of session %s: %w", sessionID, err)
	}
	return notes, nil
}

func (r *GormLiveNoteRepository) FindByID(ctx context.Context, id string) (*domain.LiveNote, error) {
	var note domain.LiveNote
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNoteNotFound
		}
		return nil, fmt.Errorf("gorm: find live note %s: %w", id, err)
	}
	return &note, nil
}

func (r *GormLiveNoteRepository) Save(ctx context.Context, note *domain.LiveNote) error {
	if err := r.db.WithContext(ctx).Save(note).Error; err != nil {
		return fmt.Errorf("gorm: save live note %s: %w", note.ID, err)
	}
	return nil
}

func (r *GormLiveNoteRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.LiveNote{}).Error; err != nil {
		return fmt.Errorf("gorm: delete live note %s: %w", id, err)
	}
	return nil
}

func (r *GormLiveNoteRepository) ClearSession(ctx context.Context, sessionID string) error {
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&domain.LiveNote{}).Error; err != nil {
		return fmt.Errorf("gorm: clear live notes of session %s: %w", sessionID, err)
	}
	return nil
}
