package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// GormCampaignRepository is the CampaignRepository implementation.
type GormCampaignRepository struct {
	db *gorm.DB
}

func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	if db == nil {
		panic("database connection cannot be nil for GormCampaignRepository")
	}
	return &GormCampaignRepository{db: db}
}

func (r *GormCampaignRepository) FindByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var campaign domain.Campaign
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCampaignNotFound
		}
		return nil, fmt.Errorf("gorm: find campaign %s: %w", id, err)
	}
	return &campaign, nil
}

func (r *GormCampaignRepository) ListPublic(ctx context.Context) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	err := r.db.WithContext(ctx).Where("public = ?", true).Order("created_at desc").Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list public campaigns: %w", err)
	}
	return campaigns, nil
}

// ListForParticipant matches against the JSON member map column. The map is
// keyed by participant ID, so the quoted ID appearing as a key is a reliable
// containment test.
func (r *GormCampaignRepository) ListForParticipant(ctx context.Context, participantID string) ([]domain.Campaign, error) {
	var campaigns []domain.Campaign
	pattern := "%" + `"` + participantID + `"` + "%"
	err := r.db.WithContext(ctx).Where("members LIKE ?", pattern).Order("created_at desc").Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("gorm: list campaigns for participant %s: %w", participantID, err)
	}
	return campaigns, nil
}

func (r *GormCampaignRepository) Save(ctx context.Context, campaign *domain.Campaign) error {
	if err := r.db.WithContext(ctx).Save(campaign).Error; err != nil {
		if isDuplicateEntry(err) {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: save campaign %s: %w", campaign.ID, err)
	}
	return nil
}

func (r *GormCampaignRepository) IncrementFear(ctx context.Context, id string, delta int) (int, error) {
	var fear int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Campaign{}).Where("id = ?", id).
			UpdateColumn("gm_fear", gorm.Expr("gm_fear + ?", delta))
		if result.Error != nil {
			return fmt.Errorf("gorm: increment fear for campaign %s: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return repository.ErrCampaignNotFound
		}
		var campaign domain.Campaign
		if err := tx.Select("gm_fear").Where("id = ?", id).First(&campaign).Error; err != nil {
			return fmt.Errorf("gorm: read fear for campaign %s: %w", id, err)
		}
		fear = campaign.GMFear
		return nil
	})
	if err != nil {
		return 0, err
	}
	return fear, nil
}

// ClaimInvites locks each matching campaign row for update, so two concurrent
// logins for the same email serialize on the row and the membership check
// cannot race.
func (r *GormCampaignRepository) ClaimInvites(ctx context.Context, email, participantID string) ([]string, error) {
	var claimed []string
	pattern := "%" + `"` + email + `"` + "%"

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var campaigns []domain.Campaign
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("pending_invites LIKE ?", pattern).Find(&campaigns).Error
		if err != nil {
			return fmt.Errorf("gorm: find campaigns with pending invite: %w", err)
		}

		for i := range campaigns {
			campaign := &campaigns[i]
			if !campaign.PendingInvites.Contains(email) {
				continue // LIKE false positive
			}
			campaign.PendingInvites = campaign.PendingInvites.Remove(email)
			if campaign.Members == nil {
				campaign.Members = domain.MemberMap{}
			}
			if _, exists := campaign.Members[participantID]; !exists {
				campaign.Members[participantID] = domain.Member{
					Role:     domain.RolePlayer,
					JoinedAt: time.Now().UTC(),
				}
			}
			if err := tx.Save(campaign).Error; err != nil {
				return fmt.Errorf("gorm: claim invite on campaign %s: %w", campaign.ID, err)
			}
			claimed = append(claimed, campaign.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Delete cascades to every sub-collection in one transaction. The campaign
// exclusively owns all of them.
func (r *GormCampaignRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			model interface{}
			what  string
		}{
			{&domain.Entity{}, "entities"},
			{&domain.Message{}, "messages"},
			{&domain.Conversation{}, "conversations"},
			{&domain.LiveNote{}, "live notes"},
			{&domain.Session{}, "sessions"},
		}
		for _, step := range steps {
			if err := tx.Where("campaign_id = ?", id).Delete(step.model).Error; err != nil {
				return fmt.Errorf("gorm: cascade delete %s of campaign %s: %w", step.what, id, err)
			}
		}
		if err := tx.Where("id = ?", id).Delete(&domain.Campaign{}).Error; err != nil {
			return fmt.Errorf("gorm: delete campaign %s: %w", id, err)
		}
		return nil
	})
}
