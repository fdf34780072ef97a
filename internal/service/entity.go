package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/access"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/repository"
)

// EntityService is the one generic CRUD path behind every entity kind. The
// kind registry supplies the per-kind metadata; nothing here is duplicated
// per collection.
type EntityService struct {
	entityRepo   repository.EntityRepository
	campaignRepo repository.CampaignRepository
	stateRepo    repository.StateRepository
}

func NewEntityService(
	entityRepo repository.EntityRepository,
	campaignRepo repository.CampaignRepository,
	stateRepo repository.StateRepository,
) *EntityService {
	if entityRepo == nil || campaignRepo == nil || stateRepo == nil {
		panic("all repositories must be non-nil for EntityService")
	}
	return &EntityService{
		entityRepo:   entityRepo,
		campaignRepo: campaignRepo,
		stateRepo:    stateRepo,
	}
}

// List returns the collection narrowed to what the viewer may see. The filter
// runs on every call; roles and hidden flags can change between snapshots, so
// the result is never cached.
func (s *EntityService) List(ctx context.Context, campaignID string, kind domain.EntityKind, viewerID string) ([]domain.Entity, error) {
	if !domain.KnownKind(kind) {
		return nil, fmt.Errorf("list entities: %w: unknown kind %q", ErrValidation, kind)
	}
	role, err := s.memberRole(ctx, campaignID, viewerID)
	if err != nil {
		return nil, err
	}

	entities, err := s.entityRepo.ListByKind(ctx, campaignID, kind)
	if err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID, "kind": kind,
		}).Error("Failed to list entities")
		return nil, ErrInternalServer
	}
	return access.Filter(entities, role, viewerID), nil
}

// Add creates a record. Players may only create personal-kind records.
func (s *EntityService) Add(ctx context.Context, campaignID string, kind domain.EntityKind, viewerID, name string, content map[string]interface{}, hidden bool) (*domain.Entity, error) {
	info, ok := domain.Kinds[kind]
	if !ok {
		return nil, fmt.Errorf("add entity: %w: unknown kind %q", ErrValidation, kind)
	}
	if name == "" {
		return nil, fmt.Errorf("add %s: %w: name is required", kind, ErrValidation)
	}
	role, err := s.memberRole(ctx, campaignID, viewerID)
	if err != nil {
		return nil, err
	}
	if role != domain.RoleDirector && !info.Personal {
		return nil, ErrNotAuthorized
	}
	if role != domain.RoleDirector {
		hidden = false // only directors hide records
	}

	entity := &domain.Entity{
		ID:         uuid.NewString(),
		CampaignID: campaignID,
		Kind:       kind,
		Name:       name,
		Hidden:     hidden,
		CreatorID:  viewerID,
	}
	if err := entity.SetContent(content); err != nil {
		return nil, fmt.Errorf("add %s: %w", kind, ErrValidation)
	}
	if err := s.entityRepo.Save(ctx, entity); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID, "kind": kind,
		}).Error("Failed to save new entity")
		return nil, ErrInternalServer
	}

	s.publish(ctx, campaignID, domain.EntityPath(kind))
	return entity, nil
}

// UpdateFields describes a partial entity update. Nil pointers leave the
// field untouched.
type UpdateFields struct {
	Name         *string
	Content      map[string]interface{}
	Hidden       *bool
	ForceVisible *bool
}

// Update applies a partial update after the mutability check. The hidden and
// override flags stay director-only regardless of ownership.
func (s *EntityService) Update(ctx context.Context, campaignID, entityID, viewerID string, fields UpdateFields) (*domain.Entity, error) {
	entity, role, err := s.loadForWrite(ctx, campaignID, entityID, viewerID)
	if err != nil {
		return nil, err
	}

	if fields.Name != nil {
		if *fields.Name == "" {
			return nil, fmt.Errorf("update %s: %w: name cannot be empty", entity.Kind, ErrValidation)
		}
		entity.Name = *fields.Name
	}
	if fields.Content != nil {
		if err := entity.SetContent(fields.Content); err != nil {
			return nil, fmt.Errorf("update %s: %w", entity.Kind, ErrValidation)
		}
	}
	if fields.Hidden != nil || fields.ForceVisible != nil {
		if role != domain.RoleDirector {
			return nil, ErrNotAuthorized
		}
		if fields.Hidden != nil {
			entity.Hidden = *fields.Hidden
		}
		if fields.ForceVisible != nil {
			entity.ForceVisible = *fields.ForceVisible
		}
	}

	if err := s.entityRepo.Save(ctx, entity); err != nil {
		logrus.WithError(err).WithField("entity_id", entityID).Error("Failed to update entity")
		return nil, ErrInternalServer
	}
	s.publish(ctx, campaignID, domain.EntityPath(entity.Kind))
	return entity, nil
}

// Delete removes a record after the mutability check.
func (s *EntityService) Delete(ctx context.Context, campaignID, entityID, viewerID string) error {
	entity, _, err := s.loadForWrite(ctx, campaignID, entityID, viewerID)
	if err != nil {
		return err
	}
	if err := s.entityRepo.Delete(ctx, entityID); err != nil {
		logrus.WithError(err).WithField("entity_id", entityID).Error("Failed to delete entity")
		return ErrInternalServer
	}
	s.publish(ctx, campaignID, domain.EntityPath(entity.Kind))
	return nil
}

// loadForWrite loads the entity and enforces ownership and mutability.
func (s *EntityService) loadForWrite(ctx context.Context, campaignID, entityID, viewerID string) (*domain.Entity, domain.Role, error) {
	role, err := s.memberRole(ctx, campaignID, viewerID)
	if err != nil {
		return nil, "", err
	}

	entity, err := s.entityRepo.FindByID(ctx, entityID)
	if err != nil {
		if errors.Is(err, repository.ErrEntityNotFound) {
			return nil, "", ErrEntityNotFound
		}
		logrus.WithError(err).WithField("entity_id", entityID).Error("Failed to load entity")
		return nil, "", ErrInternalServer
	}
	if entity.CampaignID != campaignID {
		return nil, "", ErrEntityNotFound
	}
	if !access.IsMutable(entity, role, viewerID) {
		return nil, "", ErrNotAuthorized
	}
	return entity, role, nil
}

func (s *EntityService) memberRole(ctx context.Context, campaignID, viewerID string) (domain.Role, error) {
	campaign, err := s.campaignRepo.FindByID(ctx, campaignID)
	if err != nil {
		if errors.Is(err, repository.ErrCampaignNotFound) {
			return "", ErrCampaignNotFound
		}
		logrus.WithError(err).WithField("campaign_id", campaignID).Error("Failed to load campaign for role check")
		return "", ErrInternalServer
	}
	role, ok := campaign.RoleOf(viewerID)
	if !ok {
		return "", ErrNotAuthorized
	}
	return role, nil
}

func (s *EntityService) publish(ctx context.Context, campaignID, path string) {
	event := domain.ChangeEvent{Path: path, At: time.Now().UTC()}
	if err := s.stateRepo.PublishChange(ctx, campaignID, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"campaign_id": campaignID, "path": path,
		}).Error("Failed to publish change event")
	}
}
