// Package access implements the role- and flag-based visibility filter that
// is applied uniformly to every synchronized entity collection.
//
// Both predicates are pure functions of the record and the viewer and are
// re-evaluated on every snapshot; the result is never cached, since roles and
// hidden flags can change between updates.
package access

import "github.com/kedhead/daggerheart-campaign-sub001/internal/domain"

// IsVisible reports whether the viewer may see the record.
//
// Directors see everything. A hidden record is invisible to players unless a
// director set the ForceVisible override. Personal kinds are additionally
// visible to their author even while hidden.
func IsVisible(e *domain.Entity, viewerRole domain.Role, viewerID string) bool {
	if viewerRole == domain.RoleDirector {
		return true
	}
	info := domain.Kinds[e.Kind]
	if info.Personal && e.CreatorID == viewerID {
		return true
	}
	return !e.Hidden || e.ForceVisible
}

// IsMutable reports whether the viewer may modify or delete the record.
//
// Directors may mutate everything. Players may mutate only personal-kind
// records they authored; campaign reference records are director-only.
func IsMutable(e *domain.Entity, viewerRole domain.Role, viewerID string) bool {
	if viewerRole == domain.RoleDirector {
		return true
	}
	info := domain.Kinds[e.Kind]
	return info.Personal && e.CreatorID == viewerID
}

// Filter returns the subset of records visible to the viewer, preserving
// order.
func Filter(records []domain.Entity, viewerRole domain.Role, viewerID string) []domain.Entity {
	visible := make([]domain.Entity, 0, len(records))
	for _, record := range records {
		if IsVisible(&record, viewerRole, viewerID) {
			visible = append(visible, record)
		}
	}
	return visible
}
