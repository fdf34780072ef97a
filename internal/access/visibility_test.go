package access_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/access"
	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

func TestIsVisible(t *testing.T) {
	cases := []struct {
		name   string
		entity domain.Entity
		role   domain.Role
		viewer string
		want   bool
	}{
		{"director sees hidden", domain.Entity{Kind: domain.KindNPC, Hidden: true}, domain.RoleDirector, "gm", true},
		{"player sees visible", domain.Entity{Kind: domain.KindNPC}, domain.RolePlayer, "p1", true},
		{"player blocked from hidden", domain.Entity{Kind: domain.KindNPC, Hidden: true}, domain.RolePlayer, "p1", false},
		{"force visible overrides hidden", domain.Entity{Kind: domain.KindNPC, Hidden: true, ForceVisible: true}, domain.RolePlayer, "p1", true},
		{"author sees own hidden note", domain.Entity{Kind: domain.KindNote, Hidden: true, CreatorID: "p1"}, domain.RolePlayer, "p1", true},
		{"other player blocked from hidden note", domain.Entity{Kind: domain.KindNote, Hidden: true, CreatorID: "p1"}, domain.RolePlayer, "p2", false},
		{"hidden lore stays hidden even with author match", domain.Entity{Kind: domain.KindLore, Hidden: true, CreatorID: "p1"}, domain.RolePlayer, "p1", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.IsVisible(&tc.entity, tc.role, tc.viewer))
		})
	}
}

func TestIsMutable(t *testing.T) {
	cases := []struct {
		name   string
		entity domain.Entity
		role   domain.Role
		viewer string
		want   bool
	}{
		{"director mutates anything", domain.Entity{Kind: domain.KindLore}, domain.RoleDirector, "gm", true},
		{"player blocked from reference records", domain.Entity{Kind: domain.KindLocation, CreatorID: "p1"}, domain.RolePlayer, "p1", false},
		{"author mutates own character", domain.Entity{Kind: domain.KindCharacter, CreatorID: "p1"}, domain.RolePlayer, "p1", true},
		{"player blocked from another's character", domain.Entity{Kind: domain.KindCharacter, CreatorID: "p1"}, domain.RolePlayer, "p2", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, access.IsMutable(&tc.entity, tc.role, tc.viewer))
		})
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	records := []domain.Entity{
		{ID: "e1", Kind: domain.KindNPC},
		{ID: "e2", Kind: domain.KindNPC, Hidden: true},
		{ID: "e3", Kind: domain.KindNPC},
	}

	visible := access.Filter(records, domain.RolePlayer, "p1")
	assert.Equal(t, []string{"e1", "e3"}, []string{visible[0].ID, visible[1].ID})

	all := access.Filter(records, domain.RoleDirector, "gm")
	assert.Len(t, all, 3)
}
