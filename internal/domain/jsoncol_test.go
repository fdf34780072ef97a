package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kedhead/daggerheart-campaign-sub001/internal/domain"
)

func TestStringSet_AddIsIdempotent(t *testing.T) {
	s := domain.StringSet{}
	s = s.Add("a")
	s = s.Add("b")
	s = s.Add("a")

	assert.Len(t, s, 2)
	assert.True(t, s.Contains("a"))
	assert.True(t, s.Contains("b"))
}

func TestStringSet_Remove(t *testing.T) {
	s := domain.StringSet{"a", "b", "c"}
	s = s.Remove("b")

	assert.Equal(t, domain.StringSet{"a", "c"}, s)
	assert.Equal(t, s, s.Remove("missing"))
}

func TestStringSet_ScanNullColumn(t *testing.T) {
	var s domain.StringSet
	require.NoError(t, s.Scan(nil))
	assert.Empty(t, s)
}

func TestMemberMap_ScanRejectsGarbage(t *testing.T) {
	var m domain.MemberMap
	assert.Error(t, m.Scan("not-json"))
}
