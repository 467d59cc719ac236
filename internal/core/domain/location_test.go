package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelOfCoversEveryLength(t *testing.T) {
	named := map[int]Level{
		1: LevelCountry,
		2: LevelCity,
		4: LevelDistrict,
		6: LevelWard,
	}

	for n := 0; n <= 12; n++ {
		code := strings.Repeat("1", n)
		want, ok := named[n]
		if !ok {
			want = LevelInvalid
		}
		assert.Equal(t, want, LevelOf(code), "length %d", n)
	}
}

func TestCollectionFor(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"0", CollectionCountry},
		{"01", CollectionCity},
		{"0101", CollectionDistrict},
		{"010101", CollectionWard},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := CollectionFor(tt.code)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "010", "01010101", "0101010"} {
		_, err := CollectionFor(bad)
		assert.ErrorIs(t, err, ErrInvalidCode, "code %q", bad)
		assert.True(t, errors.Is(err, ErrInvalidInput))
	}
}

func TestChildLevelLength(t *testing.T) {
	assert.Equal(t, 2, ChildLevelLength("0"))
	assert.Equal(t, 4, ChildLevelLength("01"))
	assert.Equal(t, 6, ChildLevelLength("0101"))
	assert.Equal(t, 8, ChildLevelLength("010101"))
}

func TestChildLevelReachesCivilGroup(t *testing.T) {
	assert.Equal(t, LevelCity, ChildLevel(LevelCountry))
	assert.Equal(t, LevelCivilGroup, ChildLevel(LevelWard))
	assert.Equal(t, LevelInvalid, ChildLevel(LevelCivilGroup))
	assert.Equal(t, CollectionCivilGroup, ChildLevel(LevelWard).Collection())
}

func TestUnitOf(t *testing.T) {
	assert.Equal(t, LevelCountry, UnitOf("0"))
	assert.Equal(t, LevelDistrict, UnitOf("0101"))
	assert.Equal(t, LevelCivilGroup, UnitOf("01010101"))
	assert.Equal(t, LevelInvalid, UnitOf("010"))
	assert.Equal(t, "civil_group", UnitOf("01010101").AddressField())
	assert.Empty(t, LevelCountry.AddressField())
}

func TestCovers(t *testing.T) {
	assert.True(t, Covers("0", "79"), "country scope is unrestricted")
	assert.True(t, Covers("01", "01"))
	assert.True(t, Covers("01", "0102"))
	assert.False(t, Covers("01", "0201"))
	assert.False(t, Covers("0101", "01"), "parent is not covered by child scope")
	assert.False(t, Covers("", "01"))
}

func TestValidChildCode(t *testing.T) {
	assert.True(t, ValidChildCode("0", "79"))
	assert.True(t, ValidChildCode("01", "0103"))
	assert.False(t, ValidChildCode("01", "0203"))
	assert.False(t, ValidChildCode("01", "02"))
	assert.True(t, ValidChildCode("010101", "01010107"))
}
