package services

import (
	"testing"

	"census-backend/internal/adapters/persistence/models"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	assert.Equal(t, "nguyen van duc", fold("Nguyễn Văn Đức"))
	assert.Equal(t, []string{"tran", "thi", "binh"}, tokenize("  Trần-Thị, Bình "))
}

func TestPrefilterTermsKeepAccentedSpelling(t *testing.T) {
	assert.Equal(t, []string{"nguyễn", "nguyen", "an"}, prefilterTerms("Nguyễn An"))
	assert.Empty(t, prefilterTerms(" - "))
}

func TestRankCandidates(t *testing.T) {
	candidates := []models.SearchCandidate{
		{IdentityNumber: "4", Fullname: "Lê Thị Hoa"},
		{IdentityNumber: "3", Fullname: "Văn Bình"},
		{IdentityNumber: "2", Fullname: "Nguyễn An"},
		{IdentityNumber: "1", Fullname: "Nguyễn Văn An"},
	}

	assert.Equal(t, []string{"1", "2"}, rankCandidates("Nguyen Van An", candidates))
}

func TestRankCandidatesTiesByIdentity(t *testing.T) {
	candidates := []models.SearchCandidate{
		{IdentityNumber: "b", Fullname: "Trần Bình"},
		{IdentityNumber: "a", Fullname: "Trần Bình"},
	}
	assert.Equal(t, []string{"a", "b"}, rankCandidates("trần", candidates))
}

func TestRankCandidatesMatchesIdentityNumber(t *testing.T) {
	candidates := []models.SearchCandidate{
		{IdentityNumber: "001099000123", Fullname: "Phạm Minh"},
		{IdentityNumber: "001099000124", Fullname: "Phạm Minh"},
	}
	assert.Equal(t, []string{"001099000123"}, rankCandidates("001099000123", candidates))
}
