package repositories

import (
	"context"
	"testing"
	"time"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/testdb"
	"census-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func survey(id, name, gender, job, civilGroup string) *models.Survey {
	return &models.Survey{
		IdentityNumber: id,
		Fullname:       name,
		Dob:            "01/01/2000",
		Gender:         gender,
		Hometown:       "01",
		Job:            job,
		PermanentAddress: models.Address{
			City:       civilGroup[:2],
			District:   civilGroup[:4],
			Ward:       civilGroup[:6],
			CivilGroup: civilGroup,
		},
		CreateAt: time.Now(),
	}
}

func seedSurveys(t *testing.T) SurveyRepository {
	t.Helper()
	repo := NewSurveyRepository(testdb.Open(t))
	ctx := context.Background()
	for _, s := range []*models.Survey{
		survey("001", "Nguyen Van A", domain.GenderMale, "Farmer", "01010101"),
		survey("002", "Tran Thi B", domain.GenderFemale, "Teacher", "01010101"),
		survey("003", "Nguyen Van C", domain.GenderMale, "Farmer", "01020101"),
		survey("004", "Le Van D", domain.GenderMale, "Farmer", "79010101"),
	} {
		require.NoError(t, repo.Create(ctx, s))
	}
	return repo
}

func TestSurveyDuplicateIdentity(t *testing.T) {
	repo := seedSurveys(t)
	err := repo.Create(context.Background(), survey("001", "Copy", domain.GenderMale, "x", "01010101"))
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
}

func TestSurveyGetAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := seedSurveys(t)

	got, err := repo.GetByIdentity(ctx, "002")
	require.NoError(t, err)
	assert.Equal(t, "Tran Thi B", got.Fullname)

	deleted, err := repo.DeleteByIdentity(ctx, "002")
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetByIdentity(ctx, "002")
	assert.ErrorIs(t, err, domain.ErrCitizenNotFound)

	deleted, err = repo.DeleteByIdentity(ctx, "002")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSurveyListByUnit(t *testing.T) {
	ctx := context.Background()
	repo := seedSurveys(t)

	list, err := repo.ListByUnit(ctx, domain.LevelCity, "01")
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = repo.ListByUnit(ctx, domain.LevelDistrict, "0102")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "003", list[0].IdentityNumber)

	list, err = repo.ListByUnit(ctx, domain.LevelCountry, "0")
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestSurveyOccupationCounts(t *testing.T) {
	rows, err := seedSurveys(t).OccupationCounts(context.Background(), domain.LevelCity, []string{"01", "79"})
	require.NoError(t, err)
	assert.Equal(t, []models.OccupationCountRow{
		{Code: "01", Job: "Farmer", Count: 2},
		{Code: "01", Job: "Teacher", Count: 1},
		{Code: "79", Job: "Farmer", Count: 1},
	}, rows)
}

func TestSurveyListDobs(t *testing.T) {
	dobs, err := seedSurveys(t).ListDobs(context.Background(), domain.LevelCity, []string{"01"}, domain.GenderMale)
	require.NoError(t, err)
	assert.Len(t, dobs, 2)
}

func TestSurveySearchCandidatesScoped(t *testing.T) {
	ctx := context.Background()
	repo := seedSurveys(t)

	all, err := repo.SearchCandidates(ctx, []string{"nguyen"}, domain.LevelCountry, "0")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	scoped, err := repo.SearchCandidates(ctx, []string{"nguyen"}, domain.LevelDistrict, "0101")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "001", scoped[0].IdentityNumber)

	none, err := repo.SearchCandidates(ctx, nil, domain.LevelCountry, "0")
	require.NoError(t, err)
	assert.Empty(t, none)
}
