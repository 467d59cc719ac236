package repositories

import (
	"context"
	"strings"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/core/domain"

	"gorm.io/gorm"
)

type surveyRepository struct {
	db *gorm.DB
}

// NewSurveyRepository creates a new survey repository
func NewSurveyRepository(db *gorm.DB) SurveyRepository {
	return &surveyRepository{db: db}
}

// unitColumn is the permanent-address column for a level; "" means unscoped.
func unitColumn(level domain.Level) string {
	field := level.AddressField()
	if field == "" {
		return ""
	}
	return "permanent_" + field
}

// Create inserts a record; the unique index on identity_number settles races.
func (r *surveyRepository) Create(ctx context.Context, survey *models.Survey) error {
	err := r.db.WithContext(ctx).Create(survey).Error
	return translate(err, nil, domain.ErrDuplicateIdentity)
}

func (r *surveyRepository) ExistsByIdentity(ctx context.Context, identityNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Survey{}).
		Where("identity_number = ?", identityNumber).
		Count(&count).Error
	return count > 0, err
}

func (r *surveyRepository) GetByIdentity(ctx context.Context, identityNumber string) (*models.Survey, error) {
	var survey models.Survey
	err := r.db.WithContext(ctx).Where("identity_number = ?", identityNumber).First(&survey).Error
	if err != nil {
		return nil, translate(err, domain.ErrCitizenNotFound, nil)
	}
	return &survey, nil
}

// ListByUnit returns records whose permanent address at level equals code.
func (r *surveyRepository) ListByUnit(ctx context.Context, level domain.Level, code string) ([]*models.Survey, error) {
	q := r.db.WithContext(ctx).Model(&models.Survey{})
	if col := unitColumn(level); col != "" {
		q = q.Where(col+" = ?", code)
	}
	surveys := []*models.Survey{}
	err := q.Order("identity_number").Find(&surveys).Error
	return surveys, err
}

func (r *surveyRepository) DeleteByIdentity(ctx context.Context, identityNumber string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("identity_number = ?", identityNumber).
		Delete(&models.Survey{})
	return res.RowsAffected > 0, res.Error
}

// OccupationCounts groups records by (unit code, job).
func (r *surveyRepository) OccupationCounts(ctx context.Context, level domain.Level, codes []string) ([]models.OccupationCountRow, error) {
	col := unitColumn(level)
	if col == "" {
		return nil, domain.ErrInvalidCode
	}
	var rows []models.OccupationCountRow
	err := r.db.WithContext(ctx).
		Model(&models.Survey{}).
		Select(col+" AS code, job, COUNT(*) AS count").
		Where(col+" IN ?", codes).
		Group(col + ", job").
		Order(col + ", job").
		Scan(&rows).Error
	return rows, err
}

// ListDobs returns the raw dob strings of matching records. Country level is unscoped.
func (r *surveyRepository) ListDobs(ctx context.Context, level domain.Level, codes []string, gender string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&models.Survey{}).Where("gender = ?", gender)
	if col := unitColumn(level); col != "" {
		q = q.Where(col+" IN ?", codes)
	}
	var dobs []string
	err := q.Pluck("dob", &dobs).Error
	return dobs, err
}

// SearchCandidates prefilters records sharing at least one term with the
// keyword. Ranking happens in the service.
func (r *surveyRepository) SearchCandidates(ctx context.Context, terms []string, level domain.Level, code string) ([]models.SearchCandidate, error) {
	if len(terms) == 0 {
		return nil, nil
	}

	clauses := make([]string, 0, len(terms))
	args := make([]interface{}, 0, len(terms)*2)
	for _, term := range terms {
		clauses = append(clauses, "fullname LIKE ? OR identity_number LIKE ?")
		like := "%" + term + "%"
		args = append(args, like, like)
	}

	q := r.db.WithContext(ctx).
		Model(&models.Survey{}).
		Select("identity_number, fullname").
		Where(strings.Join(clauses, " OR "), args...)
	if col := unitColumn(level); col != "" {
		q = q.Where(col+" = ?", code)
	}

	var out []models.SearchCandidate
	err := q.Scan(&out).Error
	return out, err
}
