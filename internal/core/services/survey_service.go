package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"census-backend/internal/adapters/persistence/models"
	"census-backend/internal/adapters/persistence/repositories"
	"census-backend/internal/core/domain"
	"census-backend/internal/pkg/metrics"

	"go.uber.org/zap"
)

var (
	dobDayFirst  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	dobYearFirst = regexp.MustCompile(`^(\d{2,4})/(\d{1,2})/(\d{1,2})$`)
)

// Insert sources, used as a metric label.
const (
	SourceAPI    = "api"
	SourceImport = "import"
)

// SurveyService handles the survey record store.
type SurveyService struct {
	surveyRepo   repositories.SurveyRepository
	locationRepo repositories.LocationRepository
	userRepo     repositories.UserRepository
	permissions  *PermissionService
	log          *zap.Logger
	now          func() time.Time
}

func NewSurveyService(
	surveyRepo repositories.SurveyRepository,
	locationRepo repositories.LocationRepository,
	userRepo repositories.UserRepository,
	permissions *PermissionService,
	log *zap.Logger,
) *SurveyService {
	return &SurveyService{
		surveyRepo:   surveyRepo,
		locationRepo: locationRepo,
		userRepo:     userRepo,
		permissions:  permissions,
		log:          log,
		now:          time.Now,
	}
}

// AddressInput names each level of an address; codes are accepted too.
type AddressInput struct {
	City        string `json:"city"`
	District    string `json:"district"`
	Ward        string `json:"ward"`
	CivilGroup  string `json:"civil_group"`
	HomeAddress string `json:"home_address"`
}

// SurveyInput represents one citizen form
type SurveyInput struct {
	IdentityNumber   string       `json:"identity_number"`
	Fullname         string       `json:"fullname"`
	Dob              string       `json:"dob"`
	Gender           string       `json:"gender"`
	Hometown         string       `json:"hometown"`
	PermanentAddress AddressInput `json:"permanent_address"`
	TemporaryAddress AddressInput `json:"temporary_address"`
	Religion         string       `json:"religion"`
	Job              string       `json:"job"`
	EduLevel         string       `json:"edu_level"`
}

// JobCount is one job row of the occupation report.
type JobCount struct {
	Job   string `json:"job"`
	Count int64  `json:"count"`
}

// OccupationReport groups job counts by unit code.
type OccupationReport struct {
	Code string     `json:"code"`
	Jobs []JobCount `json:"jobs"`
}

// ValidDob reports whether dob is d/m/y or y/m/d with 1-2 digit day and
// month and a 2-4 digit year, naming a day that exists.
func ValidDob(dob string) bool {
	_, ok := parseDob(dob, time.Now())
	return ok
}

// Insert validates and stores one record collected by collectorUsername.
// Nothing is written unless every check passes.
func (s *SurveyService) Insert(ctx context.Context, collectorUsername string, input *SurveyInput, source string) (*models.Survey, error) {
	collector, err := s.userRepo.GetByUsername(ctx, collectorUsername)
	if err != nil {
		return nil, err
	}
	if err := s.checkSurveyRights(collector); err != nil {
		return nil, err
	}

	input.IdentityNumber = strings.TrimSpace(input.IdentityNumber)
	input.Fullname = strings.TrimSpace(input.Fullname)
	if input.IdentityNumber == "" || input.Fullname == "" {
		return nil, fmt.Errorf("%w: identity_number and fullname are required", domain.ErrInvalidInput)
	}

	exists, err := s.surveyRepo.ExistsByIdentity(ctx, input.IdentityNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateIdentity
	}

	if !ValidDob(input.Dob) {
		return nil, domain.ErrInvalidBirthDate
	}

	hometown, err := s.locationRepo.FindByCodeOrName(ctx, domain.LevelCity, strings.TrimSpace(input.Hometown))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnknownHometown
		}
		return nil, err
	}

	permanent, err := s.resolveAddress(ctx, input.PermanentAddress)
	if err != nil {
		return nil, err
	}
	temporary, err := s.resolveAddress(ctx, input.TemporaryAddress)
	if err != nil {
		return nil, err
	}

	if !s.permissions.CanAccessUnit(collector, permanent.CivilGroup, "insert") {
		return nil, domain.ErrRecordOutOfScope
	}

	record := &models.Survey{
		IdentityNumber:   input.IdentityNumber,
		Fullname:         input.Fullname,
		Dob:              input.Dob,
		Gender:           input.Gender,
		Hometown:         hometown.CodeValue(),
		PermanentAddress: permanent,
		TemporaryAddress: temporary,
		Religion:         input.Religion,
		Job:              input.Job,
		EduLevel:         input.EduLevel,
		CollectedBy:      collector.ID,
		CreateAt:         s.now(),
	}
	if err := s.surveyRepo.Create(ctx, record); err != nil {
		return nil, err
	}

	metrics.RecordSurveyInserted(domain.UnitOf(collector.ManageLocation).String(), source)
	s.log.Info("✅ Survey recorded",
		zap.String("identity_number", record.IdentityNumber),
		zap.String("civil_group", permanent.CivilGroup),
		zap.String("by", collector.Username),
	)
	return record, nil
}

// checkSurveyRights gates writes on the active flag and the declare window.
func (s *SurveyService) checkSurveyRights(collector *models.User) error {
	if !collector.Active {
		return domain.ErrSurveyInactive
	}
	if collector.SurveyTime.IsSet() {
		window := domain.DeclareWindow{Start: *collector.SurveyTime.Start, End: *collector.SurveyTime.End}
		if !window.Contains(s.now()) {
			return domain.ErrOutsideWindow
		}
	}
	return nil
}

// resolveAddress turns level names into codes, each one looked up under the
// code resolved for the level above.
func (s *SurveyService) resolveAddress(ctx context.Context, in AddressInput) (models.Address, error) {
	city, err := s.locationRepo.FindByCodeOrName(ctx, domain.LevelCity, strings.TrimSpace(in.City))
	if err != nil {
		return models.Address{}, addressError(err, "city", in.City)
	}
	district, err := s.resolveChild(ctx, domain.LevelDistrict, city.CodeValue(), in.District)
	if err != nil {
		return models.Address{}, addressError(err, "district", in.District)
	}
	ward, err := s.resolveChild(ctx, domain.LevelWard, district.CodeValue(), in.Ward)
	if err != nil {
		return models.Address{}, addressError(err, "ward", in.Ward)
	}
	group, err := s.resolveChild(ctx, domain.LevelCivilGroup, ward.CodeValue(), in.CivilGroup)
	if err != nil {
		return models.Address{}, addressError(err, "civil_group", in.CivilGroup)
	}

	home := strings.Join([]string{in.HomeAddress, ward.Name, district.Name, city.Name}, ", ")
	return models.Address{
		City:        city.CodeValue(),
		District:    district.CodeValue(),
		Ward:        ward.CodeValue(),
		CivilGroup:  group.CodeValue(),
		HomeAddress: home,
	}, nil
}

func (s *SurveyService) resolveChild(ctx context.Context, level domain.Level, parentCode, value string) (*models.LocationNode, error) {
	value = strings.TrimSpace(value)
	node, err := s.locationRepo.FindChildByName(ctx, level, parentCode, value)
	if err == nil || !errors.Is(err, domain.ErrNotFound) {
		return node, err
	}
	if domain.ValidChildCode(parentCode, value) {
		return s.locationRepo.GetByCode(ctx, level, value)
	}
	return nil, err
}

func addressError(err error, field, value string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %s %q", domain.ErrUnknownAddress, field, value)
	}
	return err
}

// FindByIdentity returns one record the reader's scope covers.
func (s *SurveyService) FindByIdentity(ctx context.Context, readerUsername, identityNumber string) (*models.Survey, error) {
	reader, err := s.userRepo.GetByUsername(ctx, readerUsername)
	if err != nil {
		return nil, err
	}
	record, err := s.surveyRepo.GetByIdentity(ctx, identityNumber)
	if err != nil {
		return nil, err
	}
	if !s.permissions.CanAccessUnit(reader, record.PermanentAddress.CivilGroup, "read") {
		return nil, domain.ErrRecordOutOfScope
	}
	return record, nil
}

// ListByUnit lists records whose permanent address lies in code's unit.
func (s *SurveyService) ListByUnit(ctx context.Context, readerUsername, code string) ([]*models.Survey, error) {
	level := domain.UnitOf(code)
	if level == domain.LevelInvalid {
		return nil, domain.ErrInvalidCode
	}
	reader, err := s.userRepo.GetByUsername(ctx, readerUsername)
	if err != nil {
		return nil, err
	}
	if !s.permissions.CanAccessUnit(reader, code, "list") {
		return nil, domain.ErrRecordOutOfScope
	}
	return s.surveyRepo.ListByUnit(ctx, level, code)
}

// addressCode picks the permanent-address code at level.
func addressCode(a models.Address, level domain.Level) string {
	switch level {
	case domain.LevelCity:
		return a.City
	case domain.LevelDistrict:
		return a.District
	case domain.LevelWard:
		return a.Ward
	case domain.LevelCivilGroup:
		return a.CivilGroup
	default:
		return ""
	}
}

// DeleteWithPermission deletes a record whose permanent address at unitLevel
// is the acting user's managed unit. Country-level users are unscoped.
// LevelInvalid means the acting user's own unit.
func (s *SurveyService) DeleteWithPermission(ctx context.Context, actingUsername string, unitLevel domain.Level, identityNumber string) error {
	acting, err := s.userRepo.GetByUsername(ctx, actingUsername)
	if err != nil {
		return err
	}
	record, err := s.surveyRepo.GetByIdentity(ctx, identityNumber)
	if err != nil {
		return err
	}

	allowed := domain.LevelOf(acting.ManageLocation) == domain.LevelCountry
	if !allowed {
		if unitLevel == domain.LevelInvalid {
			unitLevel = domain.UnitOf(acting.ManageLocation)
		}
		allowed = addressCode(record.PermanentAddress, unitLevel) == acting.ManageLocation
	}
	metrics.RecordAuthorizationDecision("survey", "delete", allowed)
	if !allowed {
		return domain.ErrRecordOutOfScope
	}

	deleted, err := s.surveyRepo.DeleteByIdentity(ctx, identityNumber)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrCitizenNotFound
	}

	metrics.RecordSurveyDeleted()
	s.log.Info("🗑️ Survey deleted", zap.String("identity_number", identityNumber), zap.String("by", actingUsername))
	return nil
}

// unitOfCodes checks codes share one level and lie inside reader's scope.
func (s *SurveyService) unitOfCodes(ctx context.Context, readerUsername string, codes []string) (domain.Level, error) {
	if len(codes) == 0 {
		return domain.LevelInvalid, fmt.Errorf("%w: at least one location code is required", domain.ErrInvalidInput)
	}
	level := domain.UnitOf(codes[0])
	if level == domain.LevelInvalid {
		return level, domain.ErrInvalidCode
	}
	for _, c := range codes[1:] {
		if domain.UnitOf(c) != level {
			return level, domain.ErrMixedUnits
		}
	}

	reader, err := s.userRepo.GetByUsername(ctx, readerUsername)
	if err != nil {
		return level, err
	}
	for _, c := range codes {
		if !s.permissions.CanAccessUnit(reader, c, "report") {
			return level, domain.ErrRecordOutOfScope
		}
	}
	return level, nil
}

// OccupationCounts reports job counts per unit, units in code order.
func (s *SurveyService) OccupationCounts(ctx context.Context, readerUsername string, codes []string) ([]OccupationReport, error) {
	level, err := s.unitOfCodes(ctx, readerUsername, codes)
	if err != nil {
		return nil, err
	}
	if level == domain.LevelCountry {
		return nil, fmt.Errorf("%w: occupation report needs city or lower codes", domain.ErrInvalidInput)
	}

	rows, err := s.surveyRepo.OccupationCounts(ctx, level, codes)
	if err != nil {
		return nil, err
	}
	return groupOccupations(rows), nil
}

func groupOccupations(rows []models.OccupationCountRow) []OccupationReport {
	byCode := map[string]*OccupationReport{}
	var order []string
	for _, r := range rows {
		rep, ok := byCode[r.Code]
		if !ok {
			rep = &OccupationReport{Code: r.Code, Jobs: []JobCount{}}
			byCode[r.Code] = rep
			order = append(order, r.Code)
		}
		rep.Jobs = append(rep.Jobs, JobCount{Job: r.Job, Count: r.Count})
	}
	sort.Strings(order)

	out := make([]OccupationReport, 0, len(order))
	for _, code := range order {
		out = append(out, *byCode[code])
	}
	return out
}

// AgeBuckets lists the decade ranges reported by AgeDistribution.
var AgeBuckets = []string{"0-10", "10-20", "20-30", "30-40", "40-50", "50-60", "60-70", "70-80", "80-90", "90-100"}

// AgeDistribution counts records of gender per decade of age across codes.
func (s *SurveyService) AgeDistribution(ctx context.Context, readerUsername string, codes []string, gender string) (map[string]int, error) {
	if !domain.ValidGender(gender) {
		return nil, domain.ErrInvalidGender
	}
	level, err := s.unitOfCodes(ctx, readerUsername, codes)
	if err != nil {
		return nil, err
	}

	dobs, err := s.surveyRepo.ListDobs(ctx, level, codes, gender)
	if err != nil {
		return nil, err
	}
	return bucketAges(dobs, s.now()), nil
}

func bucketAges(dobs []string, now time.Time) map[string]int {
	dist := make(map[string]int, len(AgeBuckets))
	for _, b := range AgeBuckets {
		dist[b] = 0
	}
	for _, dob := range dobs {
		birth, ok := parseDob(dob, now)
		if !ok {
			continue
		}
		age := AgeAt(birth, now)
		if age < 0 || age >= 10*len(AgeBuckets) {
			continue
		}
		dist[AgeBuckets[age/10]]++
	}
	return dist
}

// parseDob reads d/m/y or y/m/d. Two-digit years resolve to the latest
// century that does not put the birth in the future.
func parseDob(dob string, now time.Time) (time.Time, bool) {
	var day, month, year string
	if m := dobDayFirst.FindStringSubmatch(dob); m != nil {
		day, month, year = m[1], m[2], m[3]
	} else if m := dobYearFirst.FindStringSubmatch(dob); m != nil {
		year, month, day = m[1], m[2], m[3]
	} else {
		return time.Time{}, false
	}

	d, _ := strconv.Atoi(day)
	mo, _ := strconv.Atoi(month)
	y, _ := strconv.Atoi(year)
	if d < 1 || d > 31 || mo < 1 || mo > 12 {
		return time.Time{}, false
	}
	if len(year) <= 2 {
		y += 2000
		if y > now.Year() {
			y -= 100
		}
	}
	birth := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, now.Location())
	if birth.Day() != d || birth.Month() != time.Month(mo) {
		return time.Time{}, false
	}
	return birth, true
}

// AgeAt is the age in whole years on now.
func AgeAt(birth, now time.Time) int {
	age := now.Year() - birth.Year()
	if now.Month() < birth.Month() || (now.Month() == birth.Month() && now.Day() < birth.Day()) {
		age--
	}
	return age
}

// SearchByKeyword ranks records by relevance of keyword to fullname and
// identity number, within scopeCode's unit unless scopeCode is country level.
func (s *SurveyService) SearchByKeyword(ctx context.Context, keyword, scopeCode string) ([]string, error) {
	if len(tokenize(keyword)) == 0 {
		return nil, domain.ErrEmptyKeyword
	}
	level := domain.UnitOf(scopeCode)
	if level == domain.LevelInvalid {
		return nil, domain.ErrInvalidCode
	}

	candidates, err := s.surveyRepo.SearchCandidates(ctx, prefilterTerms(keyword), level, scopeCode)
	if err != nil {
		return nil, err
	}
	return rankCandidates(keyword, candidates), nil
}

// Search runs SearchByKeyword within the reader's managed location.
func (s *SurveyService) Search(ctx context.Context, readerUsername, keyword string) ([]string, error) {
	reader, err := s.userRepo.GetByUsername(ctx, readerUsername)
	if err != nil {
		return nil, err
	}
	return s.SearchByKeyword(ctx, keyword, reader.ManageLocation)
}
