package services

import (
	"bytes"
	"testing"
	"time"

	"census-backend/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func hanoiAddress(home string) AddressInput {
	return AddressInput{City: "Hà Nội", District: "Ba Đình", Ward: "Phúc Xá", CivilGroup: "Tổ 1", HomeAddress: home}
}

func hcmAddress(home string) AddressInput {
	return AddressInput{City: "Hồ Chí Minh", District: "Quận 1", Ward: "Bến Nghé", CivilGroup: "Tổ 5", HomeAddress: home}
}

func citizen(id, name, dob, gender, job string, addr AddressInput) *SurveyInput {
	return &SurveyInput{
		IdentityNumber:   id,
		Fullname:         name,
		Dob:              dob,
		Gender:           gender,
		Hometown:         "Hà Nội",
		PermanentAddress: addr,
		TemporaryAddress: addr,
		Job:              job,
	}
}

func insert(t *testing.T, f *fixture, collector string, in *SurveyInput) {
	t.Helper()
	_, err := f.surveySvc.Insert(f.ctx, collector, in, SourceAPI)
	require.NoError(t, err)
}

func TestInsertResolvesAddressNames(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)

	rec, err := f.surveySvc.Insert(f.ctx, rootUser, citizen("001", "Nguyễn Văn An", "01/01/2000", domain.GenderMale, "Nông dân", hanoiAddress("12 Hàng Bông")), SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, "01", rec.Hometown)
	assert.Equal(t, "01", rec.PermanentAddress.City)
	assert.Equal(t, "0101", rec.PermanentAddress.District)
	assert.Equal(t, "010101", rec.PermanentAddress.Ward)
	assert.Equal(t, "01010101", rec.PermanentAddress.CivilGroup)
	assert.Equal(t, "12 Hàng Bông, Phúc Xá, Ba Đình, Hà Nội", rec.PermanentAddress.HomeAddress)

	byCode := citizen("002", "Trần Thị Bình", "2000/12/31", domain.GenderFemale, "Giáo viên", AddressInput{City: "01", District: "0101", Ward: "010101", CivilGroup: "01010101"})
	byCode.Hometown = "79"
	rec, err = f.surveySvc.Insert(f.ctx, rootUser, byCode, SourceAPI)
	require.NoError(t, err)
	assert.Equal(t, "79", rec.Hometown)
	assert.Equal(t, "01010101", rec.PermanentAddress.CivilGroup)
}

func TestInsertDuplicateIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)

	insert(t, f, rootUser, citizen("X", "Nguyễn Văn An", "01/01/2000", domain.GenderMale, "Nông dân", hanoiAddress("")))
	_, err := f.surveySvc.Insert(f.ctx, rootUser, citizen("X", "Người Khác", "01/01/1990", domain.GenderMale, "Nông dân", hanoiAddress("")), SourceAPI)
	assert.ErrorIs(t, err, domain.ErrDuplicateIdentity)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInsertValidationWritesNothing(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)

	badHometown := citizen("h", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress(""))
	badHometown.Hometown = "Atlantis"
	badAddress := citizen("a", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress(""))
	badAddress.PermanentAddress.Ward = "Bến Nghé"

	tests := []struct {
		name  string
		input *SurveyInput
		want  error
	}{
		{"dob words", citizen("d1", "A", "first of May", domain.GenderMale, "x", hanoiAddress("")), domain.ErrInvalidBirthDate},
		{"dob dashes", citizen("d2", "A", "2000-01-01", domain.GenderMale, "x", hanoiAddress("")), domain.ErrInvalidBirthDate},
		{"dob five digit year", citizen("d3", "A", "01/01/20000", domain.GenderMale, "x", hanoiAddress("")), domain.ErrInvalidBirthDate},
		{"unknown hometown", badHometown, domain.ErrUnknownHometown},
		{"ward under another district", badAddress, domain.ErrUnknownAddress},
		{"missing name", citizen("n", "  ", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")), domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.surveySvc.Insert(f.ctx, rootUser, tt.input, SourceAPI)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)

			exists, err := f.surveys.ExistsByIdentity(f.ctx, tt.input.IdentityNumber)
			require.NoError(t, err)
			assert.False(t, exists)
		})
	}
}

func TestInsertSurveyRights(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)
	f.seedHanoiChain(t)

	_, err := f.surveySvc.Insert(f.ctx, "badinh", citizen("out", "A", "01/01/2000", domain.GenderMale, "x", hcmAddress("")), SourceAPI)
	assert.ErrorIs(t, err, domain.ErrRecordOutOfScope)

	insert(t, f, "badinh", citizen("in", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")))

	_, err = f.userSvc.SetActive(f.ctx, "hanoi", "badinh", false)
	require.NoError(t, err)
	_, err = f.surveySvc.Insert(f.ctx, "badinh", citizen("in2", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")), SourceAPI)
	assert.ErrorIs(t, err, domain.ErrSurveyInactive)

	_, err = f.userSvc.SetActive(f.ctx, "hanoi", "badinh", true)
	require.NoError(t, err)
	past := time.Now().Add(-72 * time.Hour)
	_, err = f.users.SetSurveyTime(f.ctx, "badinh", past, past.Add(time.Hour))
	require.NoError(t, err)
	_, err = f.surveySvc.Insert(f.ctx, "badinh", citizen("in3", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")), SourceAPI)
	assert.ErrorIs(t, err, domain.ErrOutsideWindow)
}

func TestFindAndListAreScoped(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)
	f.seedHanoiChain(t)
	insert(t, f, rootUser, citizen("001", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("002", "B", "01/01/2000", domain.GenderMale, "x", hcmAddress("")))

	rec, err := f.surveySvc.FindByIdentity(f.ctx, "badinh", "001")
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Fullname)

	_, err = f.surveySvc.FindByIdentity(f.ctx, "badinh", "002")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.surveySvc.FindByIdentity(f.ctx, "badinh", "404")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.surveySvc.ListByUnit(f.ctx, "badinh", "010101")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.surveySvc.ListByUnit(f.ctx, "badinh", "79")
	assert.ErrorIs(t, err, domain.ErrRecordOutOfScope)

	all, err := f.surveySvc.ListByUnit(f.ctx, rootUser, "0")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDeleteWithPermission(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)
	f.seedHanoiChain(t)
	insert(t, f, rootUser, citizen("001", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("002", "B", "01/01/2000", domain.GenderMale, "x", hcmAddress("")))

	err := f.surveySvc.DeleteWithPermission(f.ctx, "badinh", domain.LevelDistrict, "002")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	err = f.surveySvc.DeleteWithPermission(f.ctx, "badinh", domain.LevelWard, "001")
	assert.ErrorIs(t, err, domain.ErrForbidden, "ward code differs from managed district")

	require.NoError(t, f.surveySvc.DeleteWithPermission(f.ctx, "badinh", domain.LevelInvalid, "001"))

	err = f.surveySvc.DeleteWithPermission(f.ctx, "badinh", domain.LevelDistrict, "001")
	assert.ErrorIs(t, err, domain.ErrCitizenNotFound)

	require.NoError(t, f.surveySvc.DeleteWithPermission(f.ctx, rootUser, domain.LevelCity, "002"), "country scope is unrestricted")
}

func TestOccupationCounts(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)
	insert(t, f, rootUser, citizen("001", "A", "01/01/2000", domain.GenderMale, "Nông dân", hanoiAddress("")))
	insert(t, f, rootUser, citizen("002", "B", "01/01/2000", domain.GenderFemale, "Giáo viên", hanoiAddress("")))
	insert(t, f, rootUser, citizen("003", "C", "01/01/2000", domain.GenderMale, "Nông dân", hanoiAddress("")))
	insert(t, f, rootUser, citizen("004", "D", "01/01/2000", domain.GenderMale, "Nông dân", hcmAddress("")))

	report, err := f.surveySvc.OccupationCounts(f.ctx, rootUser, []string{"79", "01"})
	require.NoError(t, err)
	assert.Equal(t, []OccupationReport{
		{Code: "01", Jobs: []JobCount{{Job: "Giáo viên", Count: 1}, {Job: "Nông dân", Count: 2}}},
		{Code: "79", Jobs: []JobCount{{Job: "Nông dân", Count: 1}}},
	}, report)

	_, err = f.surveySvc.OccupationCounts(f.ctx, rootUser, []string{"01", "0101"})
	assert.ErrorIs(t, err, domain.ErrMixedUnits)

	_, err = f.surveySvc.OccupationCounts(f.ctx, rootUser, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAgeDistribution(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)
	f.surveySvc.now = func() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.Local) }

	insert(t, f, rootUser, citizen("001", "A", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("002", "B", "15/08/1950", domain.GenderMale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("003", "C", "1920/01/01", domain.GenderMale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("004", "D", "01/01/2000", domain.GenderFemale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("005", "E", "01/01/2000", domain.GenderMale, "x", hcmAddress("")))

	dist, err := f.surveySvc.AgeDistribution(f.ctx, rootUser, []string{"01"}, domain.GenderMale)
	require.NoError(t, err)
	assert.Len(t, dist, 10)
	assert.Equal(t, 1, dist["20-30"])
	assert.Equal(t, 1, dist["70-80"])
	assert.Equal(t, 0, dist["90-100"], "104 falls outside every bucket")

	_, err = f.surveySvc.AgeDistribution(f.ctx, rootUser, []string{"01"}, "male")
	assert.ErrorIs(t, err, domain.ErrInvalidGender)
}

func TestParseDob(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	birth, ok := parseDob("01/01/2000", now)
	require.True(t, ok)
	assert.Equal(t, 24, AgeAt(birth, now))

	birth, ok = parseDob("5/7/85", now)
	require.True(t, ok)
	assert.Equal(t, 1985, birth.Year())

	birth, ok = parseDob("1/1/20", now)
	require.True(t, ok)
	assert.Equal(t, 2020, birth.Year())

	_, ok = parseDob("31/13/2000", now)
	assert.False(t, ok)

	_, ok = parseDob("31/02/2000", now)
	assert.False(t, ok, "day past the end of the month")
	_, ok = parseDob("2001/2/29", now)
	assert.False(t, ok)
	birth, ok = parseDob("29/2/2000", now)
	require.True(t, ok)
	assert.Equal(t, time.February, birth.Month())
	assert.False(t, ValidDob("30/02/1990"))

	assert.Equal(t, 23, AgeAt(time.Date(2000, 6, 2, 0, 0, 0, 0, time.UTC), now), "birthday not reached yet")
}

func TestSearchByKeywordScope(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)
	insert(t, f, rootUser, citizen("001", "Nguyễn Văn An", "01/01/2000", domain.GenderMale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("002", "Trần Thị Bình", "01/01/2000", domain.GenderFemale, "x", hanoiAddress("")))
	insert(t, f, rootUser, citizen("003", "Nguyễn Văn Cường", "01/01/2000", domain.GenderMale, "x", hcmAddress("")))

	ids, err := f.surveySvc.SearchByKeyword(f.ctx, "Nguyễn Văn", "0")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"001", "003"}, ids)

	ids, err = f.surveySvc.SearchByKeyword(f.ctx, "Nguyễn Văn", "0101")
	require.NoError(t, err)
	assert.Equal(t, []string{"001"}, ids)

	ids, err = f.surveySvc.SearchByKeyword(f.ctx, "nguyen van an", "0")
	require.NoError(t, err)
	require.NotEmpty(t, ids)
	assert.Equal(t, "001", ids[0])

	_, err = f.surveySvc.SearchByKeyword(f.ctx, "  ", "0")
	assert.ErrorIs(t, err, domain.ErrEmptyKeyword)
}

func TestImportSpreadsheet(t *testing.T) {
	f := newFixture(t)
	f.seedTree(t)

	tmpl, err := ImportTemplate()
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(tmpl))
	require.NoError(t, err)
	defer book.Close()
	sheet := book.GetSheetList()[0]

	header, err := book.GetRows(sheet)
	require.NoError(t, err)
	require.Len(t, header, 1)
	assert.Equal(t, ImportHeader, header[0])

	good := []interface{}{"101", "Lê Văn Dũng", "02/03/1990", domain.GenderMale, "Hà Nội", "Hà Nội", "Ba Đình", "Phúc Xá", "Tổ 1", "5 Hòe Nhai", "Hà Nội", "Ba Đình", "Phúc Xá", "Tổ 1", "5 Hòe Nhai", "", "Kỹ sư", "Đại học"}
	bad := []interface{}{"102", "Phạm Thị Em", "1990-03-02", domain.GenderFemale, "Hà Nội"}
	require.NoError(t, book.SetSheetRow(sheet, "A2", &good))
	require.NoError(t, book.SetSheetRow(sheet, "A4", &bad))

	var buf bytes.Buffer
	_, err = book.WriteTo(&buf)
	require.NoError(t, err)

	summary, err := f.surveySvc.ImportSpreadsheet(f.ctx, rootUser, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Rows, 2)
	assert.True(t, summary.Rows[0].OK)
	assert.Equal(t, 4, summary.Rows[1].Row)
	assert.NotEmpty(t, summary.Rows[1].Error)

	rec, err := f.surveys.GetByIdentity(f.ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "Kỹ sư", rec.Job)

	_, err = f.surveySvc.ImportSpreadsheet(f.ctx, rootUser, bytes.NewReader([]byte("not a workbook")))
	assert.ErrorIs(t, err, domain.ErrInvalidSpreadsheet)
}
