package handlers

import (
	"census-backend/internal/adapters/http/middleware"
	"census-backend/internal/core/domain"
	"census-backend/internal/core/services"
	"census-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const maxImportSize = 10 << 20

// SurveyHandler serves the survey record store.
type SurveyHandler struct {
	surveyService *services.SurveyService
	log           *zap.Logger
}

func NewSurveyHandler(surveyService *services.SurveyService, log *zap.Logger) *SurveyHandler {
	return &SurveyHandler{
		surveyService: surveyService,
		log:           log,
	}
}

// LocationListRequest names the units of a report. All codes share one level.
type LocationListRequest struct {
	LocationCodes []string `json:"location_codes"`
}

// Insert records one citizen
// @Summary Insert survey record
// @Description Address fields accept names or codes; names resolve level by level.
// @Tags Survey
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body services.SurveyInput true "Survey form"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /survey [post]
func (h *SurveyHandler) Insert(c *fiber.Ctx) error {
	var req services.SurveyInput
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	record, err := h.surveyService.Insert(c.UserContext(), middleware.Username(c), &req, services.SourceAPI)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Created(c, data(record))
}

// GetByIdentity returns one citizen
// @Summary Citizen by identity number
// @Tags Survey
// @Produce json
// @Security BearerAuth
// @Param id_number query string true "Identity number"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /survey/citizen-by-id-number [get]
func (h *SurveyHandler) GetByIdentity(c *fiber.Ctx) error {
	id := c.Query("id_number")
	if id == "" {
		return response.BadRequest(c, "id_number is required")
	}

	record, err := h.surveyService.FindByIdentity(c.UserContext(), middleware.Username(c), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(record))
}

// ListByLocation lists the citizens of a unit
// @Summary Citizens of a location
// @Tags Survey
// @Produce json
// @Security BearerAuth
// @Param code query string true "Location code"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /survey/location/citizens [get]
func (h *SurveyHandler) ListByLocation(c *fiber.Ctx) error {
	records, err := h.surveyService.ListByUnit(c.UserContext(), middleware.Username(c), c.Query("code"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(records))
}

// Delete removes a citizen
// @Summary Delete survey record
// @Description unit selects the permanent-address field compared with the caller's managed location; it defaults to the caller's own level.
// @Tags Survey
// @Produce json
// @Security BearerAuth
// @Param identity path string true "Identity number"
// @Param unit query string false "city, district, ward or civil_group"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /survey/{identity} [delete]
func (h *SurveyHandler) Delete(c *fiber.Ctx) error {
	unit := domain.LevelInvalid
	if field := c.Query("unit"); field != "" {
		if unit = domain.ParseUnit(field); unit == domain.LevelInvalid {
			return response.BadRequest(c, "unit must be city, district, ward or civil_group")
		}
	}

	if err := h.surveyService.DeleteWithPermission(c.UserContext(), middleware.Username(c), unit, c.Params("identity")); err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, fiber.Map{})
}

// Occupation counts jobs per unit
// @Summary Occupation report
// @Tags Survey
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body LocationListRequest true "Location codes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /survey/location/occupation [post]
func (h *SurveyHandler) Occupation(c *fiber.Ctx) error {
	var req LocationListRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	report, err := h.surveyService.OccupationCounts(c.UserContext(), middleware.Username(c), req.LocationCodes)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(report))
}

// AgeDistribution counts one gender per decade of age
// @Summary Age distribution
// @Tags Survey
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param gender query string true "Nam or Nữ"
// @Param body body LocationListRequest true "Location codes"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /survey/location/age-dist [post]
func (h *SurveyHandler) AgeDistribution(c *fiber.Ctx) error {
	var req LocationListRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	dist, err := h.surveyService.AgeDistribution(c.UserContext(), middleware.Username(c), req.LocationCodes, c.Query("gender"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(dist))
}

// Search ranks citizens by keyword within the caller's location
// @Summary Keyword search
// @Tags Survey
// @Produce json
// @Security BearerAuth
// @Param keyword query string true "Name or identity number words"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /survey/search [get]
func (h *SurveyHandler) Search(c *fiber.Ctx) error {
	ids, err := h.surveyService.Search(c.UserContext(), middleware.Username(c), c.Query("keyword"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(ids))
}

// Import inserts every row of an uploaded workbook
// @Summary Import survey spreadsheet
// @Tags Survey
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "xlsx workbook"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /survey/import [post]
func (h *SurveyHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "file is required")
	}
	if fh.Size > maxImportSize {
		return response.BadRequest(c, "file is too large")
	}

	f, err := fh.Open()
	if err != nil {
		return respondError(c, h.log, err)
	}
	defer f.Close()

	summary, err := h.surveyService.ImportSpreadsheet(c.UserContext(), middleware.Username(c), f)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return response.Success(c, data(summary))
}

// ImportTemplate downloads the empty import workbook
// @Summary Import template
// @Tags Survey
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /survey/import/template [get]
func (h *SurveyHandler) ImportTemplate(c *fiber.Ctx) error {
	content, err := services.ImportTemplate()
	if err != nil {
		return respondError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="survey_import_template.xlsx"`)
	return c.Send(content)
}
