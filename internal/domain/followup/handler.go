package followup

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const internalErrorMessage = "An internal server error occurred."

// Handler exposes the staff-facing endpoints.
type Handler struct {
	svc    *Service
	logger zerolog.Logger
}

func NewHandler(svc *Service, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// RegisterRoutes mounts the follow-up endpoints on the /api group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/register-patient", h.RegisterPatient)
	g.POST("/create-visit", h.CreateVisit)
	g.POST("/upload-report", h.UploadReport)
}

type registerPatientRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type createVisitRequest struct {
	Phone string `json:"phone"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var req registerPatientRequest
	if err := c.Bind(&req); err != nil || req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Name and phone number are required."})
	}

	patient, err := h.svc.RegisterPatient(c.Request().Context(), req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, ErrDuplicatePhone) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "This phone number is already registered."})
		}
		h.logger.Error().Err(err).Str("phone", req.Phone).Msg("register patient failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Patient registered successfully!",
		"patient": patient,
	})
}

func (h *Handler) CreateVisit(c echo.Context) error {
	var req createVisitRequest
	if err := c.Bind(&req); err != nil || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Phone number is required."})
	}

	visit, err := h.svc.CreateVisit(c.Request().Context(), req.Phone)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Patient not found."})
		}
		h.logger.Error().Err(err).Str("phone", req.Phone).Msg("create visit failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"message": "Follow-up visit created successfully!",
		"visit":   visit,
	})
}

func (h *Handler) UploadReport(c echo.Context) error {
	visitID := c.FormValue("visitId")
	fileHeader, err := c.FormFile("report")
	if visitID == "" || err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Visit ID and report file are required."})
	}

	src, err := fileHeader.Open()
	if err != nil {
		h.logger.Error().Err(err).Str("visit_id", visitID).Msg("opening uploaded report failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
	}
	defer src.Close()

	_, reportRef, err := h.svc.UploadReport(c.Request().Context(), visitID, fileHeader.Filename, src)
	if err != nil {
		if errors.Is(err, ErrVisitNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Visit not found."})
		}
		h.logger.Error().Err(err).Str("visit_id", visitID).Msg("upload report failed")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": internalErrorMessage})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Report uploaded and link sent successfully!",
		"report":  reportRef,
	})
}
