package handler

import (
	"errors"
	"net/http"
	"time"

	"crm-service/internal/crm"
	"crm-service/pkg/logger"
	"crm-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// GetCompanyHistory returns a company row and every call logged against it
func GetCompanyHistory(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCrmOperation("get_company_history")

	name := c.QueryParam("company_name")
	if name == "" {
		log.Warn("Missing company_name query parameter")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "company_name is required",
		})
	}

	log.Info("Getting company history", zap.String("company_name", name))

	defer prometheus.TrackStoreOperation("get_company_history")(time.Now())

	company, calls, err := svc.CompanyHistory(c.Request().Context(), name)
	if errors.Is(err, crm.ErrCompanyNotFound) {
		// Absent company is a business failure: 200 with success:false, not
		// an HTTP error. Legacy clients depend on this asymmetry.
		log.Info("Company not found", zap.String("company_name", name))
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "Company not found",
		})
	}
	if err != nil {
		log.Error("Failed to get company history",
			zap.String("company_name", name),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Error getting company history: " + err.Error(),
		})
	}

	log.Info("Company history retrieved",
		zap.String("company_name", company.Name),
		zap.Int("calls", len(calls)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"company": company,
		"calls":   calls,
	})
}
