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

var svc *crm.Service

// Init wires the CRM service into the handler package. Called once from the
// composition root before routes are registered.
func Init(s *crm.Service) {
	svc = s
}

// CallLogRequest defines the structure for log-call requests
type CallLogRequest struct {
	CompanyName  string `json:"company_name"`
	ContactName  string `json:"contact_name"`
	Notes        string `json:"notes"`
	FollowUpDate string `json:"follow_up_date"`
	OfferMade    string `json:"offer_made"`
}

// LogCall records a new sales call, creating the company row on first contact
func LogCall(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCrmOperation("log_call")

	var req CallLogRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "Invalid request data",
		})
	}

	if req.CompanyName == "" {
		log.Warn("Missing company_name in log-call request")
		return c.JSON(http.StatusBadRequest, echo.Map{
			"success": false,
			"message": "company_name is required",
		})
	}

	log.Info("Logging call",
		zap.String("company_name", req.CompanyName),
		zap.String("contact_name", req.ContactName))

	// Track store operations
	defer prometheus.TrackStoreOperation("log_call")(time.Now())

	id, err := svc.LogCall(c.Request().Context(), crm.CallInput{
		CompanyName:  req.CompanyName,
		ContactName:  req.ContactName,
		Notes:        req.Notes,
		FollowUpDate: req.FollowUpDate,
		OfferMade:    req.OfferMade,
	})
	if err != nil {
		log.Error("Failed to log call",
			zap.String("company_name", req.CompanyName),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Error logging call: " + err.Error(),
		})
	}

	log.Info("Call logged successfully",
		zap.String("call_id", id),
		zap.String("company_name", req.CompanyName))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Call logged successfully",
		"id":      id,
	})
}

// SearchCalls filters calls by a keyword in notes, optionally narrowed to one company
func SearchCalls(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCrmOperation("search_calls")

	keyword := c.QueryParam("keyword")
	companyFilter := c.QueryParam("company_name")

	log.Info("Searching calls",
		zap.String("keyword", keyword),
		zap.String("company_name", companyFilter))

	defer prometheus.TrackStoreOperation("search_calls")(time.Now())

	calls, err := svc.Search(c.Request().Context(), keyword, companyFilter)
	if err != nil {
		log.Error("Failed to search calls", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Error searching calls: " + err.Error(),
		})
	}

	log.Info("Search completed", zap.Int("matches", len(calls)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"matches": len(calls),
		"calls":   calls,
	})
}

// GetFollowUps lists the open follow-ups due today or earlier
func GetFollowUps(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCrmOperation("get_follow_ups")

	defer prometheus.TrackStoreOperation("get_follow_ups")(time.Now())

	followUps, err := svc.FollowUps(c.Request().Context(), c.QueryParam("as_of"))
	if err != nil {
		log.Error("Failed to retrieve follow-ups", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Error getting follow-ups: " + err.Error(),
		})
	}

	prometheus.UpdateFollowUpsDue(len(followUps))

	log.Info("Follow-ups retrieved", zap.Int("count", len(followUps)))
	return c.JSON(http.StatusOK, echo.Map{
		"success":    true,
		"count":      len(followUps),
		"follow_ups": followUps,
	})
}

// CompleteFollowUp marks a follow-up as done by call id
func CompleteFollowUp(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RecordCrmOperation("complete_follow_up")

	id := c.Param("id")
	log.Info("Completing follow-up", zap.String("call_id", id))

	defer prometheus.TrackStoreOperation("complete_follow_up")(time.Now())

	err := svc.CompleteFollowUp(c.Request().Context(), id)
	if errors.Is(err, crm.ErrFollowUpNotFound) {
		// Absent record is a business failure, not an HTTP error
		log.Warn("Follow-up not found", zap.String("call_id", id))
		return c.JSON(http.StatusOK, echo.Map{
			"success": false,
			"message": "Follow-up not found",
		})
	}
	if err != nil {
		log.Error("Failed to complete follow-up",
			zap.String("call_id", id),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"success": false,
			"message": "Error completing follow-up: " + err.Error(),
		})
	}

	log.Info("Follow-up marked as completed", zap.String("call_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Follow-up marked as completed",
	})
}
