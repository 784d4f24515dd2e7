package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/learnflow-api/internal/errors"
	"github.com/yukikurage/learnflow-api/internal/services"
)

// AnalyticsHandler serves the dashboard analytics and report downloads.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
	reportService    *services.ReportService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService, reportService *services.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
		reportService:    reportService,
	}
}

// Summary returns the dashboard summary counters
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	summary, err := h.analyticsService.Summary(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// Overview returns the summary with breakdowns, the daily study series and trends
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	overview, err := h.analyticsService.Overview(userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	c.JSON(http.StatusOK, overview)
}

// Report renders a report for ?period=&type=&format= as a download
func (h *AnalyticsHandler) Report(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	doc, err := h.reportService.Generate(services.ReportInput{
		UserID: userID,
		Period: c.Query("period"),
		Type:   c.Query("type"),
		Format: c.Query("format"),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	sendDocument(c, doc)
}

// Export dumps the user's data for ?type=&format= as a download
func (h *AnalyticsHandler) Export(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	doc, err := h.reportService.Export(services.ExportInput{
		UserID: userID,
		Type:   c.Query("type"),
		Format: c.Query("format"),
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	sendDocument(c, doc)
}

func sendDocument(c *gin.Context, doc *services.Document) {
	c.Header("Content-Disposition", "attachment; filename="+strconv.Quote(doc.FileName))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
