package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/export"
	"github.com/covera-app/covera/internal/services/report"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *report.Service
	exports *export.Service
}

func (h *ReportHandler) HandleSummary(c echo.Context) error {
	sum, err := h.reports.Summary(c.Request().Context(), c.Param("org"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *ReportHandler) HandleAlerts(c echo.Context) error {
	alerts, err := h.reports.Alerts(c.Request().Context(), c.Param("org"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *ReportHandler) HandleXLSX(c echo.Context) error {
	b, err := h.exports.ExportXLSX(c.Request().Context(), c.Param("org"))
	if err != nil {
		return err
	}
	setAttachment(c, c.Param("org"), "xlsx")
	return c.Blob(http.StatusOK, mimeXLSX, b)
}

func (h *ReportHandler) HandleVendorsCSV(c echo.Context) error {
	b, err := h.exports.ExportVendorsCSV(c.Request().Context(), c.Param("org"))
	if err != nil {
		return err
	}
	setAttachment(c, c.Param("org")+"-vendors", "csv")
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", b)
}

func setAttachment(c echo.Context, base, ext string) {
	name := fmt.Sprintf("covera-%s-%s.%s", base, time.Now().UTC().Format("20060102"), ext)
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
}
