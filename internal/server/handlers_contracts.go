package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/services/contract"
)

type ContractHandler struct {
	svc     *contract.Service
	uploads uploads
}

// HandleList lists contracts, optionally only those of ?vendorId=.
func (h *ContractHandler) HandleList(c echo.Context) error {
	ctx := c.Request().Context()
	if vid := strings.TrimSpace(c.QueryParam("vendorId")); vid != "" {
		cs, err := h.svc.ListByVendor(ctx, c.Param("org"), vid)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, cs)
	}
	cs, err := h.svc.List(ctx, c.Param("org"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cs)
}

func (h *ContractHandler) HandleGet(c echo.Context) error {
	ct, err := h.svc.Get(c.Request().Context(), c.Param("org"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *ContractHandler) HandleCreate(c echo.Context) error {
	var req contract.Request
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ct, err := h.svc.Create(c.Request().Context(), c.Param("org"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ct)
}

func (h *ContractHandler) HandleUpdate(c echo.Context) error {
	var req contract.Request
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	ct, err := h.svc.Update(c.Request().Context(), c.Param("org"), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *ContractHandler) HandleDelete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("org"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ContractHandler) HandleAttach(c echo.Context) error {
	up, err := h.uploads.read(c)
	if err != nil {
		return err
	}
	res, err := h.svc.AttachDocument(c.Request().Context(), c.Param("org"), c.Param("id"), up)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
