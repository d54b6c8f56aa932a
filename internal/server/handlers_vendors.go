package server

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/covera-app/covera/internal/common"
	"github.com/covera-app/covera/internal/services/contract"
	"github.com/covera-app/covera/internal/services/vendor"
)

type VendorHandler struct {
	svc       *vendor.Service
	contracts *contract.Service
	uploads   uploads
}

func (h *VendorHandler) HandleList(c echo.Context) error {
	vs, err := h.svc.List(c.Request().Context(), c.Param("org"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, vs)
}

func (h *VendorHandler) HandleGet(c echo.Context) error {
	v, err := h.svc.Get(c.Request().Context(), c.Param("org"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VendorHandler) HandleCreate(c echo.Context) error {
	var req vendor.Request
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Create(c.Request().Context(), c.Param("org"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *VendorHandler) HandleUpdate(c echo.Context) error {
	var req vendor.Request
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	v, err := h.svc.Update(c.Request().Context(), c.Param("org"), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, v)
}

func (h *VendorHandler) HandleDelete(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), c.Param("org"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleAttach records an uploaded certificate and auto-fills insurance
// fields from it. The response is 200 even when extraction failed; the
// outcome is reported under "extraction".
func (h *VendorHandler) HandleAttach(c echo.Context) error {
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

// HandleImport accepts a CSV either as the multipart "file" field or as the
// raw request body.
func (h *VendorHandler) HandleImport(c echo.Context) error {
	var r io.Reader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		up, err := h.uploads.read(c)
		if err != nil {
			return err
		}
		r = bytes.NewReader(up.Bytes)
	} else {
		r = http.MaxBytesReader(c.Response(), c.Request().Body, h.uploads.max)
	}
	res, err := h.svc.ImportCSV(c.Request().Context(), c.Param("org"), r)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

type seedResponse struct {
	Vendors   int `json:"vendors"`
	Contracts int `json:"contracts"`
}

// HandleSeed fills the organization with demo vendors and contracts.
func (h *VendorHandler) HandleSeed(c echo.Context) error {
	ctx := c.Request().Context()
	org := c.Param("org")
	vs, err := h.svc.SeedDemo(ctx, org)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	cs, err := h.contracts.SeedDemo(ctx, org, ids)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, seedResponse{Vendors: len(vs), Contracts: len(cs)})
}

// bindJSON decodes the body, reporting malformed JSON as invalid input.
func bindJSON(c echo.Context, dst any) error {
	if err := (&echo.DefaultBinder{}).BindBody(c, dst); err != nil {
		return common.InvalidInput("invalid JSON body")
	}
	return nil
}
