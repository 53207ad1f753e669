package request

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/bloodlink/bloodlink/internal/domain/donor"
	"github.com/bloodlink/bloodlink/internal/platform/auth"
	"github.com/bloodlink/bloodlink/internal/platform/export"
	"github.com/bloodlink/bloodlink/pkg/pagination"
)

const dateLayout = "2006-01-02"

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	donorGroup := api.Group("/requests", auth.RequireRole(auth.RoleDonor))
	donorGroup.POST("", h.Create)
	donorGroup.GET("/incoming", h.ListIncoming)
	donorGroup.GET("/outgoing", h.ListOutgoing)
	donorGroup.POST("/:id/status", h.UpdateStatus)
	donorGroup.DELETE("/:id", h.Withdraw)

	admin := api.Group("/admin/requests", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.AdminList)
	admin.GET("/export", h.AdminExport)
	admin.POST("/bulk-delete", h.AdminBulkDelete)
	admin.DELETE("/:id", h.AdminDelete)
}

type createRequest struct {
	DonorID uuid.UUID `json:"donor_id"`
	Message string    `json:"message"`
}

func (h *Handler) Create(c echo.Context) error {
	requesterID, err := actorUUID(c)
	if err != nil {
		return err
	}
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dr, err := h.svc.Create(c.Request().Context(), requesterID, req.DonorID, req.Message)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, dr)
}

func (h *Handler) ListIncoming(c echo.Context) error {
	donorID, err := actorUUID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListIncoming(c.Request().Context(), donorID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListOutgoing(c echo.Context) error {
	requesterID, err := actorUUID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOutgoing(c.Request().Context(), requesterID, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type updateStatusRequest struct {
	NewStatus  string `json:"new_status"`
	ExpiryDate string `json:"expiry_date"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	donorID, err := actorUUID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var donationDate *time.Time
	if req.ExpiryDate != "" {
		day, err := time.Parse(dateLayout, req.ExpiryDate)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "expiry_date must be YYYY-MM-DD")
		}
		donationDate = &day
	}

	dr, err := h.svc.UpdateStatus(c.Request().Context(), id, donorID, req.NewStatus, donationDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, dr)
}

func (h *Handler) Withdraw(c echo.Context) error {
	requesterID, err := actorUUID(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.Withdraw(c.Request().Context(), id, requesterID); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- admin --

func (h *Handler) AdminList(c echo.Context) error {
	pg := pagination.FromContext(c)
	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	items, total, err := h.svc.AdminList(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AdminDelete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.AdminDelete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

type bulkDeleteRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) AdminBulkDelete(c echo.Context) error {
	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	deleted, err := h.svc.AdminBulkDelete(c.Request().Context(), req.IDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) AdminExport(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = export.FormatCSV
	}
	if !export.ValidFormat(format) {
		return echo.NewHTTPError(http.StatusBadRequest, "format must be csv or excel")
	}

	f, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	header, rows, err := h.svc.ExportRows(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}

	filename := export.Filename("donation-requests", format, time.Now())
	c.Response().Header().Set(echo.HeaderContentType, export.ContentType(format))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().WriteHeader(http.StatusOK)

	if format == export.FormatExcel {
		return export.WriteExcel(c.Response(), header, rows)
	}
	return export.WriteCSV(c.Response(), header, rows)
}

// -- helpers --

func filterFromQuery(c echo.Context) (Filter, error) {
	f := Filter{
		Search: c.QueryParam("search"),
		Status: c.QueryParam("status"),
	}
	if s := c.QueryParam("date_start"); s != "" {
		day, err := time.Parse(dateLayout, s)
		if err != nil {
			return Filter{}, echo.NewHTTPError(http.StatusBadRequest, "date_start must be YYYY-MM-DD")
		}
		f.DateStart = &day
	}
	if s := c.QueryParam("date_end"); s != "" {
		day, err := time.Parse(dateLayout, s)
		if err != nil {
			return Filter{}, echo.NewHTTPError(http.StatusBadRequest, "date_end must be YYYY-MM-DD")
		}
		f.DateEnd = &day
	}
	return f, nil
}

func actorUUID(c echo.Context) (uuid.UUID, error) {
	actorID := auth.ActorIDFromContext(c.Request().Context())
	id, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing actor identity")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "donation request not found")
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrNotRequester):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNotPending):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, donor.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
