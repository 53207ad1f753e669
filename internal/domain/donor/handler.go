package donor

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

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
	api.POST("/donors/register", h.Register)
	api.POST("/donors/login", h.Login)
	api.POST("/donors/forgot-password", h.ForgotPassword)
	api.GET("/donors/search", h.Search)

	me := api.Group("/donors/me", auth.RequireRole(auth.RoleDonor))
	me.GET("", h.GetProfile)
	me.PUT("", h.UpdateProfile)
	me.POST("/password", h.ChangePassword)

	admin := api.Group("/admin/donors", auth.RequireRole(auth.RoleAdmin))
	admin.GET("", h.AdminList)
	admin.GET("/export", h.AdminExport)
	admin.POST("/bulk-delete", h.AdminBulkDelete)
	admin.GET("/:id", h.AdminGet)
	admin.PUT("/:id", h.AdminUpdate)
	admin.DELETE("/:id", h.AdminDelete)
}

type registerRequest struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"date_of_birth"`
	PhoneNumber string `json:"phone_number"`
	BloodGroup  string `json:"blood_group"`
	Address     string `json:"address"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}

	d, err := h.svc.Register(c.Request().Context(), RegisterInput{
		FullName:    req.FullName,
		Email:       req.Email,
		Password:    req.Password,
		DateOfBirth: dob,
		PhoneNumber: req.PhoneNumber,
		BloodGroup:  req.BloodGroup,
		Address:     req.Address,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Donor *Donor `json:"donor"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, d, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, loginResponse{Token: token, Donor: d})
}

type forgotPasswordRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Email, req.PhoneNumber, req.NewPassword); err != nil {
		return httpError(err)
	}
	// Same response whether or not an account matched.
	return c.JSON(http.StatusOK, map[string]string{
		"message": "if the details match an account, the password has been reset",
	})
}

func (h *Handler) Search(c echo.Context) error {
	pg := pagination.FromContext(c)

	var exclude *uuid.UUID
	if actorID := auth.ActorIDFromContext(c.Request().Context()); actorID != "" {
		if id, err := uuid.Parse(actorID); err == nil {
			exclude = &id
		}
	}

	results, total, err := h.svc.Search(c.Request().Context(),
		c.QueryParam("blood_group"), c.QueryParam("address"), exclude, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(results, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetProfile(c echo.Context) error {
	id, err := actorUUID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetProfile(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

type updateProfileRequest struct {
	FullName    string `json:"full_name"`
	DateOfBirth string `json:"date_of_birth"`
	PhoneNumber string `json:"phone_number"`
	BloodGroup  string `json:"blood_group"`
	Address     string `json:"address"`
	Status      string `json:"status"`
}

func (r updateProfileRequest) toInput() (UpdateProfileInput, error) {
	dob, err := parseDate(r.DateOfBirth)
	if err != nil {
		return UpdateProfileInput{}, err
	}
	return UpdateProfileInput{
		FullName:    r.FullName,
		DateOfBirth: dob,
		PhoneNumber: r.PhoneNumber,
		BloodGroup:  r.BloodGroup,
		Address:     r.Address,
		Status:      r.Status,
	}, nil
}

func (h *Handler) UpdateProfile(c echo.Context) error {
	id, err := actorUUID(c)
	if err != nil {
		return err
	}
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}
	d, err := h.svc.UpdateProfile(c.Request().Context(), id, in)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *Handler) ChangePassword(c echo.Context) error {
	id, err := actorUUID(c)
	if err != nil {
		return err
	}
	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ChangePassword(c.Request().Context(), id, req.CurrentPassword, req.NewPassword); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// -- admin --

func (h *Handler) AdminList(c echo.Context) error {
	pg := pagination.FromContext(c)
	f := AdminFilter{
		Search:     c.QueryParam("search"),
		BloodGroup: c.QueryParam("blood_group"),
		Status:     c.QueryParam("status"),
	}
	items, total, err := h.svc.AdminList(c.Request().Context(), f, pg.Limit, pg.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) AdminGet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	d, err := h.svc.AdminGet(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

type adminUpdateRequest struct {
	updateProfileRequest
	NewPassword string `json:"new_password"`
}

func (h *Handler) AdminUpdate(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req adminUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	in, err := req.toInput()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "date_of_birth must be YYYY-MM-DD")
	}
	d, err := h.svc.AdminUpdate(c.Request().Context(), id, AdminUpdateInput{
		UpdateProfileInput: in,
		NewPassword:        req.NewPassword,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
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

	f := AdminFilter{
		Search:     c.QueryParam("search"),
		BloodGroup: c.QueryParam("blood_group"),
		Status:     c.QueryParam("status"),
	}
	header, rows, err := h.svc.ExportRows(c.Request().Context(), f)
	if err != nil {
		return httpError(err)
	}

	filename := export.Filename("donors", format, time.Now())
	c.Response().Header().Set(echo.HeaderContentType, export.ContentType(format))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().WriteHeader(http.StatusOK)

	if format == export.FormatExcel {
		return export.WriteExcel(c.Response(), header, rows)
	}
	return export.WriteCSV(c.Response(), header, rows)
}

// -- helpers --

func actorUUID(c echo.Context) (uuid.UUID, error) {
	actorID := auth.ActorIDFromContext(c.Request().Context())
	id, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "missing actor identity")
	}
	return id, nil
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "donor not found")
	case errors.Is(err, ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, ErrEmailTaken):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrInvalid):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
