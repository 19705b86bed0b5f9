package reservation

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/jwtx"
	"github.com/Aashutosh1201/rentall-web-sub000/model"
	rsv "github.com/Aashutosh1201/rentall-web-sub000/service/reservation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rsv.Service
	V   *validator.Validate
	Log *slog.Logger
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	switch rsv.Code(err) {
	case rsv.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "reservation not found"})
	case rsv.ErrNotOwner:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rsv.ErrIllegalTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "illegal status transition"})
	default:
		h.Log.Error("reservation "+op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// GET /v1/reservations?limit=&offset=
func (h *Controller) List(c echo.Context) error {
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))

	rows, err := h.Svc.List(c.Request().Context(), renterID, limit, offset)
	if err != nil {
		return h.fail(c, "list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows, "limit": limit, "offset": offset})
}

// GET /v1/reservations/:id
func (h *Controller) Get(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	row, err := h.Svc.Get(c.Request().Context(), renterID, id)
	if err != nil {
		return h.fail(c, "get", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": row})
}

// PATCH /v1/reservations/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	row, err := h.Svc.UpdateStatus(c.Request().Context(), renterID, id, model.ReservationStatus(req.Status))
	if err != nil {
		return h.fail(c, "update status", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": row})
}
