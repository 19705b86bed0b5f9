package cart

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/jwtx"
	cs "github.com/Aashutosh1201/rentall-web-sub000/service/cart"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cs.Service
	V   *validator.Validate
	Log *slog.Logger
}

// errJSON is the structured cart error contract: callers react to code
// and hint programmatically.
func errJSON(c echo.Context, status int, code, message, hint string) error {
	return c.JSON(status, echo.Map{
		"success": false,
		"code":    code,
		"message": message,
		"hint":    hint,
	})
}

func conflictJSON(c echo.Context, ce *cs.ConflictError) error {
	first := ce.Items[0].Conflict
	return c.JSON(http.StatusConflict, echo.Map{
		"success":   false,
		"code":      string(cs.ErrConflict),
		"message":   "requested dates are no longer available",
		"hint":      "available from " + first.AvailableFrom.Format("2006-01-02"),
		"conflicts": ce.Items,
	})
}

func (h *Controller) fail(c echo.Context, op string, err error) error {
	if ce, ok := asConflict(err); ok {
		return conflictJSON(c, ce)
	}
	switch cs.Code(err) {
	case cs.ErrInvalidDateRange:
		return errJSON(c, http.StatusBadRequest, string(cs.ErrInvalidDateRange), "start date must be before end date", "")
	case cs.ErrDuplicateItem:
		return errJSON(c, http.StatusBadRequest, string(cs.ErrDuplicateItem), "item is already in your cart", "update or remove the existing line instead")
	case cs.ErrItemNotFound:
		return errJSON(c, http.StatusNotFound, string(cs.ErrItemNotFound), "item not found", "")
	case cs.ErrNotFound:
		return errJSON(c, http.StatusNotFound, string(cs.ErrNotFound), "cart item not found", "")
	case cs.ErrCartEmpty:
		return errJSON(c, http.StatusBadRequest, string(cs.ErrCartEmpty), "cart is empty", "")
	default:
		h.Log.Error("cart "+op, "err", err)
		return errJSON(c, http.StatusInternalServerError, "INTERNAL", "internal error", "")
	}
}

func asConflict(err error) (*cs.ConflictError, bool) {
	ce, ok := err.(*cs.ConflictError)
	return ce, ok
}

// POST /v1/cart/items
func (h *Controller) Add(c echo.Context) error {
	var req AddItemReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "BAD_JSON", "invalid JSON", "")
	}
	if err := h.V.Struct(req); err != nil {
		return errJSON(c, http.StatusBadRequest, "VALIDATION", "validation error", err.Error())
	}
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", "")
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	cart, err := h.Svc.Add(c.Request().Context(), renterID, cs.AddInput{
		ItemID:    req.ItemID,
		Quantity:  req.Quantity,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return h.fail(c, "add", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": cart})
}

// PATCH /v1/cart/items/:itemId
func (h *Controller) Update(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || itemID <= 0 {
		return errJSON(c, http.StatusBadRequest, "BAD_PARAM", "invalid item id", "")
	}
	var req UpdateItemReq
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "BAD_JSON", "invalid JSON", "")
	}
	if err := h.V.Struct(req); err != nil {
		return errJSON(c, http.StatusBadRequest, "VALIDATION", "validation error", err.Error())
	}
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", "")
	}

	in := cs.UpdateInput{Quantity: req.Quantity}
	if req.StartDate != nil {
		d, _ := time.Parse("2006-01-02", *req.StartDate)
		in.StartDate = &d
	}
	if req.EndDate != nil {
		d, _ := time.Parse("2006-01-02", *req.EndDate)
		in.EndDate = &d
	}

	cart, err := h.Svc.Update(c.Request().Context(), renterID, itemID, in)
	if err != nil {
		return h.fail(c, "update", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cart})
}

// DELETE /v1/cart/items/:itemId
func (h *Controller) Remove(c echo.Context) error {
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || itemID <= 0 {
		return errJSON(c, http.StatusBadRequest, "BAD_PARAM", "invalid item id", "")
	}
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", "")
	}

	cart, err := h.Svc.Remove(c.Request().Context(), renterID, itemID)
	if err != nil {
		return h.fail(c, "remove", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cart})
}

// GET /v1/cart
func (h *Controller) Get(c echo.Context) error {
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", "")
	}

	cart, err := h.Svc.Get(c.Request().Context(), renterID)
	if err != nil {
		return h.fail(c, "get", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": cart})
}

// DELETE /v1/cart
func (h *Controller) Clear(c echo.Context) error {
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return errJSON(c, http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized", "")
	}

	if err := h.Svc.Clear(c.Request().Context(), renterID); err != nil {
		return h.fail(c, "clear", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
