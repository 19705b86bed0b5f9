package checkout

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/jwtx"
	cartsvc "github.com/Aashutosh1201/rentall-web-sub000/service/cart"
	cks "github.com/Aashutosh1201/rentall-web-sub000/service/checkout"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc cks.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/checkout
func (h *Controller) Initiate(c echo.Context) error {
	var req CheckoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "code": "BAD_JSON", "message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "code": "VALIDATION", "message": "validation error", "hint": err.Error()})
	}
	renterID, err := jwtx.RenterIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "code": "UNAUTHORIZED", "message": "unauthorized"})
	}

	in := cks.Input{FromCart: req.FromCart, ReturnURL: req.ReturnURL}
	if !req.FromCart {
		start, serr := time.Parse("2006-01-02", req.StartDate)
		end, eerr := time.Parse("2006-01-02", req.EndDate)
		if serr != nil || eerr != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "code": "VALIDATION", "message": "start_date and end_date are required for a direct booking"})
		}
		in.Direct = &cks.DirectBooking{
			ItemID:    req.ItemID,
			Quantity:  req.Quantity,
			StartDate: start,
			EndDate:   end,
		}
	}

	out, err := h.Svc.Initiate(c.Request().Context(), renterID, in)
	if err != nil {
		if ce, ok := err.(*cartsvc.ConflictError); ok {
			return c.JSON(http.StatusConflict, echo.Map{
				"success":   false,
				"code":      string(cartsvc.ErrConflict),
				"message":   "requested dates are no longer available",
				"conflicts": ce.Items,
			})
		}
		switch {
		case cks.Code(err) == cks.ErrInvalidDateRange:
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "code": string(cks.ErrInvalidDateRange), "message": "start date must be before end date"})
		case cks.Code(err) == cks.ErrInvalidAmount:
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "code": string(cks.ErrInvalidAmount), "message": "total is below the gateway minimum"})
		case cks.Code(err) == cks.ErrItemNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"success": false, "code": string(cks.ErrItemNotFound), "message": "item not found"})
		case cks.Code(err) == cks.ErrGatewayUnavailable:
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "code": string(cks.ErrGatewayUnavailable), "message": "payment gateway unreachable, retry later"})
		case cks.Code(err) == cks.ErrGatewayError:
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "code": string(cks.ErrGatewayError), "message": "payment gateway rejected the request"})
		case cartsvc.Code(err) == cartsvc.ErrCartEmpty:
			return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "code": string(cartsvc.ErrCartEmpty), "message": "cart is empty"})
		default:
			h.Log.Error("checkout initiate", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "code": "INTERNAL", "message": "internal error"})
		}
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": out})
}
