package payment

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	gatewayrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/gateway"
	rcs "github.com/Aashutosh1201/rentall-web-sub000/service/reconcile"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc rcs.Service
	Gw  gatewayrepo.Repo
	Log *slog.Logger
}

type callbackEvent struct {
	ExternalID string `json:"external_id"`
	Status     string `json:"status"`
}

// POST /v1/payment/callback
//
// The gateway retries callbacks; every path through here must be safe
// to repeat. 2xx acknowledges terminal outcomes so the gateway stops
// retrying; 5xx is reserved for states worth retrying.
func (h *Controller) HandleCallback(c echo.Context) error {
	sig := c.Request().Header.Get("X-Callback-Signature")
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}
	if err := h.Gw.VerifyCallbackSignature(sig, raw); err != nil {
		h.Log.Warn("payment callback signature rejected", "err", err)
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "bad signature"})
	}

	var ev callbackEvent
	if err := json.Unmarshal(raw, &ev); err != nil || ev.ExternalID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "bad callback json"})
	}

	res, err := h.Svc.Reconcile(c.Request().Context(), ev.ExternalID)
	if err != nil {
		var conflict *rcs.ConflictAfterPaymentError
		switch {
		case errors.As(err, &conflict):
			// Terminal: payment kept but no reservation. Needs the
			// compensation process, not a gateway retry.
			h.Log.Error("payment reconciled into conflict", "order_id", ev.ExternalID, "item_id", conflict.ItemID)
			return c.JSON(http.StatusOK, echo.Map{"message": "conflict recorded", "code": string(rcs.ErrConflictAfterPayment)})
		case rcs.Code(err) == rcs.ErrPaymentPending,
			rcs.Code(err) == rcs.ErrPaymentNotCompleted:
			return c.JSON(http.StatusOK, echo.Map{"message": "acknowledged", "code": string(rcs.Code(err))})
		case rcs.Code(err) == rcs.ErrInProgress,
			rcs.Code(err) == rcs.ErrGatewayUnavailable:
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "retry later"})
		default:
			h.Log.Error("payment callback error", "order_id", ev.ExternalID, "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "reconcile failed"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":         "ok",
		"created":         res.Created,
		"reservation_ids": res.ReservationIDs,
	})
}

// GET /v1/payment/return?order_id=...
//
// Redirect landing after the hosted payment page. The renter's browser
// may hit this any number of times; it re-queries rather than assumes.
func (h *Controller) HandleReturn(c echo.Context) error {
	poid := c.QueryParam("order_id")
	if poid == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "order_id is required"})
	}

	res, err := h.Svc.Reconcile(c.Request().Context(), poid)
	if err != nil {
		var conflict *rcs.ConflictAfterPaymentError
		switch {
		case errors.As(err, &conflict):
			return c.JSON(http.StatusConflict, echo.Map{
				"success":        false,
				"code":           string(rcs.ErrConflictAfterPayment),
				"message":        "payment received but the dates were taken in the meantime; support will follow up",
				"item_id":        conflict.ItemID,
				"available_from": conflict.Conflict.AvailableFrom.Format("2006-01-02"),
			})
		case rcs.Code(err) == rcs.ErrPaymentPending, rcs.Code(err) == rcs.ErrInProgress:
			return c.JSON(http.StatusAccepted, echo.Map{"success": false, "code": string(rcs.Code(err)), "message": "payment still settling, check again shortly"})
		case rcs.Code(err) == rcs.ErrPaymentNotCompleted:
			return c.JSON(http.StatusConflict, echo.Map{"success": false, "code": string(rcs.ErrPaymentNotCompleted), "message": "payment did not complete"})
		case rcs.Code(err) == rcs.ErrGatewayUnavailable:
			return c.JSON(http.StatusBadGateway, echo.Map{"success": false, "code": string(rcs.ErrGatewayUnavailable), "message": "gateway unreachable, retry later"})
		default:
			h.Log.Error("payment return error", "order_id", poid, "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "message": "internal error"})
		}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success":         true,
		"created":         res.Created,
		"reservation_ids": res.ReservationIDs,
	})
}
