package echoServer

import (
	"net/http"

	cartctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/cart"
	checkoutctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/checkout"
	paymentctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/payment"
	reservationctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/reservation"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Cart        *cartctrl.Controller
	Checkout    *checkoutctrl.Controller
	Payment     *paymentctrl.Controller
	Reservation *reservationctrl.Controller

	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public: the gateway calls back without our JWTs, and the renter's
	// browser lands on /payment/return from the hosted payment page.
	pub := e.Group("/v1")
	pub.POST("/payment/callback", c.Payment.HandleCallback)
	pub.GET("/payment/return", c.Payment.HandleReturn)

	// Authenticated: identity service issues the tokens, we only trust sub.
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(c.JWTSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims { return jwt.MapClaims{} },
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))

	// Cart staging
	auth.POST("/cart/items", c.Cart.Add)
	auth.PATCH("/cart/items/:itemId", c.Cart.Update)
	auth.DELETE("/cart/items/:itemId", c.Cart.Remove)
	auth.GET("/cart", c.Cart.Get)
	auth.DELETE("/cart", c.Cart.Clear)

	// Checkout
	auth.POST("/checkout", c.Checkout.Initiate)

	// Reservations
	auth.GET("/reservations", c.Reservation.List)
	auth.GET("/reservations/:id", c.Reservation.Get)
	auth.PATCH("/reservations/:id/status", c.Reservation.UpdateStatus)
}
