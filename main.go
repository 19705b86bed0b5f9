// Package main rentall booking API.
//
// @title           Rentall Booking API
// @version         1.0
// @description     Booking core for the rentall marketplace: cart staging, checkout, payment reconciliation, reservations.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/Aashutosh1201/rentall-web-sub000/app/echoServer"
	cartctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/cart"
	checkoutctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/checkout"
	paymentctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/payment"
	reservationctrl "github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/controller/reservation"
	"github.com/Aashutosh1201/rentall-web-sub000/app/echoServer/validation"
	"github.com/Aashutosh1201/rentall-web-sub000/config"
	cartrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/cart"
	gatewayrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/gateway"
	itemrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/item"
	ledgerrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/ledger"
	"github.com/Aashutosh1201/rentall-web-sub000/repository/lockstore"
	notifierrepo "github.com/Aashutosh1201/rentall-web-sub000/repository/notifier"
	availsvc "github.com/Aashutosh1201/rentall-web-sub000/service/availability"
	cartsvc "github.com/Aashutosh1201/rentall-web-sub000/service/cart"
	checkoutsvc "github.com/Aashutosh1201/rentall-web-sub000/service/checkout"
	reconcilesvc "github.com/Aashutosh1201/rentall-web-sub000/service/reconcile"
	reservationsvc "github.com/Aashutosh1201/rentall-web-sub000/service/reservation"
	"github.com/Aashutosh1201/rentall-web-sub000/util/database"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// redis (reconcile mutex)
	rdb := lockstore.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err := lockstore.Ping(ctx, rdb); err != nil {
		log.Warn("redis unreachable, reconcile falls back to db constraints", "err", err)
	}
	defer rdb.Close()

	// repos
	lr := ledgerrepo.New(db)
	cr := cartrepo.New(db)
	ir := itemrepo.New(db)
	gw := gatewayrepo.NewHTTP(cfg.GatewayBaseURL, cfg.GatewayAPIKey, cfg.GatewayCallbackToken)
	nr := notifierrepo.NewHTTP(cfg.NotifyURL)
	locks := lockstore.New(rdb)

	// services
	avs := availsvc.New(lr)
	cs := cartsvc.New(cr, ir, avs)
	cks := checkoutsvc.New(cs, ir, avs, gw, checkoutsvc.Config{
		MinChargeCents: cfg.MinChargeCents,
		ReturnURL:      cfg.PaymentReturnURL,
	})
	rcs := reconcilesvc.New(db, lr, gw, avs, locks)
	rss := reservationsvc.New(db, lr, nr)

	// controllers
	v := validator.New()
	cartC := &cartctrl.Controller{Svc: cs, V: v, Log: log}
	checkoutC := &checkoutctrl.Controller{Svc: cks, V: v, Log: log}
	paymentC := &paymentctrl.Controller{Svc: rcs, Gw: gw, Log: log}
	reservationC := &reservationctrl.Controller{Svc: rss, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Cart:        cartC,
		Checkout:    checkoutC,
		Payment:     paymentC,
		Reservation: reservationC,

		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	slog.Info("starting server", "port", port, "env", cfg.Env)

	e.Logger.Fatal(e.Start(":" + port))
}
