package config

import (
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

func Load() App {
	_ = godotenv.Load()

	cfg := App{
		Port:                 getenv("APP_PORT", "8080"),
		DatabaseURL:          must("DATABASE_URL"),
		RedisAddr:            getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getint("REDIS_DB", 0),
		JWTSecret:            getenv("JWT_SECRET", "local_dev_secret"),
		GatewayBaseURL:       getenv("GATEWAY_BASE_URL", "https://api.paygate.test"),
		GatewayAPIKey:        os.Getenv("GATEWAY_API_KEY"),
		GatewayCallbackToken: os.Getenv("GATEWAY_CALLBACK_TOKEN"),
		MinChargeCents:       int64(getint("GATEWAY_MIN_CHARGE_CENTS", 100)),
		PaymentReturnURL:     os.Getenv("PAYMENT_RETURN_URL"),
		NotifyURL:            os.Getenv("NOTIFY_URL"),
		Env:                  getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
