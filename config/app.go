package config

type App struct {
	Port                 string `env:"APP_PORT" default:"8080"`
	DatabaseURL          string `env:"DATABASE_URL,required"`
	RedisAddr            string `env:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" default:"0"`
	JWTSecret            string `env:"JWT_SECRET,required"`
	GatewayBaseURL       string `env:"GATEWAY_BASE_URL"`
	GatewayAPIKey        string `env:"GATEWAY_API_KEY"`
	GatewayCallbackToken string `env:"GATEWAY_CALLBACK_TOKEN"`
	MinChargeCents       int64  `env:"GATEWAY_MIN_CHARGE_CENTS" default:"100"`
	PaymentReturnURL     string `env:"PAYMENT_RETURN_URL"`
	NotifyURL            string `env:"NOTIFY_URL"`
	Env                  string `env:"APP_ENV" default:"dev"`
}
