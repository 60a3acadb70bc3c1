package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const configPathEnv = "CHECKOUT_CONFIG_PATH"

type CheckoutConfig struct {
	Env          string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer   `yaml:"http_server"`
	GRPCServer   `yaml:"grpc_server"`
	OrderDB      `yaml:"order_db"`
	LogConfig    `yaml:"log_config"`
	KafkaService `yaml:"kafka_service"`
	NowPayments  `yaml:"nowpayments"`
	ExchangeRate `yaml:"exchange_rate"`
	SMTP         `yaml:"smtp"`
	Telegram     `yaml:"telegram"`
	Admin        `yaml:"admin"`
	Fulfillment  `yaml:"fulfillment"`
	Checkout     `yaml:"checkout"`
}

type HTTPServer struct {
	Host            string        `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port            string        `yaml:"port" env:"PORT" env-default:"3000"`
	BaseURL         string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
	MaxUploadBytes  int64         `yaml:"max_upload_bytes" env-default:"5242880"`
}

type GRPCServer struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

type OrderDB struct {
	// Driver is "postgres" or "memory".
	Driver         string `yaml:"driver" env:"ORDER_DB_DRIVER" env-default:"postgres"`
	Dsn            string `yaml:"dsn" env:"ORDER_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path" env:"ORDER_DB_MIGRATIONS_PATH" env-default:"migrations"`
}

type LogConfig struct {
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat string `yaml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	LogOutput string `yaml:"log_output" env:"LOG_OUTPUT" env-default:"stdout"`
}

type KafkaService struct {
	Enabled    bool   `yaml:"enabled" env:"KAFKA_ENABLED"`
	Host       string `yaml:"host" env:"KAFKA_HOST"`
	Port       string `yaml:"port" env:"KAFKA_PORT"`
	Topic      string `yaml:"topic" env-default:"order-events"`
	Username   string `yaml:"username" env:"KAFKA_USERNAME"`
	Password   string `yaml:"password" env:"KAFKA_PASSWORD"`
	Mechanism  string `yaml:"mechanism" env:"KAFKA_MECHANISM"`
	TLSEnabled bool   `yaml:"tls_enabled" env:"KAFKA_TLS_ENABLED"`
}

type NowPayments struct {
	BaseURL     string        `yaml:"base_url" env-default:"https://api.nowpayments.io/v1"`
	APIKey      string        `yaml:"api_key" env:"NOWPAYMENTS_API_KEY"`
	IPNSecret   string        `yaml:"ipn_secret" env:"NOWPAYMENTS_IPN_SECRET"`
	PayCurrency string        `yaml:"pay_currency" env-default:"usdttrc20"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
}

type ExchangeRate struct {
	URL             string        `yaml:"url" env-default:"https://api.exchangerate-api.com/v4/latest/USD"`
	FallbackURL     string        `yaml:"fallback_url" env-default:"https://open.er-api.com/v6/latest/USD"`
	Quote           string        `yaml:"quote" env-default:"ILS"`
	FallbackRate    string        `yaml:"fallback_rate" env-default:"3.7"`
	RefreshInterval time.Duration `yaml:"refresh_interval" env-default:"1h"`
	Timeout         time.Duration `yaml:"timeout" env-default:"5s"`
}

type SMTP struct {
	Host               string        `yaml:"host" env:"EMAIL_HOST" env-default:"127.0.0.1"`
	Port               int           `yaml:"port" env:"EMAIL_PORT" env-default:"1025"`
	Username           string        `yaml:"username" env:"EMAIL_USER"`
	Password           string        `yaml:"password" env:"EMAIL_PASS"`
	From               string        `yaml:"from" env:"EMAIL_FROM" env-default:"WOLF GAMING <no-reply@wolfgaming.shop>"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" env-default:"true"`
	Timeout            time.Duration `yaml:"timeout" env-default:"10s"`
}

type Telegram struct {
	BaseURL  string        `yaml:"base_url" env-default:"https://api.telegram.org"`
	BotToken string        `yaml:"bot_token" env:"TELEGRAM_BOT_TOKEN"`
	ChatIDs  []string      `yaml:"chat_ids" env:"TELEGRAM_CHAT_IDS" env-separator:","`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
}

type Admin struct {
	Token string `yaml:"token" env:"ADMIN_TOKEN"`
}

type Fulfillment struct {
	MinDelay                   time.Duration `yaml:"min_delay" env-default:"4m"`
	MaxDelay                   time.Duration `yaml:"max_delay" env-default:"8m"`
	RequirePaymentConfirmation bool          `yaml:"require_payment_confirmation" env:"REQUIRE_PAYMENT_CONFIRMATION"`
	DeliveryNodes              []string      `yaml:"delivery_nodes" env-default:"WOLF-NODE-TLV-01,WOLF-NODE-FRA-02,WOLF-NODE-AMS-03"`
	EmailTimeout               time.Duration `yaml:"email_timeout" env-default:"10s"`
}

type Checkout struct {
	DefaultProduct string `yaml:"default_product" env-default:"WOLF GAMING Credits"`
	MinAmountILS   string `yaml:"min_amount_ils" env-default:"100"`
	MinAmountUSD   string `yaml:"min_amount_usd" env-default:"31"`
}

// Load reads the YAML file at path, then applies environment overrides.
func Load(path string) (*CheckoutConfig, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	var cfg CheckoutConfig
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *CheckoutConfig {
	configPath := os.Getenv(configPathEnv)
	if configPath == "" {
		log.Fatalf("%s was not found\n", configPathEnv)
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	return cfg
}

func (c *CheckoutConfig) Validate() error {
	switch c.OrderDB.Driver {
	case "postgres":
		if c.OrderDB.Dsn == "" {
			return fmt.Errorf("order_db.dsn is required for the postgres driver")
		}
	case "memory":
	default:
		return fmt.Errorf("unknown order_db.driver %q", c.OrderDB.Driver)
	}
	if c.Fulfillment.MinDelay <= 0 || c.Fulfillment.MaxDelay < c.Fulfillment.MinDelay {
		return fmt.Errorf("fulfillment delay range [%s, %s] is invalid", c.Fulfillment.MinDelay, c.Fulfillment.MaxDelay)
	}
	if c.Admin.Token == "" {
		return fmt.Errorf("admin.token is required")
	}
	return nil
}
