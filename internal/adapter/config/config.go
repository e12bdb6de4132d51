package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database *Database
	HTTP     *HTTP
	Gateway  *Gateway
	Token    *Token
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

// TokenSecretDevDefault keeps local runs working without configuration.
// Startup refuses it in PROD mode.
const TokenSecretDevDefault = "ordercore-dev-secret"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Gateway struct {
	URL       string `env:"GATEWAY_URL"`
	KeyID     string `env:"GATEWAY_KEY_ID"`
	KeySecret string `env:"GATEWAY_KEY_SECRET"`
}

type Token struct {
	Secret string `env:"TOKEN_SECRET"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var gateway Gateway
	var token Token
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&gateway.URL, "g", `https://api.razorpay.com`, "Payment gateway base URL")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	token.Secret = TokenSecretDevDefault

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&gateway)
	if err != nil {
		return nil, fmt.Errorf("error parsing gateway config: %w", err)
	}
	err = env.Parse(&token)
	if err != nil {
		return nil, fmt.Errorf("error parsing token config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	if app.Mode == AppModeProduction && token.Secret == TokenSecretDevDefault {
		return nil, fmt.Errorf("TOKEN_SECRET must be set in %s mode", AppModeProduction)
	}

	config := Config{
		Database: &db,
		HTTP:     &http,
		Gateway:  &gateway,
		Token:    &token,
		App:      &app,
	}

	return &config, nil
}
