package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/config"
)

// ErrMissingConfig is returned by Validate when a required setting is empty.
var ErrMissingConfig = errors.New("missing required configuration")

// Config holds the runtime configuration for the client secret custom resource.
type Config struct {
	ServiceName string // e.g. "client-secret-resource"
	Env         string // "dev" or "prod"
	LogLevel    string // "debug", "info", etc.
	AWSRegion   string // for AWS SDK clients

	// Client registration to describe. Both are required.
	UserPoolID string
	ClientID   string

	NoEcho bool // mask the returned secret in CloudFormation output

	// Optional Secrets Manager secret that receives a copy of the client secret.
	SecretMirrorName string

	// Optional Prometheus Pushgateway; Lambda has nothing to scrape.
	PushgatewayURL string

	ResponseTimeout  time.Duration // timeout for the PUT to the pre-signed response URL
	ResponseRetryMax int           // retries on 5xx/transport errors for that PUT
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:      pkgconfig.GetEnv("SERVICE_NAME", "client-secret-resource"),
		Env:              pkgconfig.GetEnv("ENV", "prod"),
		LogLevel:         pkgconfig.GetEnv("LOG_LEVEL", "info"),
		AWSRegion:        pkgconfig.GetEnv("AWS_REGION", "us-east-1"),
		UserPoolID:       pkgconfig.GetEnv("USER_POOL_ID", ""),
		ClientID:         pkgconfig.GetEnv("CLIENT_POOL_ID", ""),
		NoEcho:           pkgconfig.GetEnvBool("NO_ECHO", true),
		SecretMirrorName: pkgconfig.GetEnv("SECRET_MIRROR_NAME", ""),
		PushgatewayURL:   pkgconfig.GetEnv("PUSHGATEWAY_URL", ""),
		ResponseTimeout:  pkgconfig.GetEnvDuration("RESPONSE_TIMEOUT", 10*time.Second),
		ResponseRetryMax: pkgconfig.GetEnvInt("RESPONSE_RETRY_MAX", 0),
	}
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.UserPoolID == "" {
		errs = append(errs, fmt.Errorf("%w: USER_POOL_ID", ErrMissingConfig))
	}
	if c.ClientID == "" {
		errs = append(errs, fmt.Errorf("%w: CLIENT_POOL_ID", ErrMissingConfig))
	}
	if c.ResponseTimeout <= 0 {
		errs = append(errs, fmt.Errorf("RESPONSE_TIMEOUT must be positive, got %s", c.ResponseTimeout))
	}
	if c.ResponseRetryMax < 0 {
		errs = append(errs, fmt.Errorf("RESPONSE_RETRY_MAX must not be negative, got %d", c.ResponseRetryMax))
	}
	if c.PushgatewayURL != "" {
		if u, err := url.Parse(c.PushgatewayURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("PUSHGATEWAY_URL is not an absolute URL: %q", c.PushgatewayURL))
		}
	}
	return errors.Join(errs...)
}
