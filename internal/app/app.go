// Package app assembles the client secret handler from configuration.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/cfnresponse"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/cognito"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/config"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/metrics"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/resource"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/secrets"
)

// Build validates cfg, creates the AWS clients once and returns a ready handler.
// function names the metrics group on the Pushgateway.
func Build(ctx context.Context, cfg *config.Config, sender cfnresponse.Sender, logger *zap.Logger, function string) (*resource.Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	awsCfg, err := secrets.LoadAWSConfig(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	opts := []resource.Option{
		resource.WithLogger(logger),
		resource.WithMetrics(m, metrics.NewPusher(cfg.PushgatewayURL, cfg.ServiceName, function, m.Registry)),
	}
	if cfg.SecretMirrorName != "" {
		opts = append(opts, resource.WithMirror(secrets.NewAWSProvider(awsCfg)))
	}

	h := resource.New(
		resource.Config{
			UserPoolID: cfg.UserPoolID,
			ClientID:   cfg.ClientID,
			NoEcho:     cfg.NoEcho,
			MirrorName: cfg.SecretMirrorName,
		},
		cognito.NewFromConfig(awsCfg, logger),
		sender,
		opts...,
	)

	logger.Info("app.handler_ready",
		zap.String("user_pool_id", cfg.UserPoolID),
		zap.String("client_id", cfg.ClientID),
		zap.String("region", cfg.AWSRegion),
		zap.Bool("mirror", cfg.SecretMirrorName != ""),
		zap.Bool("push_metrics", cfg.PushgatewayURL != ""))
	return h, nil
}
