package main

import (
	"context"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/app"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/cfnresponse"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/config"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/logger"
)

func main() {
	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()

	// --- Response sender (PUT to the pre-signed URL) ---
	sender := cfnresponse.NewHTTPSender(logger.L(), cfg.ResponseTimeout, cfg.ResponseRetryMax)

	// --- Handler with Cognito client and optional mirror ---
	h, err := app.Build(context.Background(), cfg, sender, logger.L(), lambdacontext.FunctionName)
	if err != nil {
		logg.Fatalw("failed to build handler", "error", err)
	}

	lambda.Start(func(ctx context.Context, event cfn.Event) error {
		defer logger.Sync()
		return h.Handle(ctx, event)
	})
}
