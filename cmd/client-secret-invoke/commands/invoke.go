package commands

import (
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/app"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/cfnresponse"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/config"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/logger"
)

const localStackID = "arn:aws:cloudformation:local:000000000000:stack/client-secret-invoke/local"

type invokeOptions struct {
	requestType string
	responseURL string
	physicalID  string
	userPoolID  string
	clientID    string
	region      string
	showSecret  bool
}

// Invoke returns the invoke command.
func Invoke() *cobra.Command {
	opts := &invokeOptions{}

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Send a synthetic lifecycle event through the handler",
		Long: `Builds a CloudFormation custom resource event and runs it through the same
handler the Lambda uses. Without --response-url the response document is printed
instead of sent, with the secret masked unless --show-secret is given.

Configuration is read from the environment (and .env) exactly as in Lambda; the
flags below override it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			opts.apply(cfg)

			logger.Init(cfg.ServiceName, "dev", cfg.LogLevel)
			defer logger.Sync()

			var sender cfnresponse.Sender = &cfnresponse.WriterSender{W: cmd.OutOrStdout(), Reveal: opts.showSecret}
			if opts.responseURL != "" {
				sender = cfnresponse.NewHTTPSender(logger.L(), cfg.ResponseTimeout, cfg.ResponseRetryMax)
			}

			h, err := app.Build(cmd.Context(), cfg, sender, logger.L(), "local")
			if err != nil {
				return err
			}

			event, err := opts.event()
			if err != nil {
				return err
			}
			return h.Handle(cmd.Context(), event)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.requestType, "request-type", "t", string(cfn.RequestCreate), "lifecycle event: Create, Update or Delete")
	f.StringVar(&opts.responseURL, "response-url", "", "PUT the response here instead of printing it")
	f.StringVar(&opts.physicalID, "physical-id", "", "physical resource id of an existing resource (Update/Delete)")
	f.StringVarP(&opts.userPoolID, "user-pool-id", "u", "", "overrides USER_POOL_ID")
	f.StringVarP(&opts.clientID, "client-id", "c", "", "overrides CLIENT_POOL_ID")
	f.StringVar(&opts.region, "region", "", "overrides AWS_REGION")
	f.BoolVar(&opts.showSecret, "show-secret", false, "print the secret unmasked")

	return cmd
}

// apply overrides cfg with any flags that were set.
func (o *invokeOptions) apply(cfg *config.Config) {
	if o.userPoolID != "" {
		cfg.UserPoolID = o.userPoolID
	}
	if o.clientID != "" {
		cfg.ClientID = o.clientID
	}
	if o.region != "" {
		cfg.AWSRegion = o.region
	}
}

// event builds the synthetic lifecycle event. Request types are matched case-insensitively.
func (o *invokeOptions) event() (cfn.Event, error) {
	var rt cfn.RequestType
	for _, known := range []cfn.RequestType{cfn.RequestCreate, cfn.RequestUpdate, cfn.RequestDelete} {
		if strings.EqualFold(o.requestType, string(known)) {
			rt = known
		}
	}
	if rt == "" {
		return cfn.Event{}, fmt.Errorf("unknown request type %q (want Create, Update or Delete)", o.requestType)
	}
	if rt != cfn.RequestCreate && o.physicalID == "" {
		return cfn.Event{}, fmt.Errorf("--physical-id is required for %s", rt)
	}

	return cfn.Event{
		RequestType:        rt,
		RequestID:          uuid.NewString(),
		ResponseURL:        o.responseURL,
		ResourceType:       "Custom::CognitoClientSecret",
		LogicalResourceID:  "CognitoClientSecret",
		StackID:            localStackID,
		PhysicalResourceID: o.physicalID,
	}, nil
}
