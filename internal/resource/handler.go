// Package resource implements the CloudFormation custom resource that exposes a
// Cognito app client secret to the stack that created the client.
//
// CloudFormation cannot read UserPoolClient.ClientSecret through Fn::GetAtt, so the
// stack declares a custom resource backed by this handler and reads the secret as
// Fn::GetAtt <Resource>.Data instead.
package resource

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/cfnresponse"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/metrics"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/secrets"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/utils"
)

// DataKey is the attribute name the secret is returned under.
const DataKey = "Data"

// defaultResponseReserve is the slice of the Lambda deadline kept back for the
// FAILED response when the lookup hangs.
const defaultResponseReserve = 2 * time.Second

// ErrUnsupportedRequestType is returned for request types other than Create, Update and Delete.
var ErrUnsupportedRequestType = errors.New("unsupported request type")

// SecretLookup returns the client secret of an app client.
type SecretLookup interface {
	ClientSecret(ctx context.Context, userPoolID, clientID string) (string, error)
}

// Config identifies the client registration and how its secret is returned.
type Config struct {
	UserPoolID string
	ClientID   string
	NoEcho     bool
	// MirrorName is the Secrets Manager secret that receives a copy. Empty disables mirroring.
	MirrorName string
}

// Handler answers CloudFormation lifecycle events for the client secret resource.
type Handler struct {
	cfg     Config
	lookup  SecretLookup
	sender  cfnresponse.Sender
	mirror  secrets.Provider
	metrics *metrics.Metrics
	pusher  *metrics.Pusher
	logger  *zap.Logger
	reserve time.Duration
}

// Option configures optional Handler collaborators.
type Option func(*Handler)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithMirror enables copying the secret into p under Config.MirrorName.
func WithMirror(p secrets.Provider) Option {
	return func(h *Handler) { h.mirror = p }
}

// WithMetrics records invocations on m and pushes them through p after each invocation.
// p may be nil.
func WithMetrics(m *metrics.Metrics, p *metrics.Pusher) Option {
	return func(h *Handler) {
		h.metrics = m
		h.pusher = p
	}
}

// WithResponseReserve changes how much of the invocation deadline is kept for responding.
func WithResponseReserve(d time.Duration) Option {
	return func(h *Handler) { h.reserve = d }
}

// New creates a Handler. lookup and sender are required.
func New(cfg Config, lookup SecretLookup, sender cfnresponse.Sender, opts ...Option) *Handler {
	h := &Handler{
		cfg:     cfg,
		lookup:  lookup,
		sender:  sender,
		logger:  zap.NewNop(),
		reserve: defaultResponseReserve,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.metrics == nil {
		h.metrics = metrics.New()
	}
	return h
}

// Handle processes one lifecycle event and sends exactly one response for it.
// A failed Create or Update is answered with FAILED and the cause is also returned.
func (h *Handler) Handle(ctx context.Context, event cfn.Event) error {
	log := h.logger.With(
		zap.String("request_type", string(event.RequestType)),
		zap.String("request_id", event.RequestID),
		zap.String("logical_resource_id", event.LogicalResourceID),
	)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With(zap.String("aws_request_id", lc.AwsRequestID))
	}
	physicalID := h.physicalID(event)

	defer func() {
		if r := recover(); r != nil {
			log.Error("resource.panic", zap.Any("panic", r))
			_ = h.sender.Send(ctx, event.ResponseURL,
				cfnresponse.Failure(event, physicalID, errors.New("handler panicked, see log stream for details")))
			panic(r)
		}
	}()

	resp, stage, procErr := h.process(ctx, event, physicalID, log)
	if procErr != nil {
		log.Error("resource.request_failed", zap.String("stage", stage), zap.Error(procErr))
		h.metrics.Errors.WithLabelValues(stage).Inc()
		resp = cfnresponse.Failure(event, physicalID, procErr)
	}

	sendErr := h.sender.Send(ctx, event.ResponseURL, resp)
	if sendErr != nil {
		log.Error("resource.respond_failed", zap.Error(sendErr))
		h.metrics.Errors.WithLabelValues("respond").Inc()
	}
	h.metrics.Invocations.WithLabelValues(string(event.RequestType), string(resp.Status)).Inc()

	if h.pusher.Enabled() {
		if err := h.pusher.Push(ctx); err != nil {
			log.Warn("resource.metrics_push_failed", zap.Error(err))
		}
	}

	return errors.Join(procErr, sendErr)
}

// process builds the response for event. On failure it returns the failing stage.
func (h *Handler) process(ctx context.Context, event cfn.Event, physicalID string, log *zap.Logger) (*cfn.Response, string, error) {
	switch event.RequestType {
	case cfn.RequestCreate, cfn.RequestUpdate:
		secret, err := h.fetch(ctx)
		if err != nil {
			return nil, "lookup", err
		}
		log.Info("resource.secret_retrieved",
			zap.String("user_pool_id", h.cfg.UserPoolID),
			zap.String("client_id", h.cfg.ClientID),
			zap.String("secret", utils.MaskSecret(secret)))

		if h.mirror != nil && h.cfg.MirrorName != "" {
			if err := h.mirror.PutSecret(ctx, h.cfg.MirrorName, secret); err != nil {
				return nil, "mirror", fmt.Errorf("mirror client secret: %w", err)
			}
			log.Info("resource.secret_mirrored", zap.String("secret_name", h.cfg.MirrorName))
		}

		return cfnresponse.Success(event, physicalID, map[string]any{DataKey: secret}, h.cfg.NoEcho), "", nil

	case cfn.RequestDelete:
		// Nothing was created, so there is nothing to clean up.
		log.Info("resource.delete_acknowledged", zap.String("physical_resource_id", physicalID))
		return cfnresponse.Success(event, physicalID, nil, false), "", nil

	default:
		return nil, "request", fmt.Errorf("%w: %q", ErrUnsupportedRequestType, event.RequestType)
	}
}

// fetch looks up the secret, leaving h.reserve of the deadline for the response.
func (h *Handler) fetch(ctx context.Context) (string, error) {
	if deadline, ok := ctx.Deadline(); ok && h.reserve > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithDeadline(ctx, deadline.Add(-h.reserve))
		defer cancel()
	}

	start := time.Now()
	secret, err := h.lookup.ClientSecret(ctx, h.cfg.UserPoolID, h.cfg.ClientID)
	metrics.ObserveDuration(h.metrics.LookupDuration, start)
	if err != nil {
		return "", fmt.Errorf("look up client secret: %w", err)
	}
	return secret, nil
}

// physicalID keeps the id CloudFormation already knows; a new id would make it
// replace the resource on update.
func (h *Handler) physicalID(event cfn.Event) string {
	if event.PhysicalResourceID != "" {
		return event.PhysicalResourceID
	}
	return h.cfg.UserPoolID + "/" + h.cfg.ClientID
}
