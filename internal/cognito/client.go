// Package cognito reads app client registrations from a Cognito user pool.
package cognito

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	cidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

var (
	// ErrMissingIdentifier is returned before any API call when the pool or client id is empty.
	ErrMissingIdentifier = errors.New("user pool id and client id are required")
	// ErrClientNotFound means the user pool or the app client does not exist.
	ErrClientNotFound = errors.New("user pool client not found")
	// ErrNoClientSecret means the app client exists but was created without a secret.
	ErrNoClientSecret = errors.New("user pool client has no client secret")
)

// DescribeAPI is the subset of the Cognito identity provider API used here.
type DescribeAPI interface {
	DescribeUserPoolClient(ctx context.Context, params *cidp.DescribeUserPoolClientInput, optFns ...func(*cidp.Options)) (*cidp.DescribeUserPoolClientOutput, error)
}

// Client looks up app client secrets.
type Client struct {
	api    DescribeAPI
	logger *zap.Logger
}

// NewClient wraps an identity provider API client.
func NewClient(api DescribeAPI, logger *zap.Logger) *Client {
	return &Client{api: api, logger: logger}
}

// NewFromConfig builds a Client on top of a Cognito identity provider SDK client.
func NewFromConfig(cfg aws.Config, logger *zap.Logger, optFns ...func(*cidp.Options)) *Client {
	return NewClient(cidp.NewFromConfig(cfg, optFns...), logger)
}

// ClientSecret describes the app client and returns its generated secret.
func (c *Client) ClientSecret(ctx context.Context, userPoolID, clientID string) (string, error) {
	if userPoolID == "" || clientID == "" {
		return "", ErrMissingIdentifier
	}

	start := time.Now()
	out, err := c.api.DescribeUserPoolClient(ctx, &cidp.DescribeUserPoolClientInput{
		UserPoolId: aws.String(userPoolID),
		ClientId:   aws.String(clientID),
	})
	if err != nil {
		c.logger.Warn("cognito.describe_failed",
			zap.String("user_pool_id", userPoolID),
			zap.String("client_id", clientID),
			zap.Error(err))
		if isNotFound(err) {
			return "", fmt.Errorf("describe client %s in pool %s: %w: %w", clientID, userPoolID, ErrClientNotFound, err)
		}
		return "", fmt.Errorf("describe client %s in pool %s: %w", clientID, userPoolID, err)
	}

	if out == nil || out.UserPoolClient == nil {
		return "", fmt.Errorf("describe client %s in pool %s: empty response: %w", clientID, userPoolID, ErrNoClientSecret)
	}
	secret := aws.ToString(out.UserPoolClient.ClientSecret)
	if secret == "" {
		return "", fmt.Errorf("client %s in pool %s: %w", clientID, userPoolID, ErrNoClientSecret)
	}

	c.logger.Debug("cognito.client_described",
		zap.String("user_pool_id", userPoolID),
		zap.String("client_id", clientID),
		zap.Duration("elapsed", time.Since(start)))
	return secret, nil
}

// isNotFound checks typed exceptions first and falls back to the API error code.
func isNotFound(err error) bool {
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "ResourceNotFoundException"
	}
	return false
}
