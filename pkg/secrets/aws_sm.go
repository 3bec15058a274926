package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

// ErrSecretNotFound is returned by GetSecret when the secret does not exist.
var ErrSecretNotFound = errors.New("secret not found")

// SecretsManagerAPI is the subset of the Secrets Manager client used by the provider.
type SecretsManagerAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// AWSSecretsManagerProvider implements Provider using AWS Secrets Manager.
type AWSSecretsManagerProvider struct {
	client      SecretsManagerAPI
	description string
}

// NewAWSProvider creates a Secrets Manager provider from a loaded AWS config.
func NewAWSProvider(cfg aws.Config, optFns ...func(*secretsmanager.Options)) *AWSSecretsManagerProvider {
	return NewProvider(secretsmanager.NewFromConfig(cfg, optFns...))
}

// NewProvider wraps an existing Secrets Manager client.
func NewProvider(client SecretsManagerAPI) *AWSSecretsManagerProvider {
	return &AWSSecretsManagerProvider{
		client:      client,
		description: "Cognito app client secret, written by the client-secret custom resource",
	}
}

// GetSecret fetches the string value of a secret.
func (p *AWSSecretsManagerProvider) GetSecret(ctx context.Context, name string) (string, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(name),
	})
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("fetch secret [%s]: %w", name, ErrSecretNotFound)
		}
		return "", fmt.Errorf("failed to fetch secret [%s]: %w", name, err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret [%s] has no string value", name)
	}
	return *out.SecretString, nil
}

// PutSecret writes a new version of the secret, creating it on first use.
func (p *AWSSecretsManagerProvider) PutSecret(ctx context.Context, name, value string) error {
	_, err := p.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(name),
		SecretString: aws.String(value),
	})
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return fmt.Errorf("failed to put secret [%s]: %w", name, err)
	}

	_, err = p.client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(name),
		Description:  aws.String(p.description),
		SecretString: aws.String(value),
	})
	if err != nil {
		return fmt.Errorf("failed to create secret [%s]: %w", name, err)
	}
	return nil
}

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

// LoadAWSConfig loads the default AWS config chain pinned to region.
func LoadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
