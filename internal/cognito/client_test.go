package cognito

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	cidp "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClient creates a Client backed by a test HTTP server speaking the
// Cognito JSON protocol.
func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api := cidp.New(cidp.Options{
		Region:           "us-east-1",
		BaseEndpoint:     aws.String(server.URL),
		Credentials:      credentials.NewStaticCredentialsProvider("test-key", "test-secret", ""),
		RetryMaxAttempts: 1,
		HTTPClient:       server.Client(),
	})
	return NewClient(api, zap.NewNop())
}

func jsonResponse(w http.ResponseWriter, statusCode int, body string) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.1")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(body))
}

func TestClientSecret_Success(t *testing.T) {
	var calls atomic.Int32
	var gotInput map[string]string
	var gotTarget string

	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		gotTarget = r.Header.Get("X-Amz-Target")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotInput)
		jsonResponse(w, http.StatusOK, `{"UserPoolClient":{"UserPoolId":"pool1","ClientId":"client1","ClientName":"dashboard","ClientSecret":"abc123"}}`)
	}))

	secret, err := c.ClientSecret(context.Background(), "pool1", "client1")

	require.NoError(t, err)
	assert.Equal(t, "abc123", secret)
	assert.EqualValues(t, 1, calls.Load())
	assert.Equal(t, "AWSCognitoIdentityProviderService.DescribeUserPoolClient", gotTarget)
	assert.Equal(t, "pool1", gotInput["UserPoolId"])
	assert.Equal(t, "client1", gotInput["ClientId"])
}

func TestClientSecret_NotFound(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusBadRequest, `{"__type":"ResourceNotFoundException","message":"User pool client client1 does not exist."}`)
	}))

	_, err := c.ClientSecret(context.Background(), "pool1", "client1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrClientNotFound))
	var rnf *types.ResourceNotFoundException
	assert.True(t, errors.As(err, &rnf), "SDK error must stay in the chain")
}

func TestClientSecret_AccessDenied(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusBadRequest, `{"__type":"NotAuthorizedException","message":"not allowed"}`)
	}))

	_, err := c.ClientSecret(context.Background(), "pool1", "client1")

	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrClientNotFound))
	assert.Contains(t, err.Error(), "describe client client1 in pool pool1")
}

func TestClientSecret_NoSecretGenerated(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, `{"UserPoolClient":{"UserPoolId":"pool1","ClientId":"client1"}}`)
	}))

	_, err := c.ClientSecret(context.Background(), "pool1", "client1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoClientSecret))
}

func TestClientSecret_EmptyResponse(t *testing.T) {
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		jsonResponse(w, http.StatusOK, `{}`)
	}))

	_, err := c.ClientSecret(context.Background(), "pool1", "client1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoClientSecret))
}

type fakeDescribeAPI struct {
	calls int
}

func (f *fakeDescribeAPI) DescribeUserPoolClient(context.Context, *cidp.DescribeUserPoolClientInput, ...func(*cidp.Options)) (*cidp.DescribeUserPoolClientOutput, error) {
	f.calls++
	return nil, errors.New("should not be called")
}

func TestClientSecret_MissingIdentifiers(t *testing.T) {
	tests := []struct {
		name     string
		poolID   string
		clientID string
	}{
		{name: "missing pool", clientID: "client1"},
		{name: "missing client", poolID: "pool1"},
		{name: "missing both"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeDescribeAPI{}
			c := NewClient(api, zap.NewNop())

			_, err := c.ClientSecret(context.Background(), tt.poolID, tt.clientID)

			assert.ErrorIs(t, err, ErrMissingIdentifier)
			assert.Equal(t, 0, api.calls)
		})
	}
}

func TestIsNotFound_GenericAPIError(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &smithy.GenericAPIError{Code: "ResourceNotFoundException"})
	assert.True(t, isNotFound(err))
	assert.False(t, isNotFound(&smithy.GenericAPIError{Code: "InternalErrorException"}))
	assert.False(t, isNotFound(errors.New("boom")))
}
