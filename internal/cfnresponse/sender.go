package cfnresponse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"go.uber.org/zap"

	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/internal/httpclient"
	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/pkg/utils"
)

// HTTPSender PUTs the response document to the pre-signed response URL.
type HTTPSender struct {
	logger *zap.Logger
	exec   *httpclient.Executor
}

// NewHTTPSender creates an HTTPSender. retryMax bounds retries on 5xx and transport errors.
func NewHTTPSender(logger *zap.Logger, timeout time.Duration, retryMax int) *HTTPSender {
	return NewHTTPSenderWithClient(logger, &http.Client{Timeout: timeout}, retryMax)
}

// NewHTTPSenderWithClient is NewHTTPSender with a caller-supplied HTTP client.
func NewHTTPSenderWithClient(logger *zap.Logger, client *http.Client, retryMax int) *HTTPSender {
	return &HTTPSender{
		logger: logger,
		exec: httpclient.New(logger, client, retryMax, "cfnresponse", func(status int, body []byte) error {
			return fmt.Errorf("response url rejected document: %d: %s", status, body)
		}),
	}
}

// Send marshals resp and PUTs it to url. No Content-Type header is set because the
// pre-signed URL is signed without one.
func (s *HTTPSender) Send(ctx context.Context, url string, resp *cfn.Response) error {
	if url == "" {
		return fmt.Errorf("send %s response: empty response url", resp.Status)
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	if err := s.exec.Do(ctx, httpclient.Request{Method: http.MethodPut, URL: url, Body: body}, nil); err != nil {
		return fmt.Errorf("send %s response: %w", resp.Status, err)
	}

	s.logger.Info("cfnresponse.sent",
		zap.String("status", string(resp.Status)),
		zap.String("request_id", resp.RequestID),
		zap.String("physical_resource_id", resp.PhysicalResourceID))
	return nil
}

// WriterSender prints the response document instead of sending it. String values in
// Data are masked unless Reveal is set.
type WriterSender struct {
	W      io.Writer
	Reveal bool
}

// Send writes resp as indented JSON. The url is ignored.
func (s *WriterSender) Send(_ context.Context, _ string, resp *cfn.Response) error {
	out := *resp
	if !s.Reveal && len(resp.Data) > 0 {
		out.Data = make(map[string]any, len(resp.Data))
		for k, v := range resp.Data {
			if str, ok := v.(string); ok {
				v = utils.MaskSecret(str)
			}
			out.Data[k] = v
		}
	}

	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}
