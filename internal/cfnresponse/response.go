// Package cfnresponse delivers custom resource results back to CloudFormation.
//
// CloudFormation hands every custom resource invocation a pre-signed S3 URL and
// waits (up to an hour) for a JSON document to be PUT there. A resource that never
// answers leaves its stack stuck, so every code path must end in exactly one Send.
package cfnresponse

import (
	"context"
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
)

// maxReasonLen keeps the whole document well under the 4 KiB response limit.
const maxReasonLen = 1024

// Sender delivers a response document for one invocation.
type Sender interface {
	Send(ctx context.Context, url string, resp *cfn.Response) error
}

// New builds the response document for event.
func New(event cfn.Event, status cfn.StatusType, physicalID, reason string, data map[string]any, noEcho bool) *cfn.Response {
	resp := cfn.NewResponse(&event)
	resp.Status = status
	resp.PhysicalResourceID = physicalID
	resp.Reason = truncate(reason, maxReasonLen)
	resp.Data = data
	resp.NoEcho = noEcho
	return resp
}

// Success builds a SUCCESS response carrying data.
func Success(event cfn.Event, physicalID string, data map[string]any, noEcho bool) *cfn.Response {
	return New(event, cfn.StatusSuccess, physicalID, "", data, noEcho)
}

// Failure builds a FAILED response whose reason is err's message.
func Failure(event cfn.Event, physicalID string, err error) *cfn.Response {
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	return New(event, cfn.StatusFailed, physicalID, reason, nil, false)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s... (truncated)", s[:n])
}
