// Package main is the entry point for client-secret-invoke, which runs the client
// secret custom resource handler from a workstation against real AWS.
//
//	client-secret-invoke invoke --request-type Create --user-pool-id us-east-1_abc --client-id 1example
package main

import (
	"fmt"
	"os"

	"github.com/seanturner026/serverless-release-dashboard/client-secret-resource/cmd/client-secret-invoke/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	commands.SetVersionInfo(version, commit)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
