// Package main is the entry point for the etcdnode CLI.
//
// etcdnode configures one member of a statically defined etcd cluster. The
// same configuration file is deployed to every member; each host works out
// which entry it is, optionally resets its member in strict stages, and
// writes the etcd configuration.
//
// Commands: apply, plan, facts, init, fleet apply, version.
//
// For detailed usage information, run:
//
//	etcdnode --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/etcdnode/cmd/etcdnode/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
