// Package fs holds the local filesystem appliers: atomic file writes that
// skip unchanged content, and emptying an etcd data directory in place.
package fs
