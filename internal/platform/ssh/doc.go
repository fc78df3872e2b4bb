// Package ssh runs commands on fleet members over SSH.
//
// The fleet rollout uses it to pipe a configuration document into
// etcdnode on each member in turn. Host keys are checked against a
// known_hosts file unless the caller explicitly opts out.
package ssh
