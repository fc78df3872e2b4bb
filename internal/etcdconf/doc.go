// Package etcdconf builds the parameter record handed to etcd and renders
// it as an etcd YAML configuration file.
//
// Local listeners always bind the wildcard address; advertised URLs use the
// resolved member identity, with loopback as an extra client endpoint.
// initial-cluster lists every member in configured order.
package etcdconf
