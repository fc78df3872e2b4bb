// Package provisioning turns a resolved identity into a finished etcd
// member on this host.
//
// A run has at most two phases. The cleanup phase exists only for
// destructive runs: stop the etcd unit, optionally back up the data
// directory, purge it, then wait for peers to notice the member is gone.
// The main phase writes the etcd configuration and keeps the supporting
// files and units in place.
//
// The cleanup phase's step list is built and fully executed before the
// main phase's step list is even constructed, so no main step can start
// while cleanup is unfinished. A [StateMachine] tracks the run through
// Idle, ServiceStopped, DataPurged, PeerWaitElapsed, Configuring and
// Configured and rejects any other order.
//
// Every step failure is returned as a [StageFailure]; nothing is retried
// and no later step runs.
package provisioning
