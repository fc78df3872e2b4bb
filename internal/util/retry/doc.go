// Package retry runs read-only operations again after transient failures,
// backing off exponentially between attempts.
//
// It is used for polls (is the etcd unit inactive yet?) and for dialing
// remote hosts. Destructive operations are never passed to [Do]; an
// operation can also stop the loop early by returning an error wrapped
// with [Fatal].
package retry
