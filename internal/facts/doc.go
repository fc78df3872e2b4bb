// Package facts gathers the host facts identity resolution works from.
//
// [Gather] reads them once at the start of a run into an immutable [Facts]
// record: FQDN, short hostname, OS family, the raw interface list and the
// per-interface IPv4/IPv6 addresses. [Collect] then derives the ordered
// address sets from that record, skipping interfaces whose name matches the
// exclusion pattern (loopback and the docker bridge by default).
package facts
