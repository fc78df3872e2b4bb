// Package identity decides which membership entry is the local host.
//
// Resolution tries an ordered list of matchers and stops at the first hit:
// FQDN, short hostname, first local IPv4 address in membership order, then
// first local IPv6 address in membership order. The first matcher that
// succeeds fixes the canonical member string used for the data directory,
// the etcd member name and the advertised URLs, so the order is part of the
// contract. When nothing matches, [Resolve] returns a [ResolutionFailure]
// carrying everything that was tried; it never guesses.
package identity
