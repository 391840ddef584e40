// Package session assigns each browser a stable opaque identity via a
// long-lived cookie.
//
// The identity partitions conversation visibility at the gateway: the
// ownership tracker keys on it, and list/get/delete requests are filtered by
// it. It is not authentication - there is no login, no user account, and the
// token is never forwarded to the upstream agent service.
package session
