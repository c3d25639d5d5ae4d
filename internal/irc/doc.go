// Package irc owns the client runtime around one server connection.
//
// Ownership boundary:
// - the outbound queue: two-tier priority dispatch, rate limiting, the
//   terminal QUIT write
// - connection establishment, handshake, and the inbound read loop
// - the listener contracts surfacing sent lines and write failures
package irc
