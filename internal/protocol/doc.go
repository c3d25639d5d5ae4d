// Package protocol owns the IRC wire-line layer.
//
// Ownership boundary:
// - CRLF framing and the 512-byte line clamp
// - outbound command line builders (QUIT, PONG, PRIVMSG, ...)
// - inbound line parsing into prefix/command/params
package protocol
