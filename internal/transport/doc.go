// Package transport exposes a dispatcher.Dispatcher over the wire: a
// stdio leg for local, single-client MCP clients (Claude Desktop and
// similar) and an HTTP/SSE leg for remote clients that need session
// management and OAuth-gated access. Both legs share one Dispatcher
// instance and therefore one set of tool semantics; they differ only in
// framing and authentication.
package transport
