// Package ipc exposes the host over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management and the request/response DTOs. The
// server embeds the host while the client decorates calls with dial timeouts
// so CLI commands fail fast when the host is offline.
package ipc
