package network

// Code is the zerolog field key under which lifecycle event codes are
// logged.
const Code = "code"

// The endpoint URL did not parse or the TCP/TLS dial failed. Client
// stays not-running.
const ErrorConnectFailed = 1

// The server rejected the HTTP upgrade or the accept key did not match
// the supplied handshake key. Client stays not-running.
const ErrorHandshakeFailed = 2

// Reading the next frame failed mid-stream. The receive loop stops.
const ErrorReadFrame = 3

// The server sent a close frame; the receive loop stops.
const InfoServerClose = 4

// The connection is established and the receive loop started.
const InfoConnected = 5
