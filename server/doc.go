// Package server exposes the chat surface over HTTP.
//
// Routes:
//
//	POST /chat/message  {sessionId, message} -> {response, messageId}
//	GET  /chat/welcome  -> {greeting, messageId}
//	GET  /healthcheck   -> {status}
//
// The responder never surfaces model failures (it answers with an
// apology), so 5xx responses only occur on session store failures.
package server
