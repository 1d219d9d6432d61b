// Package session manages conversation sessions over a session repository.
//
// The Store adds the single-writer guarantee the repository does not give:
// a per-session mutex serializes appends for one session id, so concurrent
// requests on the same session cannot interleave their turn pairs.
// Different sessions do not contend.
package session
