// Package retrieval answers queries against the knowledge index.
//
// The Engine embeds a query, over-fetches similar records from the index,
// drops everything below the similarity threshold, and returns at most K
// results in descending score order. An empty result set is the caller's
// signal to fall back to ungrounded answering; it is not an error.
package retrieval
