// Package respond orchestrates chat answers.
//
// For each user message the Responder persists the turn, retrieves
// relevant knowledge, builds a grounded prompt (or a fallback prompt when
// nothing relevant exists), calls the chat model, and persists the
// assistant's turn. A model failure yields a fixed apology and leaves no
// assistant turn behind, so the conversation log never contains answers
// that were never produced.
package respond
