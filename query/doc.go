// Package query provides semantic retrieval and question answering over
// the stored knowledge units.
//
// The Searcher embeds a query and ranks stored units by vector
// similarity. The Answerer builds on the Searcher: it assembles the top
// matches into a context prompt and asks a completion model to answer
// from that context only.
package query
