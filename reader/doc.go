// Package reader extracts text content from files for ingestion.
//
// A Reader turns a file on disk into plain text plus optional structural
// boundaries (rune offsets of section starts, such as PDF page breaks).
// Readers are looked up by file extension through a Registry, so callers
// never switch on file types themselves.
//
// Built-in readers cover plain text (.txt, .md) and PDF (.pdf). Additional
// formats register through Registry.Register.
package reader
