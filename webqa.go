// Package webqa answers natural language questions about a single web page.
// It fetches the page, extracts its text into a short artifact, indexes the
// artifact and asks a language model to answer using retrieved text as
// context.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, openai/, bleve/).
package webqa
