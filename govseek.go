// Package govseek provides a grounded question-answering system over a
// whitelist of trusted web domains. It crawls each domain into bounded text
// chunks, persists them for downstream embedding and indexing, and answers
// questions by retrieving relevant chunks and conditioning a language model
// on them, with attributed sources.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, gemini/).
package govseek
