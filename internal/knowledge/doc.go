// Package knowledge stores reference documents for the advisor.
//
// Documents (best-practice notes, field guidelines, simulator manuals)
// are indexed into a SQLite table. Search recalls candidates with
// keyword matching and, when an Embedder is configured, re-ranks them
// by cosine similarity of stored embeddings. Without an embedder the
// keyword recall order is returned as-is, so the store works fully
// offline.
package knowledge
