// Package extract turns free-text edit requests into command payloads.
//
// Two strategies exist. ModelExtractor asks a hosted model for a payload
// matching a strict schema; PatternExtractor recognises a small set of
// phrasings with regular expressions. Extractor chains them: the model is
// tried first when configured and any failure silently falls through to the
// patterns, which always produce a payload (at worst an unknown intent).
package extract
