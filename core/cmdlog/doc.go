// Package cmdlog keeps the history of submitted commands: a bounded
// in-memory ring of the most recent entries and optional persistent stores
// (JSONL, rotating JSONL, SQLite) that can be queried later.
package cmdlog
