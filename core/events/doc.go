// Package events defines the notices published on the event bus once a
// command has been processed.
//
// Available event types:
//   - TimelineChanged: an accepted command produced a new timeline
package events
