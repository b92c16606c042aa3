// Package schedule applies validated edits to a timeline.
//
// Every function is pure: it takes a Timeline value and returns a new one.
// Delay is the single mutation primitive; Move and Swap are expressed in
// terms of it. After an order is shifted, Repack restores machine
// non-overlap on every machine that hosts one of the order's operations.
//
// Known limitations:
//   - the repack sweep is left-to-right greedy on (start, end) and ignores due
//     dates, so an operation of a near-due order can be pushed behind one
//     with a distant due date;
//   - Swap applies two sequential delays. When both orders share machine
//     time, repacking after the first delay can move operations of the second
//     order, so the result is not an exact exchange of slots.
package schedule
