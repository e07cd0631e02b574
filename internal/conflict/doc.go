// Package conflict detects overlaps between a proposed event window and the
// events already on a calendar.
//
// Detection is approximate: only events returned by a single bounded list
// anchored at the candidate start are inspected, so an event that begins
// before that anchor is seen only when it is still running at the anchor.
package conflict
