// Package review schedules chapter reviews on a forgetting curve.
//
// Strategies define the review intervals. Store persists the recite list in
// SQLite; Collect joins list items with chapter content from the library.
package review
