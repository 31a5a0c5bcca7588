// Package selection keeps the set of selected record ids independent of
// the page currently on screen, and implements "select first N" across
// remote pages.
//
// A Set is owned by its creator and handed to a Store by pointer; the
// Store is the only writer afterwards. The records of a page that are
// selected are never stored: Store.VisibleSelection recomputes them from
// the page and the set on every call.
//
// The Selector walks pages from page 1 and applies everything it found in
// a single Store.AddAll, so readers never observe a half-finished run.
// A fetch failure ends the walk but keeps what was gathered before it.
package selection
