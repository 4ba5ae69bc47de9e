// Package viewstate holds the state behind the car list view.
//
// A Controller owns the paging, sort, search and filter parameters and the
// page of cars currently displayed. Every parameter change that affects the
// server query triggers a fresh ListPage fetch whose result replaces the
// displayed set wholesale.
//
// # Sorting
//
// SortBy toggles the direction when the key is already active and resets to
// ascending when a new key is picked. The server sorts the page; the local
// comparator is only used after FilterLocal narrows the page:
//
//   - strings compare with English collation
//   - numbers compare numerically
//   - booleans put true first when ascending
//   - missing values compare equal
//
// # Mutations
//
// Create, update and delete go through an explicit lifecycle:
//
//	Idle → Submitting → Reconciling → Idle
//
// A mutation submitted while another is in flight fails with ErrBusy.
// Create never appends optimistically; it refetches the page once the server
// accepts the record. Update replaces the record in place with the server
// copy and refetches. Delete removes the record locally and, unless
// Options.RefetchAfterDelete is set, does not refetch.
//
// # Ordering
//
// Each fetch takes a sequence number when it is issued. A response that
// arrives after a newer one has been applied is dropped.
//
// # Cart
//
// Cart is an append-only local selection with a running price total. It is
// never sent to the server.
package viewstate
