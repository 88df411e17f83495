// Package state holds the library data shared between the background
// refresher and the UI.
//
// The refresher writes with Update; the UI reads with Snapshot. Snapshots are
// copies, so the UI can sort or filter them without locking. A failed refresh
// keeps the previous documents and folders and only records the error, which
// lets the UI keep showing stale data with an offline marker:
//
//	store.Update(docs, folders, nil) // replace data, clear error
//	store.Update(nil, nil, err)      // keep data, record err, count failure
//
// Snapshot.IsOffline reports two or more consecutive unreachable failures.
// A backend that answers with an error status is not offline.
package state
