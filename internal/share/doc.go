// Package share sends a backend file out of mnemo.
//
// Resolver.Share tries an explicit ordered chain: share the fetched bytes as
// a file, then share the URL, then open the URL. A step runs only when every
// earlier step was unavailable or failed, and a failed fetch only removes the
// file step. Share never returns an error; the Outcome says which step won.
//
// DesktopHost is the terminal implementation of the host capabilities:
// exporting into a directory, copying to the clipboard and launching the OS
// opener.
package share
