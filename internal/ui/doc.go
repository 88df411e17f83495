// Package ui implements the mnemo terminal interface with Bubble Tea.
//
// # Boot gate
//
// Model subscribes to the boot monitor when it is built. Until the monitor
// reports Ready, View renders only the boot checklist (Connecting Backend,
// Loading Memory Core, Preparing AI Engine) and key handling is limited to
// quit, help and theme, so no domain request can leave the UI early. The
// Error state shows "Backend not responding" and stays there.
//
// # Views
//
//   - Documents: the library list with share, open and a confirmed delete
//   - Faces: labeled face folders laid out per the gallery_size preference;
//     enter lists the faces under a label
//   - Ask: a query box backed by /smart-query with the answer and its
//     evidence, each of which can be shared or opened
//   - Settings: theme, gallery size, zoom mode, animations and the backend
//     URL, all written through the prefs store
//
// Library data comes from state.Store snapshots refreshed in the background
// by the app package; the UI only reads them on a tick. User actions run as
// tea.Cmds with a bounded context and report back through a one-line notice
// that words unreachable and rejected failures differently.
//
// # Styling
//
// Themes (Nightfox, Kanagawa, Slate) are plain hex palettes turned into
// lipgloss styles. BgStyle keeps header backgrounds continuous across
// separately styled segments.
package ui
