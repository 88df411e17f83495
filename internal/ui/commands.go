package ui

import (
	"context"
	"fmt"
	"path"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mnemo/internal/boot"
	"github.com/five82/mnemo/internal/memory"
	"github.com/five82/mnemo/internal/prefs"
	"github.com/five82/mnemo/internal/share"
	"github.com/five82/mnemo/internal/state"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type bootStateMsg boot.State

type prefsMsg prefs.Prefs

// actionMsg reports the end of a user-triggered request.
type actionMsg struct {
	notice     string
	isErr      bool
	refresh    bool
	removedDoc memory.ID
}

type answerMsg struct {
	query  string
	answer memory.QueryResponse
	err    error
}

type labelFacesMsg struct {
	label string
	faces []memory.Face
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

// waitForBoot delivers the next boot transition. The channel closes after a
// terminal state, which ends the chain.
func waitForBoot(ch <-chan boot.State) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return bootStateMsg(s)
	}
}

func waitForPrefs(ch <-chan prefs.Prefs) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return prefsMsg(p)
	}
}

func (m Model) actionContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, ActionTimeout)
}

func (m Model) deleteDocumentCmd(doc memory.Document) tea.Cmd {
	api := m.api
	ctx, cancel := m.actionContext()
	return func() tea.Msg {
		defer cancel()
		out := api.DeleteDocument(ctx, doc.DocumentID)
		if !out.OK() {
			return actionMsg{notice: memory.Notice(out.Err()), isErr: true}
		}
		return actionMsg{
			notice:     "Deleted " + displayName(doc.Filename, doc.FileURL),
			removedDoc: doc.DocumentID,
			refresh:    true,
		}
	}
}

func (m Model) shareCmd(filename, ref string) tea.Cmd {
	if m.sharer == nil {
		return nil
	}
	sharer := m.sharer
	url := m.api.ResolveURL(ref)
	ctx, cancel := m.actionContext()
	return func() tea.Msg {
		defer cancel()
		out := sharer.Share(ctx, filename, url)
		return actionMsg{notice: shareNotice(out, displayName(filename, url)), isErr: !out.Succeeded()}
	}
}

func (m Model) openCmd(filename, ref string) tea.Cmd {
	url := m.api.ResolveURL(ref)
	if url == "" {
		return func() tea.Msg { return actionMsg{notice: "Nothing to open"} }
	}
	if m.open == nil {
		return nil
	}
	open := m.open
	ctx, cancel := m.actionContext()
	return func() tea.Msg {
		defer cancel()
		if err := open(ctx, url); err != nil {
			return actionMsg{notice: "Could not open " + displayName(filename, url) + ": " + err.Error(), isErr: true}
		}
		return actionMsg{notice: "Opened " + displayName(filename, url)}
	}
}

func (m Model) askCmd(query string) tea.Cmd {
	api := m.api
	ctx, cancel := m.actionContext()
	return func() tea.Msg {
		defer cancel()
		answer, err := api.SmartQuery(ctx, query).Unpack()
		return answerMsg{query: query, answer: answer, err: err}
	}
}

func (m Model) labelFacesCmd(label string) tea.Cmd {
	api := m.api
	ctx, cancel := m.actionContext()
	return func() tea.Msg {
		defer cancel()
		faces, err := api.SearchFaceByLabel(ctx, label).Unpack()
		return labelFacesMsg{label: label, faces: faces, err: err}
	}
}

func shareNotice(out share.Outcome, name string) string {
	switch out.Strategy {
	case share.StrategyNone:
		return "Nothing to share"
	case share.StrategyFileShare:
		return "Exported " + name
	case share.StrategyURLShare:
		return "Copied link to " + name + " to the clipboard"
	case share.StrategyOpen:
		return "Opened " + name
	default:
		return fmt.Sprintf("Could not share %s", name)
	}
}

// displayName prefers the stored filename and falls back to the URL's last
// path element.
func displayName(filename, url string) string {
	if filename != "" {
		return filename
	}
	if url == "" {
		return "file"
	}
	return path.Base(url)
}
