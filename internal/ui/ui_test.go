package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/mnemo/internal/boot"
	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/memory"
	"github.com/five82/mnemo/internal/prefs"
	"github.com/five82/mnemo/internal/share"
	"github.com/five82/mnemo/internal/state"
)

// fakeAPI implements the calls the TUI makes; anything else panics through
// the nil embedded interface.
type fakeAPI struct {
	memory.API

	mu        sync.Mutex
	calls     int
	deleted   []memory.ID
	queries   []string
	deleteOut memory.Outcome[memory.StatusResponse]
	queryOut  memory.Outcome[memory.QueryResponse]
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		deleteOut: memory.Success(memory.StatusResponse{Status: "deleted"}),
		queryOut:  memory.Success(memory.QueryResponse{Answer: "It is in March."}),
	}
}

func (f *fakeAPI) DeleteDocument(_ context.Context, id memory.ID) memory.Outcome[memory.StatusResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.deleted = append(f.deleted, id)
	return f.deleteOut
}

func (f *fakeAPI) SmartQuery(_ context.Context, query string) memory.Outcome[memory.QueryResponse] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.queries = append(f.queries, query)
	return f.queryOut
}

func (f *fakeAPI) ResolveURL(ref string) string {
	if ref == "" {
		return ""
	}
	return "http://backend" + ref
}

type fakeSharer struct {
	filename string
	url      string
	out      share.Outcome
}

func (s *fakeSharer) Share(_ context.Context, filename, url string) share.Outcome {
	s.filename, s.url = filename, url
	return s.out
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEscape}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "ctrl+u":
		return tea.KeyMsg{Type: tea.KeyCtrlU}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = update(t, m, keyMsg(k))
	}
	return m, cmd
}

// messages runs cmd and flattens batches, skipping nil commands.
func messages(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, messages(c)...)
	}
	return out
}

func libraryStore() *state.Store {
	store := &state.Store{}
	store.Update([]memory.Document{
		{DocumentID: "7", Filename: "passport.pdf", Type: "pdf", FileURL: "/files/passport.pdf"},
		{DocumentID: "9", Filename: "beach.jpg", Type: "image", FileURL: "/files/beach.jpg"},
	}, []memory.FaceFolder{{Label: "Mom", PreviewURL: "/faces/mom.jpg", Count: 3}}, nil)
	return store
}

func readyModel(t *testing.T, api memory.API, store *state.Store) Model {
	t.Helper()
	m := New(Options{API: api, Store: store})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	m, _ = update(t, m, snapshotMsg(store.Snapshot()))
	return m
}

func TestBootScreenBlocksDomainActions(t *testing.T) {
	api := newFakeAPI()
	store := libraryStore()
	m := readyModel(t, api, store)

	m, _ = update(t, m, bootStateMsg(boot.Connecting))
	if !strings.Contains(m.View(), "Connecting Backend") {
		t.Fatalf("boot screen missing checklist:\n%s", m.View())
	}

	m, cmd := press(t, m, "x", "y", "s", "3", "enter")
	if cmd != nil {
		t.Fatalf("boot screen produced a command: %v", messages(cmd))
	}
	if api.calls != 0 {
		t.Fatalf("domain calls before ready = %d", api.calls)
	}

	m, _ = update(t, m, bootStateMsg(boot.Error))
	if !strings.Contains(m.View(), "Backend not responding") {
		t.Fatalf("error screen missing message:\n%s", m.View())
	}
}

type healthyBackend struct{}

func (healthyBackend) Health(context.Context) error { return nil }
func (healthyBackend) Warmup(context.Context) error { return nil }

func TestModelFollowsMonitorToReady(t *testing.T) {
	timings := config.BootTimings{
		ProbeInterval: time.Millisecond,
		LoadingDelay:  time.Millisecond,
		WarmupDelay:   time.Millisecond,
	}
	mon := boot.NewMonitor(healthyBackend{}, timings)
	m := New(Options{API: newFakeAPI(), Monitor: mon, Store: &state.Store{}})
	if m.bootState != boot.Connecting {
		t.Fatalf("initial state = %v", m.bootState)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	mon.Start(ctx)

	var seen []boot.State
	for {
		msg := waitForBoot(m.bootCh)()
		if msg == nil {
			break
		}
		m, _ = update(t, m, msg)
		seen = append(seen, m.bootState)
	}
	if m.bootState != boot.Ready {
		t.Fatalf("final state = %v (seen %v)", m.bootState, seen)
	}
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("state regressed: %v", seen)
		}
	}
}

func TestDocumentDeleteNeedsConfirmation(t *testing.T) {
	api := newFakeAPI()
	store := libraryStore()
	refreshed := 0
	m := readyModel(t, api, store)
	m.refresh = func() { refreshed++ }

	m, cmd := press(t, m, "j", "x")
	if cmd != nil || api.calls != 0 {
		t.Fatal("delete issued without confirmation")
	}
	if !strings.Contains(m.notice.text, "beach.jpg") {
		t.Fatalf("confirmation notice = %q", m.notice.text)
	}

	m, cmd = press(t, m, "y")
	msgs := messages(cmd)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", msgs)
	}
	if len(api.deleted) != 1 || api.deleted[0] != "9" {
		t.Fatalf("deleted = %v", api.deleted)
	}

	m, _ = update(t, m, msgs[0])
	if refreshed != 1 {
		t.Fatalf("refresh triggered %d times", refreshed)
	}
	for _, d := range store.Snapshot().Documents {
		if d.DocumentID == "9" {
			t.Fatal("deleted document still in store")
		}
	}
	if m.notice.isErr || !strings.Contains(m.notice.text, "Deleted beach.jpg") {
		t.Fatalf("notice = %+v", m.notice)
	}
}

func TestDocumentDeleteCancel(t *testing.T) {
	api := newFakeAPI()
	m := readyModel(t, api, libraryStore())

	m, _ = press(t, m, "x", "n")
	if m.docs.confirmDelete != "" {
		t.Fatal("confirmation not cleared")
	}
	if _, cmd := press(t, m, "y"); cmd != nil || api.calls != 0 {
		t.Fatal("y after cancel deleted something")
	}
}

func TestFailedDeleteKeepsDocumentAndExplains(t *testing.T) {
	api := newFakeAPI()
	api.deleteOut = memory.Failure[memory.StatusResponse](&memory.RequestError{
		Kind: memory.KindRejected, Status: 409, Message: "document is locked",
	})
	store := libraryStore()
	m := readyModel(t, api, store)

	_, cmd := press(t, m, "x", "y")
	m, _ = update(t, m, messages(cmd)[0])

	if !m.notice.isErr || !strings.Contains(m.notice.text, "document is locked") {
		t.Fatalf("notice = %+v", m.notice)
	}
	if len(store.Snapshot().Documents) != 2 {
		t.Fatal("rejected delete removed a document")
	}
}

func TestShareResolvesBackendURL(t *testing.T) {
	sharer := &fakeSharer{out: share.Outcome{Strategy: share.StrategyURLShare}}
	m := readyModel(t, newFakeAPI(), libraryStore())
	m.sharer = sharer

	_, cmd := press(t, m, "s")
	msgs := messages(cmd)
	if len(msgs) != 1 {
		t.Fatalf("messages = %v", msgs)
	}
	if sharer.filename != "passport.pdf" || sharer.url != "http://backend/files/passport.pdf" {
		t.Fatalf("shared %q %q", sharer.filename, sharer.url)
	}
	action := msgs[0].(actionMsg)
	if action.isErr || !strings.Contains(action.notice, "clipboard") {
		t.Fatalf("action = %+v", action)
	}
}

func TestAskSubmitsQueryAndRendersAnswer(t *testing.T) {
	api := newFakeAPI()
	api.queryOut = memory.Success(memory.QueryResponse{
		Answer:   "Her birthday is in March.",
		Evidence: []memory.Evidence{{Filename: "calendar.txt", Chunk: "Mom - 14 March"}},
	})
	m := readyModel(t, api, libraryStore())

	m, _ = press(t, m, "3")
	if !m.ask.input.Focused() {
		t.Fatal("ask input not focused")
	}
	// "q" is typed into the query rather than quitting.
	m, _ = press(t, m, "quiz: mom birthday")
	if got := m.ask.input.Value(); got != "quiz: mom birthday" {
		t.Fatalf("input = %q", got)
	}

	m, cmd := press(t, m, "enter")
	if !m.ask.pending {
		t.Fatal("query not pending")
	}
	var answer tea.Msg
	for _, msg := range messages(cmd) {
		if a, ok := msg.(answerMsg); ok {
			answer = a
		}
	}
	if answer == nil {
		t.Fatal("no answer message")
	}
	if len(api.queries) != 1 || api.queries[0] != "quiz: mom birthday" {
		t.Fatalf("queries = %v", api.queries)
	}

	m, _ = update(t, m, answer)
	view := m.View()
	if m.ask.pending || !strings.Contains(view, "Her birthday is in March.") || !strings.Contains(view, "calendar.txt") {
		t.Fatalf("answer not rendered:\n%s", view)
	}
}

func TestAskUnreachableAndRejectedReadDifferently(t *testing.T) {
	m := readyModel(t, newFakeAPI(), libraryStore())
	m.ask.query = "q"

	down, _ := update(t, m, answerMsg{query: "q", err: &memory.RequestError{Kind: memory.KindUnreachable, Message: "backend unreachable", Err: errors.New("refused")}})
	refused, _ := update(t, m, answerMsg{query: "q", err: &memory.RequestError{Kind: memory.KindRejected, Status: 500, Message: "index not built"}})

	if down.notice.text == refused.notice.text {
		t.Fatalf("same notice for both: %q", down.notice.text)
	}
	if !strings.Contains(refused.notice.text, "index not built") {
		t.Fatalf("rejected notice = %q", refused.notice.text)
	}
}

func TestSettingsPersistThroughPrefs(t *testing.T) {
	store := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.toml"), "http://127.0.0.1:8000")
	refreshed := 0
	m := New(Options{API: newFakeAPI(), Store: libraryStore(), Prefs: store, Refresh: func() { refreshed++ }})
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	m, _ = press(t, m, "4", "j", "enter")
	if got := store.Load().GallerySize; got != "large" {
		t.Fatalf("gallery size = %q, want large", got)
	}
	if m.galleryColumns() != 2 {
		t.Fatalf("gallery columns = %d", m.galleryColumns())
	}

	m, _ = press(t, m, "j", "j", "enter")
	if store.Load().AnimationsEnabled() || m.userPrefs.AnimationsEnabled() {
		t.Fatal("animations still enabled")
	}

	m, _ = press(t, m, "j", "enter")
	if !m.settings.editing {
		t.Fatal("backend URL not in edit mode")
	}
	m, _ = press(t, m, "ctrl+u", "http://10.0.0.5:8000", "enter")
	if got := store.BaseURL(); got != "http://10.0.0.5:8000" {
		t.Fatalf("base URL = %q", got)
	}
	if m.settings.editing || refreshed != 1 {
		t.Fatalf("editing=%v refreshed=%d", m.settings.editing, refreshed)
	}
}

func TestThemeKeyCyclesAndPersists(t *testing.T) {
	store := prefs.NewStore(filepath.Join(t.TempDir(), "prefs.toml"), "")
	m := New(Options{API: newFakeAPI(), Prefs: store})

	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" || store.Load().Theme != "Kanagawa" {
		t.Fatalf("theme = %q persisted %q", m.theme.Name, store.Load().Theme)
	}
}

func TestPrefsUpdateAppliesTheme(t *testing.T) {
	m := New(Options{API: newFakeAPI()})
	p := prefs.Defaults()
	p.Theme = "Slate"
	m, _ = update(t, m, prefsMsg(p))
	if m.theme.Name != "Slate" {
		t.Fatalf("theme = %q", m.theme.Name)
	}
}
