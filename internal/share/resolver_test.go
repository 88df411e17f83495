package share

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/five82/mnemo/internal/metrics"
)

// fakeHost records every call and fails the capabilities it is told to.
type fakeHost struct {
	files     bool
	urls      bool
	failFiles error
	failURL   error
	failOpen  error

	shared []File
	urlsOK []string
	opened []string
	calls  []string
}

func (h *fakeHost) CanShareFiles(File) bool { return h.files }
func (h *fakeHost) ShareFiles(_ context.Context, f File) error {
	h.calls = append(h.calls, StrategyFileShare)
	if h.failFiles != nil {
		return h.failFiles
	}
	h.shared = append(h.shared, f)
	return nil
}
func (h *fakeHost) CanShareURL() bool { return h.urls }
func (h *fakeHost) ShareURL(_ context.Context, _, url string) error {
	h.calls = append(h.calls, StrategyURLShare)
	if h.failURL != nil {
		return h.failURL
	}
	h.urlsOK = append(h.urlsOK, url)
	return nil
}
func (h *fakeHost) Open(_ context.Context, url string) error {
	h.calls = append(h.calls, StrategyOpen)
	if h.failOpen != nil {
		return h.failOpen
	}
	h.opened = append(h.opened, url)
	return nil
}

type countingFetcher struct {
	calls       atomic.Int32
	data        []byte
	contentType string
	err         error
}

func (f *countingFetcher) Fetch(context.Context, string) ([]byte, string, error) {
	f.calls.Add(1)
	return f.data, f.contentType, f.err
}

type shareRecorder struct {
	metrics.NoopRecorder
	shares []string
}

func (r *shareRecorder) IncShare(strategy string) { r.shares = append(r.shares, strategy) }

// ---------------------------------------------------------------------------
// Resolver
// ---------------------------------------------------------------------------

func TestShare_EmptyURLIsNoop(t *testing.T) {
	c := qt.New(t)

	host := &fakeHost{files: true, urls: true}
	fetcher := &countingFetcher{}
	out := NewResolver(host, fetcher, nil).Share(context.Background(), "", "")

	c.Assert(out.Strategy, qt.Equals, StrategyNone)
	c.Assert(fetcher.calls.Load(), qt.Equals, int32(0))
	c.Assert(host.calls, qt.HasLen, 0)
}

func TestShare_JPGInferredAndOpenedWhenSharingUnsupported(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Suppress Go's content sniffing so the response carries no usable type.
		w.Header()["Content-Type"] = nil
		_, _ = w.Write([]byte("not really a jpeg"))
	}))
	defer srv.Close()

	host := &fakeHost{}
	url := srv.URL + "/files/photo.jpg"
	out := NewResolver(host, nil, nil).Share(context.Background(), "photo.jpg", url)

	c.Assert(out.Strategy, qt.Equals, StrategyOpen)
	c.Assert(out.MIME, qt.Equals, "image/jpeg")
	c.Assert(out.FetchErr, qt.IsNil)
	c.Assert(host.opened, qt.DeepEquals, []string{url})
	c.Assert(host.calls, qt.DeepEquals, []string{StrategyOpen})
}

func TestShare_FileShareWinsFirst(t *testing.T) {
	c := qt.New(t)

	host := &fakeHost{files: true, urls: true}
	fetcher := &countingFetcher{data: []byte("png"), contentType: "image/png"}
	rec := &shareRecorder{}
	out := NewResolver(host, fetcher, rec).Share(context.Background(), "face.png", "http://h/face.png")

	c.Assert(out.Strategy, qt.Equals, StrategyFileShare)
	c.Assert(host.shared, qt.HasLen, 1)
	c.Assert(host.shared[0].Name, qt.Equals, "face.png")
	c.Assert(host.shared[0].MIME, qt.Equals, "image/png")
	c.Assert(host.calls, qt.DeepEquals, []string{StrategyFileShare})
	c.Assert(rec.shares, qt.DeepEquals, []string{StrategyFileShare})
}

func TestShare_FallsThroughInOrder(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name      string
		host      *fakeHost
		fetchErr  error
		want      string
		wantCalls []string
	}{
		{
			name:      "file share fails then url share",
			host:      &fakeHost{files: true, urls: true, failFiles: errors.New("cancelled")},
			want:      StrategyURLShare,
			wantCalls: []string{StrategyFileShare, StrategyURLShare},
		},
		{
			name:      "fetch fails skips file share",
			host:      &fakeHost{files: true, urls: true},
			fetchErr:  errors.New("connection reset"),
			want:      StrategyURLShare,
			wantCalls: []string{StrategyURLShare},
		},
		{
			name:      "fetch fails without url share opens",
			host:      &fakeHost{files: true},
			fetchErr:  errors.New("connection reset"),
			want:      StrategyOpen,
			wantCalls: []string{StrategyOpen},
		},
		{
			name:      "both shares fail then open",
			host:      &fakeHost{files: true, urls: true, failFiles: errors.New("x"), failURL: errors.New("y")},
			want:      StrategyOpen,
			wantCalls: []string{StrategyFileShare, StrategyURLShare, StrategyOpen},
		},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			fetcher := &countingFetcher{data: []byte("bytes"), err: tc.fetchErr}
			out := NewResolver(tc.host, fetcher, nil).Share(context.Background(), "doc.pdf", "http://h/doc.pdf")
			c.Assert(out.Strategy, qt.Equals, tc.want)
			c.Assert(tc.host.calls, qt.DeepEquals, tc.wantCalls)
			c.Assert(out.Succeeded(), qt.IsTrue)
		})
	}
}

func TestShare_ErrorStatusSkipsFileShare(t *testing.T) {
	c := qt.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	host := &fakeHost{files: true, urls: true}
	url := srv.URL + "/files/missing.pdf"
	out := NewResolver(host, nil, nil).Share(context.Background(), "missing.pdf", url)

	c.Assert(out.FetchErr, qt.ErrorMatches, ".*returned status 404")
	c.Assert(out.Strategy, qt.Equals, StrategyURLShare)
	c.Assert(host.shared, qt.HasLen, 0)
	c.Assert(host.urlsOK, qt.DeepEquals, []string{url})
}

func TestShare_EverythingFailsStillReturns(t *testing.T) {
	c := qt.New(t)

	host := &fakeHost{failOpen: errors.New("no opener")}
	out := NewResolver(host, &countingFetcher{err: errors.New("down")}, nil).Share(context.Background(), "a", "http://h/a")

	c.Assert(out.Succeeded(), qt.IsFalse)
	c.Assert(out.Attempts, qt.HasLen, 3)
	c.Assert(out.Attempts[0].Skipped, qt.IsTrue)
	c.Assert(out.Attempts[1].Skipped, qt.IsTrue)
	c.Assert(out.Attempts[2].Err, qt.ErrorMatches, "no opener")
}

func TestResolveMIME(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		contentType, filename, url, want string
	}{
		{"image/png", "x.jpg", "", "image/png"},
		{"image/png; charset=binary", "", "", "image/png"},
		{"", "photo.JPEG", "", "image/jpeg"},
		{"application/octet-stream", "a.webp", "", "image/webp"},
		{"", "", "http://h/files/p.png?x=1", "image/png"},
		{"", "notes.txt", "http://h/notes.txt", "application/octet-stream"},
	}
	for _, tc := range cases {
		c.Check(ResolveMIME(tc.contentType, tc.filename, tc.url), qt.Equals, tc.want, qt.Commentf("%+v", tc))
	}
}

// ---------------------------------------------------------------------------
// DesktopHost
// ---------------------------------------------------------------------------

func TestDesktopHost_ExportDoesNotOverwrite(t *testing.T) {
	c := qt.New(t)

	dir := filepath.Join(t.TempDir(), "exports")
	h := NewDesktopHost(dir)
	f := File{Name: "../../evil/photo.jpg", MIME: "image/jpeg", Data: []byte("one")}

	c.Assert(h.CanShareFiles(f), qt.IsTrue)
	c.Assert(h.ShareFiles(context.Background(), f), qt.IsNil)
	f.Data = []byte("two")
	c.Assert(h.ShareFiles(context.Background(), f), qt.IsNil)

	first, err := os.ReadFile(filepath.Join(dir, "photo.jpg"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(first), qt.Equals, "one")
	second, err := os.ReadFile(filepath.Join(dir, "photo (1).jpg"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(second), qt.Equals, "two")
}

func TestDesktopHost_Capabilities(t *testing.T) {
	c := qt.New(t)

	var copied string
	var opened []string
	h := &DesktopHost{
		writeClipboard: func(s string) error { copied = s; return nil },
		runOpener: func(_ context.Context, name string, args ...string) error {
			opened = append([]string{name}, args...)
			return nil
		},
	}

	c.Assert(h.CanShareFiles(File{Data: []byte("x")}), qt.IsFalse)
	c.Assert(h.CanShareURL(), qt.IsTrue)
	c.Assert(h.ShareURL(context.Background(), "t", "http://h/a"), qt.IsNil)
	c.Assert(copied, qt.Equals, "http://h/a")

	h.clipboardUnsupported = true
	c.Assert(h.CanShareURL(), qt.IsFalse)

	if _, _, err := OpenerCommand(runtime.GOOS, "x"); err == nil {
		c.Assert(h.Open(context.Background(), "http://h/a"), qt.IsNil)
		c.Assert(opened[len(opened)-1], qt.Equals, "http://h/a")
	}
}

func TestOpenerCommand(t *testing.T) {
	c := qt.New(t)

	name, args, err := OpenerCommand("linux", "http://h")
	c.Assert(err, qt.IsNil)
	c.Assert(name, qt.Equals, XDGOpenCommand)
	c.Assert(args, qt.DeepEquals, []string{"http://h"})

	name, _, err = OpenerCommand("darwin", "http://h")
	c.Assert(err, qt.IsNil)
	c.Assert(name, qt.Equals, OpenCommand)

	_, _, err = OpenerCommand("plan9", "http://h")
	c.Assert(err, qt.ErrorMatches, "unsupported operating system: plan9")
}
