package share

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/mnemo/internal/logging"
	"github.com/five82/mnemo/internal/metrics"
)

// Strategy names, in the order they are tried.
const (
	StrategyFileShare = "file"
	StrategyURLShare  = "url"
	StrategyOpen      = "open"
	// StrategyNone means there was nothing to share.
	StrategyNone = "none"
)

const (
	genericMIME     = "application/octet-stream"
	defaultFilename = "file"
	fetchTimeout    = 30 * time.Second
	maxFetchBytes   = 256 << 20
)

// File is a fetched payload ready to hand to the host.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Host exposes the platform's sharing capabilities.
type Host interface {
	CanShareFiles(f File) bool
	ShareFiles(ctx context.Context, f File) error
	CanShareURL() bool
	ShareURL(ctx context.Context, title, url string) error
	Open(ctx context.Context, url string) error
}

// Fetcher downloads a resource and reports its declared content type.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (data []byte, contentType string, err error)
}

// HTTPFetcher fetches over plain HTTP GET.
type HTTPFetcher struct {
	Client *http.Client
}

// Fetch implements Fetcher. Non-2xx responses are errors.
func (f HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, string, error) {
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("fetch %s returned status %d", rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// Attempt records one strategy in the chain.
type Attempt struct {
	Strategy string
	Skipped  bool // capability missing, strategy not tried
	Err      error
}

// Outcome describes how a share resolved. Strategy is the one that
// succeeded, StrategyNone for empty input, or "" if every step failed.
type Outcome struct {
	Strategy string
	MIME     string
	FetchErr error
	Attempts []Attempt
}

// Succeeded reports whether some strategy took effect.
func (o Outcome) Succeeded() bool {
	return o.Strategy != ""
}

type shareRequest struct {
	title string
	url   string
	file  *File
}

type strategy struct {
	name      string
	available func(Host, shareRequest) bool
	run       func(context.Context, Host, shareRequest) error
}

// chain is the fallback order. Each entry runs only if every entry before it
// was unavailable or failed.
var chain = []strategy{
	{
		name: StrategyFileShare,
		available: func(h Host, r shareRequest) bool {
			return r.file != nil && h.CanShareFiles(*r.file)
		},
		run: func(ctx context.Context, h Host, r shareRequest) error {
			return h.ShareFiles(ctx, *r.file)
		},
	},
	{
		name:      StrategyURLShare,
		available: func(h Host, _ shareRequest) bool { return h.CanShareURL() },
		run: func(ctx context.Context, h Host, r shareRequest) error {
			return h.ShareURL(ctx, r.title, r.url)
		},
	},
	{
		name:      StrategyOpen,
		available: func(Host, shareRequest) bool { return true },
		run: func(ctx context.Context, h Host, r shareRequest) error {
			return h.Open(ctx, r.url)
		},
	},
}

// Resolver sends a remote file out through the best available channel.
type Resolver struct {
	host     Host
	fetcher  Fetcher
	recorder metrics.Recorder
	log      *logrus.Entry
}

// NewResolver builds a Resolver. A nil fetcher uses HTTPFetcher and a nil
// recorder discards metrics.
func NewResolver(host Host, fetcher Fetcher, recorder metrics.Recorder) *Resolver {
	if fetcher == nil {
		fetcher = HTTPFetcher{}
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Resolver{
		host:     host,
		fetcher:  fetcher,
		recorder: recorder,
		log:      logging.NewLogger("share"),
	}
}

// Share fetches fileURL and hands it to the first strategy that works. It
// never fails: problems are logged and reported in the Outcome. An empty
// fileURL does nothing at all.
func (r *Resolver) Share(ctx context.Context, filename, fileURL string) Outcome {
	fileURL = strings.TrimSpace(fileURL)
	if fileURL == "" {
		return Outcome{Strategy: StrategyNone}
	}
	name := filename
	if name == "" {
		name = defaultFilename
	}
	log := r.log.WithFields(logrus.Fields{"filename": name, "url": fileURL})

	req := shareRequest{title: filename, url: fileURL}
	var out Outcome

	data, contentType, err := r.fetcher.Fetch(ctx, fileURL)
	if err != nil {
		log.WithError(err).Warn("fetch for share failed; skipping file share")
		out.FetchErr = err
	} else {
		out.MIME = ResolveMIME(contentType, filename, fileURL)
		req.file = &File{Name: name, MIME: out.MIME, Data: data}
	}

	for _, s := range chain {
		if !s.available(r.host, req) {
			out.Attempts = append(out.Attempts, Attempt{Strategy: s.name, Skipped: true})
			continue
		}
		err := s.run(ctx, r.host, req)
		out.Attempts = append(out.Attempts, Attempt{Strategy: s.name, Err: err})
		if err == nil {
			out.Strategy = s.name
			r.recorder.IncShare(s.name)
			log.WithField("strategy", s.name).Info("shared")
			return out
		}
		log.WithError(err).WithField("strategy", s.name).Warn("share strategy failed")
	}

	r.recorder.IncShare("failed")
	log.Error("every share strategy failed")
	return out
}

// ResolveMIME returns the declared media type unless it is missing or the
// generic binary placeholder, in which case the type is inferred from the
// filename, then the URL path.
func ResolveMIME(contentType, filename, fileURL string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt != "" && mt != genericMIME {
		return mt
	}
	if mt := mimeFromExt(filename); mt != "" {
		return mt
	}
	if u, err := url.Parse(fileURL); err == nil {
		if mt := mimeFromExt(u.Path); mt != "" {
			return mt
		}
	}
	return genericMIME
}

func mimeFromExt(name string) string {
	switch strings.ToLower(path.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
