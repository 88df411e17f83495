package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// errPayloadShort means the file ended before its declared size, typically
// because it was truncated after it was opened.
var errPayloadShort = errors.New("upload ended before its declared size")

const (
	uploadField        = "file"
	defaultContentType = "application/octet-stream"
)

// FilePayload is the single file sent by a multipart upload. Size < 0 means
// unknown; progress is then only reported on completion.
type FilePayload struct {
	Name        string
	Size        int64
	ContentType string
	Reader      io.Reader
}

// OpenFile opens path for upload. The caller closes the payload.
func OpenFile(path string) (FilePayload, error) {
	f, err := os.Open(path)
	if err != nil {
		return FilePayload{}, fmt.Errorf("open upload: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return FilePayload{}, fmt.Errorf("stat upload: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return FilePayload{}, fmt.Errorf("open upload: %s is a directory", path)
	}
	name := filepath.Base(path)
	return FilePayload{
		Name:        name,
		Size:        info.Size(),
		ContentType: contentTypeFor(name),
		Reader:      f,
	}, nil
}

// FromBytes wraps an in-memory file.
func FromBytes(name string, data []byte) FilePayload {
	return FilePayload{
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentTypeFor(name),
		Reader:      bytes.NewReader(data),
	}
}

// Close closes the underlying reader when it is closable.
func (p FilePayload) Close() error {
	if c, ok := p.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func contentTypeFor(name string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); ct != "" {
		return ct
	}
	return defaultContentType
}

// ProgressFunc receives upload progress as a percentage in [0, 100].
type ProgressFunc func(percent int)

// progressSink serializes progress reports, drops regressions and goes
// silent once the upload has settled.
type progressSink struct {
	mu      sync.Mutex
	fn      ProgressFunc
	last    int
	settled bool
}

func (s *progressSink) report(percent int) {
	if s == nil || s.fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled || percent <= s.last {
		return
	}
	s.last = percent
	s.fn(percent)
}

// settle optionally emits the final value and blocks all later reports.
func (s *progressSink) settle(final int) {
	if s == nil || s.fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settled {
		return
	}
	if final > s.last {
		s.last = final
		s.fn(final)
	}
	s.settled = true
}

type countingReader struct {
	r     io.Reader
	sent  int64
	total int64
	sink  *progressSink
	sized *sizedReader // nil when the size is unknown
}

// short reports whether the file ran out before its declared size.
func (c *countingReader) short() bool {
	return c.sized != nil && c.sized.short.Load()
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 && c.total > 0 {
		c.sent += int64(n)
		// Hold back 100 until the response confirms success.
		pct := int(c.sent * 100 / c.total)
		if pct > 99 {
			pct = 99
		}
		c.sink.report(pct)
	}
	return n, err
}

// MultipartUpload streams file as the multipart field "file" to path and
// decodes a 2xx response into T. onProgress may be nil. Uploads are not
// cancelled by ctx; they run until completion or transport failure.
func MultipartUpload[T any](ctx context.Context, c *Client, path string, file FilePayload, onProgress ProgressFunc) Outcome[T] {
	sink := &progressSink{fn: onProgress, last: -1}
	start := time.Now()

	body, contentType, length, err := multipartBody(file, sink)
	if err != nil {
		sink.settle(-1)
		out := Failure[T](malformed("encode upload", err))
		c.observe(http.MethodPost, path, out.Err(), time.Since(start))
		return out
	}

	sink.report(0)
	data, reqErr := c.send(context.WithoutCancel(ctx), http.MethodPost, path, contentType, body, length)
	if reqErr != nil && reqErr.Kind == KindUnreachable && body.short() {
		reqErr = malformed("encode upload", errPayloadShort)
	}
	out := decode[T](data, reqErr)
	if out.OK() {
		sink.settle(100)
	} else {
		sink.settle(-1)
	}
	c.observe(http.MethodPost, path, out.Err(), time.Since(start))
	return out
}

// multipartBody frames file between a precomputed part header and closing
// boundary so the total length, and therefore progress, is known up front.
func multipartBody(file FilePayload, sink *progressSink) (*countingReader, string, int64, error) {
	if file.Reader == nil {
		return nil, "", 0, fmt.Errorf("upload %q has no content", file.Name)
	}
	name := file.Name
	if name == "" {
		name = "upload"
	}
	ct := file.ContentType
	if ct == "" {
		ct = contentTypeFor(name)
	}

	var head bytes.Buffer
	mw := multipart.NewWriter(&head)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     uploadField,
		"filename": name,
	}))
	hdr.Set("Content-Type", ct)
	if _, err := mw.CreatePart(hdr); err != nil {
		return nil, "", 0, err
	}
	headLen := int64(head.Len())

	var tail bytes.Buffer
	tail.WriteString("\r\n--" + mw.Boundary() + "--\r\n")

	length := int64(-1)
	if file.Size >= 0 {
		length = headLen + file.Size + int64(tail.Len())
	}

	body := &countingReader{total: length, sink: sink}
	content := io.Reader(file.Reader)
	if file.Size >= 0 {
		body.sized = &sizedReader{r: file.Reader, remaining: file.Size}
		content = body.sized
	}
	body.r = io.MultiReader(&head, content, &tail)
	return body, mw.FormDataContentType(), length, nil
}

// sizedReader yields exactly remaining bytes of r. Running out early is
// errPayloadShort rather than EOF so the transport does not mistake a
// shrunken file for a dropped connection.
type sizedReader struct {
	r         io.Reader
	remaining int64
	short     atomic.Bool
}

func (s *sizedReader) Read(p []byte) (int, error) {
	if s.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > s.remaining {
		p = p[:s.remaining]
	}
	n, err := s.r.Read(p)
	s.remaining -= int64(n)
	if errors.Is(err, io.EOF) && s.remaining > 0 {
		s.short.Store(true)
		return n, fmt.Errorf("%w: %d bytes missing", errPayloadShort, s.remaining)
	}
	if err == io.EOF {
		err = nil
	}
	return n, err
}
