package synthetic

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/brogergvhs/noveltomanga/internal/config"
	"github.com/brogergvhs/noveltomanga/internal/render"
	"github.com/brogergvhs/noveltomanga/internal/util"
)

const ContentType = "image/png"

// ConfigSource hands out the renderer config to draw with. *config.Store
// implements it.
type ConfigSource interface {
	Snapshot() config.RendererConfig
}

// Interceptor returns a middleware that answers requests for synthetic URLs
// with a freshly rendered PNG and forwards every other request unchanged.
func Interceptor(r render.Rasterizer, cfg ConfigSource) util.Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return &interceptor{next: next, r: r, cfg: cfg}
	}
}

type interceptor struct {
	next http.RoundTripper
	r    render.Rasterizer
	cfg  ConfigSource
}

func (it *interceptor) RoundTrip(req *http.Request) (*http.Response, error) {
	page, ok := Decode(req.URL)
	if !ok {
		return it.next.RoundTrip(req)
	}

	if req.Body != nil {
		_ = req.Body.Close()
	}

	body, err := it.renderPNG(page)
	if err != nil {
		return nil, fmt.Errorf("render synthetic page: %w", err)
	}

	return &http.Response{
		Status:     "200 OK",
		StatusCode: http.StatusOK,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header: http.Header{
			"Content-Type":   []string{ContentType},
			"Content-Length": []string{strconv.Itoa(len(body))},
		},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}, nil
}

func (it *interceptor) renderPNG(page string) ([]byte, error) {
	img, err := it.r.Rasterize(page, it.cfg.Snapshot())
	if err != nil {
		return nil, err
	}

	return render.EncodePNG(img)
}
