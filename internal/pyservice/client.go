// Package pyservice is the HTTP client for the Python route-video
// service that fetches Street View frames, smooths headings,
// interpolates frames and encodes videos.
package pyservice

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/metrics"
)

const maxErrorBody = 2048

type Client struct {
	baseURL string
	http    *http.Client
	// stream has no overall timeout; video bodies can outlive it.
	stream *http.Client
	cb     *gobreaker.CircuitBreaker[[]byte]
}

// New returns a client for baseURL with a fixed per-call timeout.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		stream:  &http.Client{},
		cb:      newBreaker(),
	}
}

// Ready reports ErrUnavailable while the circuit breaker is open.
func (c *Client) Ready(context.Context) error {
	if c.cb.State() == gobreaker.StateOpen {
		return breakerErr(gobreaker.ErrOpenState)
	}
	return nil
}

func (c *Client) GenerateFrames(ctx context.Context, req GenerateFramesRequest) (*GenerateFramesResponse, error) {
	var resp GenerateFramesResponse
	if err := c.postJSON(ctx, "/generate_frames", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		msg := resp.Error
		if resp.Message != "" {
			msg += ": " + resp.Message
		}
		return nil, &ServiceError{Endpoint: "/generate_frames", Message: msg}
	}
	return &resp, nil
}

func (c *Client) Smooth(ctx context.Context, req FramesRequest) (*SmoothResponse, error) {
	var resp SmoothResponse
	if err := c.postJSON(ctx, "/smooth", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Smoothed {
		return nil, &ServiceError{Endpoint: "/smooth", Message: "smoothing failed"}
	}
	return &resp, nil
}

func (c *Client) RegenerateFrames(ctx context.Context, req FramesRequest) (*RegenerateResponse, error) {
	var resp RegenerateResponse
	if err := c.postJSON(ctx, "/regenerate_frames", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServiceError{Endpoint: "/regenerate_frames", Message: orDefault(resp.Error, "regeneration failed")}
	}
	return &resp, nil
}

func (c *Client) InterpolateFrames(ctx context.Context, req InterpolateRequest) (*InterpolateResponse, error) {
	var resp InterpolateResponse
	if err := c.postJSON(ctx, "/interpolate_frames", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServiceError{Endpoint: "/interpolate_frames", Message: orDefault(resp.Error, "interpolation failed")}
	}
	return &resp, nil
}

func (c *Client) ProcessCompletePipeline(ctx context.Context, req PipelineRequest) (*PipelineResponse, error) {
	var resp PipelineResponse
	if err := c.postJSON(ctx, "/process_complete_pipeline", req, &resp); err != nil {
		return nil, err
	}
	if !resp.PipelineSuccess {
		return nil, &ServiceError{Endpoint: "/process_complete_pipeline", Message: orDefault(resp.Error, "pipeline failed")}
	}
	return &resp, nil
}

func (c *Client) GenerateVideo(ctx context.Context, req VideoRequest) (*VideoResponse, error) {
	var resp VideoResponse
	if err := c.postJSON(ctx, "/generate_video", req, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &ServiceError{Endpoint: "/generate_video", Message: orDefault(resp.Error, "video generation failed")}
	}
	return &resp, nil
}

// CheckExistingRoute asks the service whether it already holds a
// processed route with a video for these parameters.
func (c *Client) CheckExistingRoute(ctx context.Context, req CacheCheckRequest) (*CacheCheckResponse, error) {
	var resp CacheCheckResponse
	if err := c.postJSON(ctx, "/check_existing_route", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, &ServiceError{Endpoint: "/check_existing_route", Message: resp.Error}
	}
	return &resp, nil
}

// CheckVideo reports whether the video file is still on the service's disk.
func (c *Client) CheckVideo(ctx context.Context, routeID, filename string) (bool, error) {
	path := "/check_video/" + url.PathEscape(routeID) + "/" + url.PathEscape(filename)
	var resp checkVideoResponse
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return false, err
	}
	if resp.Error != "" {
		return false, &ServiceError{Endpoint: "/check_video", Message: resp.Error}
	}
	return resp.Exists, nil
}

// StreamVideo opens the video body. rangeHeader is forwarded as-is.
// The caller must close the response body.
func (c *Client) StreamVideo(ctx context.Context, routeID, filename, rangeHeader string) (*http.Response, error) {
	const endpoint = "/videos"
	if c.cb.State() == gobreaker.StateOpen {
		c.observe(endpoint, ErrUnavailable, time.Now())
		return nil, breakerErr(gobreaker.ErrOpenState)
	}

	u := c.baseURL + "/videos/" + url.PathEscape(routeID) + "/" + url.PathEscape(filename)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if rangeHeader != "" {
		req.Header.Set("Range", rangeHeader)
	}

	start := time.Now()
	resp, err := c.stream.Do(req)
	if err != nil {
		err = classify(err)
		c.observe(endpoint, err, start)
		return nil, err
	}

	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		err := httpError(endpoint, resp)
		c.observe(endpoint, err, start)
		return nil, err
	}
	// The service answers missing files with a 200 JSON error body.
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		defer resp.Body.Close()
		var body errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&body)
		c.observe(endpoint, ErrVideoNotFound, start)
		return nil, ErrVideoNotFound
	}

	c.observe(endpoint, nil, start)
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	label := metricLabel(endpoint)
	start := time.Now()

	raw, err := c.cb.Execute(func() ([]byte, error) {
		var rdr io.Reader
		if body != nil {
			rdr = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, rdr)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, classify(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			return nil, httpError(label, resp)
		}
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, classify(err)
		}
		return b, nil
	})
	err = breakerErr(err)
	if err == nil {
		if uerr := json.Unmarshal(raw, out); uerr != nil {
			err = &ServiceError{Endpoint: label, Message: "invalid JSON response: " + uerr.Error()}
		}
	}
	c.observe(label, err, start)
	return err
}

func (c *Client) observe(endpoint string, err error, start time.Time) {
	kind := Kind(err)
	metrics.PythonRequests.WithLabelValues(endpoint, kind).Inc()
	metrics.PythonLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		logging.Warn().Err(err).Str("endpoint", endpoint).Str("kind", kind).
			Dur("elapsed", time.Since(start)).Msg("[pyservice] call failed")
		return
	}
	logging.Debug().Str("endpoint", endpoint).Dur("elapsed", time.Since(start)).Msg("[pyservice] call ok")
}

func httpError(endpoint string, resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(b))
	var eb errorBody
	if json.Unmarshal(b, &eb) == nil {
		switch {
		case eb.Error != "":
			msg = eb.Error
		case eb.Detail != nil:
			msg = stringify(eb.Detail)
		}
	}
	return &HTTPError{Endpoint: endpoint, Status: resp.StatusCode, Body: msg}
}

// metricLabel strips path parameters so label cardinality stays fixed.
func metricLabel(endpoint string) string {
	if strings.HasPrefix(endpoint, "/check_video/") {
		return "/check_video"
	}
	return endpoint
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, _ := json.Marshal(v)
	return string(b)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
