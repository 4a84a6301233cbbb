package pyservice

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bharath13925/street-view-videos-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestGenerateFrames(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate_frames", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Gachibowli", body["start"])
		assert.Equal(t, true, body["enable_alerts"])

		writeJSON(w, map[string]any{
			"route_id": "Gachibowli_Hitech_City",
			"frames": []map[string]any{
				{"lat": 17.44, "lon": 78.34, "heading": 91.5, "smoothedHeading": nil, "filename": "frames/x/frame_1.jpg", "interpolated": false},
				{"lat": 17.45, "lon": 78.35, "heading": 93.0, "filename": "frames/x/frame_2.jpg", "alert": "Turn right in 80m", "alertType": "turn", "alertDistance": 80, "alertIcon": "turn-right", "priority": 1},
			},
			"vo_headings":      []any{nil, 92.1},
			"directions_data":  map[string]any{"status": "OK"},
			"navigation_stats": map[string]any{"total_turns": 1},
			"cached":           false,
		})
	})

	resp, err := c.GenerateFrames(context.Background(), GenerateFramesRequest{Start: "Gachibowli", End: "Hitech City", EnableAlerts: true})
	require.NoError(t, err)
	assert.Equal(t, "Gachibowli_Hitech_City", resp.RouteID)
	require.Len(t, resp.Frames, 2)
	assert.Nil(t, resp.Frames[0].SmoothedHeading)
	assert.Equal(t, models.AlertTypeTurn, resp.Frames[1].AlertType)
	require.NotNil(t, resp.Frames[1].AlertDistance)
	assert.Equal(t, 80.0, *resp.Frames[1].AlertDistance)
	require.Len(t, resp.VOHeadings, 2)
	assert.Nil(t, resp.VOHeadings[0])
	assert.Equal(t, "OK", resp.DirectionsData["status"])
}

func TestGenerateFramesServiceError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"error": "ZERO_RESULTS", "message": "no route"})
	})

	_, err := c.GenerateFrames(context.Background(), GenerateFramesRequest{Start: "a", End: "b"})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ZERO_RESULTS: no route", se.Message)
	assert.Equal(t, "service_error", Kind(err))
}

func TestSmoothNotSmoothed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"route_id": "a_b", "frames": []any{}, "smoothed": false})
	})

	_, err := c.Smooth(context.Background(), FramesRequest{RouteID: "a_b"})
	var se *ServiceError
	require.ErrorAs(t, err, &se)
}

func TestInterpolateSendsFactor(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body InterpolateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 3, body.InterpolationFactor)
		writeJSON(w, map[string]any{
			"route_id": body.RouteID, "frames": []any{map[string]any{"lat": 1, "lon": 2, "heading": 3, "interpolated": true}},
			"interpolated_count": 1, "original_count": 2, "total_count": 3, "overlays_applied": 0, "success": true,
		})
	})

	resp, err := c.InterpolateFrames(context.Background(), InterpolateRequest{RouteID: "a_b", InterpolationFactor: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.TotalCount)
	assert.True(t, resp.Frames[0].Interpolated)
}

func TestHTTPError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"detail":"field required"}`)
	})

	_, err := c.GenerateVideo(context.Background(), VideoRequest{RouteID: "a_b", FPS: 30})
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnprocessableEntity, he.Status)
	assert.Equal(t, "field required", he.Body)
	assert.Equal(t, "/generate_video", he.Endpoint)
}

func TestCheckVideo(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/check_video/a_b/a_b_dynamic_30fps.mp4", r.URL.Path)
		writeJSON(w, map[string]any{"exists": true, "path": "frames/a_b/videos/a_b_dynamic_30fps.mp4"})
	})

	ok, err := c.CheckVideo(context.Background(), "a_b", "a_b_dynamic_30fps.mp4")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheckExistingRoute(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body CacheCheckRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 30, body.VideoFPS)
		writeJSON(w, map[string]any{
			"exists": true, "video_available": true, "route_id": "a_b",
			"frames":         []any{map[string]any{"lat": 1, "lon": 2, "heading": 3}},
			"video_filename": "a_b_dynamic_30fps.mp4",
			"video_stats":    map[string]any{"file_size_mb": 4.2, "fps": 30, "quality": "high"},
		})
	})

	resp, err := c.CheckExistingRoute(context.Background(), CacheCheckRequest{Start: "a", End: "b", VideoFPS: 30, VideoQuality: "high"})
	require.NoError(t, err)
	assert.True(t, resp.VideoAvailable)
	require.NotNil(t, resp.VideoStats)
	assert.Equal(t, 4.2, resp.VideoStats.FileSizeMB)
}

func TestStreamVideo(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/videos/a_b/ok.mp4":
			assert.Equal(t, "bytes=0-3", r.Header.Get("Range"))
			w.Header().Set("Content-Type", "video/mp4")
			w.WriteHeader(http.StatusPartialContent)
			_, _ = io.WriteString(w, "mp4!")
		default:
			writeJSON(w, map[string]any{"error": "Video not found"})
		}
	})

	resp, err := c.StreamVideo(context.Background(), "a_b", "ok.mp4", "bytes=0-3")
	require.NoError(t, err)
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "mp4!", string(b))
	assert.Equal(t, http.StatusPartialContent, resp.StatusCode)

	_, err = c.StreamVideo(context.Background(), "a_b", "gone.mp4", "")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, 50*time.Millisecond)

	_, err := c.Smooth(context.Background(), FramesRequest{RouteID: "a_b"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "timeout", Kind(err))
}

func TestUnavailableTripsBreaker(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := New(url, time.Second)

	for i := 0; i < 5; i++ {
		_, err := c.CheckVideo(context.Background(), "a_b", "v.mp4")
		require.ErrorIs(t, err, ErrUnavailable)
	}

	_, err := c.CheckVideo(context.Background(), "a_b", "v.mp4")
	require.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "circuit breaker is open")
}

func TestHTTPErrorsDoNotTripBreaker(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	for i := 0; i < 8; i++ {
		_, err := c.CheckVideo(context.Background(), "a_b", "v.mp4")
		var he *HTTPError
		require.True(t, errors.As(err, &he), "call %d: %v", i, err)
	}
}

func TestCanceledContextPassesThrough(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"exists": true})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.CheckVideo(ctx, "a_b", "v.mp4")
	assert.ErrorIs(t, err, context.Canceled)
}
