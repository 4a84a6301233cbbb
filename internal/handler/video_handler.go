package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
)

// headers forwarded from the route service so browsers can seek
var videoHeaders = []string{"Content-Type", "Content-Length", "Content-Range", "Accept-Ranges", "Last-Modified", "ETag"}

// @Summary Stream a route's video
// @Tags videos
// @Security BearerAuth
// @Produce video/mp4
// @Param id path string true "route id"
// @Param token query string false "Firebase ID token when no Authorization header can be sent"
// @Success 200 {file} binary
// @Success 206 {file} binary
// @Failure 404 {object} errorResponse
// @Router /api/routes/{id}/video [get]
func (h *RouteHandler) StreamVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	resp, _, err := h.svc.OpenVideo(r.Context(), UserIDFromContext(r.Context()), id, r.Header.Get("Range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	proxyVideo(w, r, resp)
}

// @Summary Stream a video by its stored URL
// @Tags videos
// @Security BearerAuth
// @Produce video/mp4
// @Param routeId path string true "python route id"
// @Param filename path string true "video file name"
// @Param token query string false "Firebase ID token when no Authorization header can be sent"
// @Success 200 {file} binary
// @Failure 404 {object} errorResponse
// @Router /api/videos/{routeId}/{filename} [get]
func (h *RouteHandler) StreamVideoByName(w http.ResponseWriter, r *http.Request) {
	resp, _, err := h.svc.OpenVideoByName(r.Context(), UserIDFromContext(r.Context()),
		chi.URLParam(r, "routeId"), chi.URLParam(r, "filename"), r.Header.Get("Range"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	proxyVideo(w, r, resp)
}

func proxyVideo(w http.ResponseWriter, r *http.Request, resp *http.Response) {
	defer resp.Body.Close()

	for _, k := range videoHeaders {
		if v := resp.Header.Get(k); v != "" {
			w.Header().Set(k, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "video/mp4")
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		// clients routinely drop the connection while seeking
		logging.Ctx(r.Context()).Debug().Err(err).Msg("video stream interrupted")
	}
}
