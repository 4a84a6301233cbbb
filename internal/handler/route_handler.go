package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bharath13925/street-view-videos-sub000/internal/models"
	"github.com/bharath13925/street-view-videos-sub000/internal/service"
)

// RouteAPI is implemented by *service.RouteService.
type RouteAPI interface {
	GenerateFrames(ctx context.Context, userID string, in service.GenerateFramesInput) (*models.Route, error)
	SmoothRoute(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error)
	RegenerateRoute(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error)
	InterpolateRoute(ctx context.Context, userID string, id primitive.ObjectID, factor int) (*models.Route, error)
	GenerateVideo(ctx context.Context, userID string, id primitive.ObjectID, opts service.VideoOptions) (*models.Route, error)
	RunStepwise(ctx context.Context, userID string, in service.PipelineInput, progress func(step string, route *models.Route)) (*models.Route, error)
	ProcessCompletePipeline(ctx context.Context, userID string, in service.PipelineInput) (*models.Route, error)
	CheckExistingRoute(ctx context.Context, userID string, in service.PipelineInput) (*service.LookupResult, error)
	ProcessCompletePipelineWithVideoCached(ctx context.Context, userID string, in service.PipelineInput) (*service.LookupResult, error)
	ListRoutes(ctx context.Context, userID string, limit, offset int) ([]models.RouteSummary, error)
	GetRoute(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error)
	DeleteRoute(ctx context.Context, userID string, id primitive.ObjectID) error
	OpenVideo(ctx context.Context, userID string, id primitive.ObjectID, rangeHeader string) (*http.Response, *models.Route, error)
	OpenVideoByName(ctx context.Context, userID, pythonRouteID, filename, rangeHeader string) (*http.Response, *models.Route, error)
}

type RouteHandler struct {
	svc RouteAPI
}

func NewRouteHandler(s RouteAPI) *RouteHandler {
	return &RouteHandler{svc: s}
}

type interpolateRequest struct {
	InterpolationFactor int `json:"interpolationFactor"`
}

// routeID parses the {id} URL parameter; on failure it has already
// answered the request.
func routeID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid route id", Details: err.Error()})
		return id, false
	}
	return id, true
}

// @Summary Generate Street View frames for a route
// @Tags routes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.GenerateFramesInput true "start and end"
// @Success 201 {object} models.Route
// @Failure 400 {object} errorResponse
// @Failure 502 {object} errorResponse
// @Failure 503 {object} errorResponse
// @Router /api/routes/generate-frames [post]
func (h *RouteHandler) GenerateFrames(w http.ResponseWriter, r *http.Request) {
	var in service.GenerateFramesInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, err)
		return
	}
	route, err := h.svc.GenerateFrames(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, route)
}

// @Summary Smooth frame headings
// @Tags routes
// @Security BearerAuth
// @Produce json
// @Param id path string true "route id"
// @Success 200 {object} models.Route
// @Failure 404 {object} errorResponse
// @Router /api/routes/{id}/smooth [post]
func (h *RouteHandler) Smooth(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.SmoothRoute(r.Context(), UserIDFromContext(r.Context()), id))
}

// @Summary Re-fetch frames with smoothed headings
// @Tags routes
// @Security BearerAuth
// @Produce json
// @Param id path string true "route id"
// @Success 200 {object} models.Route
// @Failure 400 {object} errorResponse
// @Router /api/routes/{id}/regenerate [post]
func (h *RouteHandler) Regenerate(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.RegenerateRoute(r.Context(), UserIDFromContext(r.Context()), id))
}

// @Summary Interpolate intermediate frames
// @Tags routes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "route id"
// @Param body body interpolateRequest false "interpolation factor (1-8)"
// @Success 200 {object} models.Route
// @Router /api/routes/{id}/interpolate [post]
func (h *RouteHandler) Interpolate(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	var body interpolateRequest
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	h.respond(w, r)(h.svc.InterpolateRoute(r.Context(), UserIDFromContext(r.Context()), id, body.InterpolationFactor))
}

// @Summary Render the route video
// @Tags routes
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "route id"
// @Param body body service.VideoOptions false "fps, quality"
// @Success 200 {object} models.Route
// @Router /api/routes/{id}/video [post]
func (h *RouteHandler) GenerateVideo(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	var opts service.VideoOptions
	if err := decodeBody(r, &opts); err != nil {
		badRequest(w, err)
		return
	}
	h.respond(w, r)(h.svc.GenerateVideo(r.Context(), UserIDFromContext(r.Context()), id, opts))
}

// @Summary Run the whole pipeline in the route service (no video)
// @Tags pipeline
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.PipelineInput true "pipeline input"
// @Success 200 {object} models.Route
// @Router /api/routes/process-complete [post]
func (h *RouteHandler) ProcessComplete(w http.ResponseWriter, r *http.Request) {
	var in service.PipelineInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, err)
		return
	}
	h.respond(w, r)(h.svc.ProcessCompletePipeline(r.Context(), UserIDFromContext(r.Context()), in))
}

// @Summary Look for an already rendered route
// @Tags pipeline
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.PipelineInput true "pipeline input"
// @Success 200 {object} service.LookupResult
// @Router /api/routes/check-existing [post]
func (h *RouteHandler) CheckExisting(w http.ResponseWriter, r *http.Request) {
	var in service.PipelineInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, err)
		return
	}
	res, err := h.svc.CheckExistingRoute(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary Cached pipeline with video
// @Description Returns a stored or Python-cached route with video when one exists, otherwise runs the pipeline and renders the video.
// @Tags pipeline
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.PipelineInput true "pipeline input"
// @Success 200 {object} service.LookupResult
// @Router /api/routes/process-complete-video [post]
func (h *RouteHandler) ProcessCompleteVideo(w http.ResponseWriter, r *http.Request) {
	var in service.PipelineInput
	if err := decodeBody(r, &in); err != nil {
		badRequest(w, err)
		return
	}
	res, err := h.svc.ProcessCompletePipelineWithVideoCached(r.Context(), UserIDFromContext(r.Context()), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// @Summary List my routes
// @Tags routes
// @Security BearerAuth
// @Produce json
// @Param limit query int false "max 100 (default 20)"
// @Param offset query int false "offset"
// @Success 200 {array} models.RouteSummary
// @Router /api/routes [get]
func (h *RouteHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	routes, err := h.svc.ListRoutes(r.Context(), UserIDFromContext(r.Context()), limit, offset)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, routes)
}

// @Summary Get a route
// @Tags routes
// @Security BearerAuth
// @Produce json
// @Param id path string true "route id"
// @Success 200 {object} models.Route
// @Failure 404 {object} errorResponse
// @Router /api/routes/{id} [get]
func (h *RouteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	h.respond(w, r)(h.svc.GetRoute(r.Context(), UserIDFromContext(r.Context()), id))
}

// @Summary Delete a route
// @Tags routes
// @Security BearerAuth
// @Param id path string true "route id"
// @Success 204
// @Failure 404 {object} errorResponse
// @Router /api/routes/{id} [delete]
func (h *RouteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := routeID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteRoute(r.Context(), UserIDFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RouteHandler) respond(w http.ResponseWriter, r *http.Request) func(*models.Route, error) {
	return func(route *models.Route, err error) {
		if err != nil {
			writeError(w, r, err)
			return
		}
		if route == nil {
			writeError(w, r, fmt.Errorf("empty route: %w", service.ErrNotFound))
			return
		}
		writeJSON(w, http.StatusOK, route)
	}
}
