package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bharath13925/street-view-videos-sub000/internal/cache"
	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/metrics"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"
	"github.com/bharath13925/street-view-videos-sub000/internal/pyservice"
	"github.com/bharath13925/street-view-videos-sub000/internal/validation"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// RouteStore is the persistence RouteService needs; implemented by
// repository.RouteRepository.
type RouteStore interface {
	Upsert(ctx context.Context, route *models.Route) error
	Replace(ctx context.Context, route *models.Route) error
	FindByID(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error)
	FindByPythonID(ctx context.Context, userID, pythonRouteID string) (*models.Route, error)
	FindLatestWithVideo(ctx context.Context, start, end string) (*models.Route, error)
	FindByUser(ctx context.Context, userID string, limit, offset int) ([]models.Route, error)
	MarkFailed(ctx context.Context, id primitive.ObjectID, msg string) error
	ClearVideo(ctx context.Context, id primitive.ObjectID) error
	Delete(ctx context.Context, userID string, id primitive.ObjectID) (bool, error)
}

// PythonClient is implemented by *pyservice.Client.
type PythonClient interface {
	GenerateFrames(ctx context.Context, req pyservice.GenerateFramesRequest) (*pyservice.GenerateFramesResponse, error)
	Smooth(ctx context.Context, req pyservice.FramesRequest) (*pyservice.SmoothResponse, error)
	RegenerateFrames(ctx context.Context, req pyservice.FramesRequest) (*pyservice.RegenerateResponse, error)
	InterpolateFrames(ctx context.Context, req pyservice.InterpolateRequest) (*pyservice.InterpolateResponse, error)
	ProcessCompletePipeline(ctx context.Context, req pyservice.PipelineRequest) (*pyservice.PipelineResponse, error)
	GenerateVideo(ctx context.Context, req pyservice.VideoRequest) (*pyservice.VideoResponse, error)
	CheckExistingRoute(ctx context.Context, req pyservice.CacheCheckRequest) (*pyservice.CacheCheckResponse, error)
	CheckVideo(ctx context.Context, routeID, filename string) (bool, error)
	StreamVideo(ctx context.Context, routeID, filename, rangeHeader string) (*http.Response, error)
}

type RouteService struct {
	routes        RouteStore
	py            PythonClient
	videoCheckTTL time.Duration
	now           func() time.Time
}

func NewRouteService(routes RouteStore, py PythonClient, videoCheckTTL time.Duration) *RouteService {
	return &RouteService{
		routes:        routes,
		py:            py,
		videoCheckTTL: videoCheckTTL,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// LookupResult is the outcome of an existing-route lookup or a cached
// pipeline run.
type LookupResult struct {
	Found  bool          `json:"found"`
	Cached bool          `json:"cached"`
	Source string        `json:"source,omitempty"`
	Route  *models.Route `json:"route,omitempty"`
}

// ================== STEP BY STEP ==================

// GenerateFrames fetches raw frames for start→end and stores a new route
// (or refreshes the caller's route with the same Python id).
func (s *RouteService) GenerateFrames(ctx context.Context, userID string, in GenerateFramesInput) (*models.Route, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	route := &models.Route{
		UserID:              userID,
		Start:               in.Start,
		End:                 in.End,
		PythonRouteID:       models.PythonRouteID(in.Start, in.End),
		Status:              models.RouteStatusPending,
		EnableAlerts:        *in.EnableAlerts,
		InterpolationFactor: DefaultInterpolationFactor,
	}
	if err := s.generateFrames(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

func (s *RouteService) SmoothRoute(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error) {
	route, err := s.GetRoute(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return route, s.smooth(ctx, route)
}

func (s *RouteService) RegenerateRoute(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error) {
	route, err := s.GetRoute(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return route, s.regenerate(ctx, route)
}

// InterpolateRoute runs optical-flow interpolation; factor 0 keeps the
// route's current factor.
func (s *RouteService) InterpolateRoute(ctx context.Context, userID string, id primitive.ObjectID, factor int) (*models.Route, error) {
	if factor < 0 || factor > 8 {
		return nil, fmt.Errorf("%w: interpolationFactor must be between 1 and 8", ErrInvalidInput)
	}
	route, err := s.GetRoute(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if factor > 0 {
		route.InterpolationFactor = factor
	}
	return route, s.interpolate(ctx, route)
}

func (s *RouteService) GenerateVideo(ctx context.Context, userID string, id primitive.ObjectID, opts VideoOptions) (*models.Route, error) {
	if err := opts.normalize(); err != nil {
		return nil, err
	}
	route, err := s.GetRoute(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return route, s.generateVideo(ctx, route, opts)
}

// RunStepwise runs frames → smooth → regenerate → interpolate → video,
// calling progress after every stored step.
func (s *RouteService) RunStepwise(ctx context.Context, userID string, in PipelineInput, progress func(step string, route *models.Route)) (*models.Route, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(string, *models.Route) {}
	}

	route := &models.Route{
		UserID:              userID,
		Start:               in.Start,
		End:                 in.End,
		PythonRouteID:       models.PythonRouteID(in.Start, in.End),
		Status:              models.RouteStatusPending,
		EnableAlerts:        *in.EnableAlerts,
		InterpolationFactor: in.InterpolationFactor,
	}

	steps := []struct {
		name string
		run  func() error
	}{
		{models.RouteStatusFramesGenerated, func() error { return s.generateFrames(ctx, route) }},
		{models.RouteStatusSmoothed, func() error { return s.smooth(ctx, route) }},
		{models.RouteStatusRegenerated, func() error { return s.regenerate(ctx, route) }},
		{models.RouteStatusInterpolated, func() error { return s.interpolate(ctx, route) }},
		{models.RouteStatusCompleted, func() error { return s.generateVideo(ctx, route, in.videoOptions()) }},
	}
	for _, st := range steps {
		if err := st.run(); err != nil {
			return route, fmt.Errorf("%s: %w", st.name, err)
		}
		progress(st.name, route)
	}
	return route, nil
}

// ================== ONE SHOT / CACHED ==================

// ProcessCompletePipeline lets the Python service run every step in one
// call and stores the final frames. No video is generated.
func (s *RouteService) ProcessCompletePipeline(ctx context.Context, userID string, in PipelineInput) (*models.Route, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	return s.processPipeline(ctx, userID, in)
}

// CheckExistingRoute looks for a finished route with a playable video,
// first in MongoDB and then in the Python service's own cache.
func (s *RouteService) CheckExistingRoute(ctx context.Context, userID string, in PipelineInput) (*LookupResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	return s.lookup(ctx, userID, in)
}

// ProcessCompletePipelineWithVideoCached returns a cached route with
// video when one exists, otherwise runs the pipeline and renders the video.
func (s *RouteService) ProcessCompletePipelineWithVideoCached(ctx context.Context, userID string, in PipelineInput) (*LookupResult, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}

	res, err := s.lookup(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if res.Found {
		return res, nil
	}

	route, err := s.processPipeline(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	if err := s.generateVideo(ctx, route, in.videoOptions()); err != nil {
		return nil, err
	}
	return &LookupResult{Found: true, Cached: false, Source: models.SourceGenerated, Route: route}, nil
}

// ================== READS ==================

func (s *RouteService) ListRoutes(ctx context.Context, userID string, limit, offset int) ([]models.RouteSummary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	} else if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	routes, err := s.routes.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]models.RouteSummary, 0, len(routes))
	for i := range routes {
		out = append(out, routes[i].Summary())
	}
	return out, nil
}

func (s *RouteService) GetRoute(ctx context.Context, userID string, id primitive.ObjectID) (*models.Route, error) {
	route, err := s.routes.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if route == nil {
		return nil, ErrNotFound
	}
	return route, nil
}

func (s *RouteService) DeleteRoute(ctx context.Context, userID string, id primitive.ObjectID) error {
	ok, err := s.routes.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

// OpenVideo opens the video stream of one of the caller's routes. The
// caller closes the response body.
func (s *RouteService) OpenVideo(ctx context.Context, userID string, id primitive.ObjectID, rangeHeader string) (*http.Response, *models.Route, error) {
	route, err := s.GetRoute(ctx, userID, id)
	if err != nil {
		return nil, nil, err
	}
	return s.openVideo(ctx, route, rangeHeader)
}

// OpenVideoByName resolves a stored video URL (/api/videos/<routeId>/<file>).
func (s *RouteService) OpenVideoByName(ctx context.Context, userID, pythonRouteID, filename, rangeHeader string) (*http.Response, *models.Route, error) {
	route, err := s.routes.FindByPythonID(ctx, userID, pythonRouteID)
	if err != nil {
		return nil, nil, err
	}
	if route == nil || route.Video == nil || route.Video.Filename != filename {
		return nil, nil, ErrNotFound
	}
	return s.openVideo(ctx, route, rangeHeader)
}

func (s *RouteService) openVideo(ctx context.Context, route *models.Route, rangeHeader string) (*http.Response, *models.Route, error) {
	if route.Video == nil || route.Video.Filename == "" {
		return nil, nil, ErrNotFound
	}
	resp, err := s.py.StreamVideo(ctx, route.PythonRouteID, route.Video.Filename, rangeHeader)
	if errors.Is(err, pyservice.ErrVideoNotFound) {
		s.dropStaleVideo(ctx, route)
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return resp, route, nil
}

// ================== INTERNAL STEPS ==================

func (s *RouteService) generateFrames(ctx context.Context, route *models.Route) error {
	resp, err := s.py.GenerateFrames(ctx, pyservice.GenerateFramesRequest{
		Start:        route.Start,
		End:          route.End,
		EnableAlerts: route.EnableAlerts,
	})
	if err != nil {
		return s.fail(ctx, route, "generate_frames", err)
	}
	if resp.RouteID != "" {
		route.PythonRouteID = resp.RouteID
	}
	route.Frames = resp.Frames
	route.VOHeadings = resp.VOHeadings
	route.DirectionsData = resp.DirectionsData
	route.NavigationStats = resp.NavigationStats
	route.Video = nil
	route.ProcessingStats = map[string]any{"original_frames": len(resp.Frames)}
	route.Status = models.RouteStatusFramesGenerated
	route.Source = models.SourceGenerated
	return s.save(ctx, route)
}

func (s *RouteService) smooth(ctx context.Context, route *models.Route) error {
	if len(route.Frames) == 0 {
		return fmt.Errorf("%w: route has no frames to smooth", ErrInvalidInput)
	}
	resp, err := s.py.Smooth(ctx, pyservice.FramesRequest{RouteID: route.PythonRouteID, Frames: route.Frames})
	if err != nil {
		return s.fail(ctx, route, "smooth", err)
	}
	route.Frames = resp.Frames
	route.Status = models.RouteStatusSmoothed
	setStat(route, "smoothed_frames", len(resp.Frames))
	return s.save(ctx, route)
}

func (s *RouteService) regenerate(ctx context.Context, route *models.Route) error {
	if !hasSmoothedHeadings(route.Frames) {
		return fmt.Errorf("%w: route has no smoothed headings, smooth it first", ErrInvalidInput)
	}
	resp, err := s.py.RegenerateFrames(ctx, pyservice.FramesRequest{RouteID: route.PythonRouteID, Frames: route.Frames})
	if err != nil {
		return s.fail(ctx, route, "regenerate_frames", err)
	}
	route.Frames = resp.Frames
	route.Status = models.RouteStatusRegenerated
	setStat(route, "regenerated_frames", resp.RegeneratedCount)
	return s.save(ctx, route)
}

func (s *RouteService) interpolate(ctx context.Context, route *models.Route) error {
	if len(route.Frames) < 2 {
		return fmt.Errorf("%w: interpolation needs at least 2 frames", ErrInvalidInput)
	}
	if route.InterpolationFactor <= 0 {
		route.InterpolationFactor = DefaultInterpolationFactor
	}
	resp, err := s.py.InterpolateFrames(ctx, pyservice.InterpolateRequest{
		RouteID:             route.PythonRouteID,
		Frames:              route.Frames,
		InterpolationFactor: route.InterpolationFactor,
	})
	if err != nil {
		return s.fail(ctx, route, "interpolate_frames", err)
	}
	route.Frames = resp.Frames
	route.Status = models.RouteStatusInterpolated
	setStat(route, "interpolated_frames", resp.InterpolatedCount)
	setStat(route, "total_final_frames", resp.TotalCount)
	setStat(route, "overlays_applied", resp.OverlaysApplied)
	return s.save(ctx, route)
}

func (s *RouteService) generateVideo(ctx context.Context, route *models.Route, opts VideoOptions) error {
	if len(route.Frames) == 0 {
		return fmt.Errorf("%w: route has no frames to render", ErrInvalidInput)
	}
	resp, err := s.py.GenerateVideo(ctx, pyservice.VideoRequest{
		RouteID:             route.PythonRouteID,
		FPS:                 opts.FPS,
		OutputFormat:        opts.OutputFormat,
		Quality:             opts.Quality,
		IncludeInterpolated: *opts.IncludeInterpolated,
	})
	if err != nil {
		return s.fail(ctx, route, "generate_video", err)
	}

	route.Video = videoFromStats(route.PythonRouteID, resp.VideoFilename, resp.VideoPath, resp.VideoStats, opts, s.now())
	route.Status = models.RouteStatusCompleted
	if err := s.save(ctx, route); err != nil {
		return err
	}
	forgetVideoCheck(ctx, route.PythonRouteID, route.Video.Filename)
	return nil
}

func (s *RouteService) processPipeline(ctx context.Context, userID string, in PipelineInput) (*models.Route, error) {
	route := &models.Route{
		UserID:              userID,
		Start:               in.Start,
		End:                 in.End,
		PythonRouteID:       models.PythonRouteID(in.Start, in.End),
		Status:              models.RouteStatusPending,
		EnableAlerts:        *in.EnableAlerts,
		InterpolationFactor: in.InterpolationFactor,
	}

	resp, err := s.py.ProcessCompletePipeline(ctx, pyservice.PipelineRequest{
		Start:               in.Start,
		End:                 in.End,
		InterpolationFactor: in.InterpolationFactor,
		EnableAlerts:        *in.EnableAlerts,
	})
	if err != nil {
		// nothing stored yet unless an earlier run left a document behind
		if prev, ferr := s.routes.FindByPythonID(ctx, userID, route.PythonRouteID); ferr == nil && prev != nil {
			route = prev
		}
		return nil, s.fail(ctx, route, "process_complete_pipeline", err)
	}

	if resp.RouteID != "" {
		route.PythonRouteID = resp.RouteID
	}
	route.Frames = resp.FinalFrames
	route.VOHeadings = resp.VOHeadings
	route.DirectionsData = resp.DirectionsData
	route.NavigationStats = resp.NavigationStats
	route.ProcessingStats = resp.Statistics
	route.Video = nil
	route.Status = models.RouteStatusInterpolated
	route.Source = models.SourceGenerated
	if err := s.save(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// lookup implements the existing-route check:
//  1. newest MongoDB route for start/end with a video whose file still exists
//  2. the Python service's cache-check endpoint
//
// A stale database video is cleared before falling through.
func (s *RouteService) lookup(ctx context.Context, userID string, in PipelineInput) (*LookupResult, error) {
	log := logging.Ctx(ctx)

	existing, err := s.routes.FindLatestWithVideo(ctx, in.Start, in.End)
	if err != nil {
		return nil, err
	}
	if existing != nil && existing.Video != nil {
		exists, err := s.videoExists(ctx, existing.PythonRouteID, existing.Video.Filename)
		switch {
		case err != nil:
			log.Warn().Err(err).Str("kind", pyservice.Kind(err)).Str("route", existing.PythonRouteID).
				Msg("could not confirm stored video, asking python cache")
		case exists:
			route, err := s.adopt(ctx, userID, existing)
			if err != nil {
				return nil, err
			}
			metrics.RouteLookups.WithLabelValues(models.SourceDatabase).Inc()
			log.Info().Str("route", route.PythonRouteID).Msg("cache hit in database")
			return &LookupResult{Found: true, Cached: true, Source: models.SourceDatabase, Route: route}, nil
		default:
			log.Info().Str("route", existing.PythonRouteID).Str("video", existing.Video.Filename).
				Msg("stored video missing on python service, clearing")
			s.dropStaleVideo(ctx, existing)
		}
	}

	resp, err := s.py.CheckExistingRoute(ctx, pyservice.CacheCheckRequest{
		Start:               in.Start,
		End:                 in.End,
		InterpolationFactor: in.InterpolationFactor,
		VideoFPS:            in.FPS,
		VideoQuality:        in.Quality,
	})
	if err != nil {
		log.Warn().Err(err).Str("kind", pyservice.Kind(err)).Msg("python cache check failed, treating as miss")
		metrics.RouteLookups.WithLabelValues("miss").Inc()
		return &LookupResult{}, nil
	}
	if !resp.Exists || !resp.VideoAvailable {
		metrics.RouteLookups.WithLabelValues("miss").Inc()
		return &LookupResult{}, nil
	}

	route, err := s.fromCacheCheck(ctx, userID, in, resp)
	if err != nil {
		return nil, err
	}
	metrics.RouteLookups.WithLabelValues(models.SourcePythonCache).Inc()
	log.Info().Str("route", route.PythonRouteID).Msg("cache hit in python service")
	return &LookupResult{Found: true, Cached: true, Source: models.SourcePythonCache, Route: route}, nil
}

// adopt returns src as the caller's route, copying it when another user
// produced it.
func (s *RouteService) adopt(ctx context.Context, userID string, src *models.Route) (*models.Route, error) {
	if src.UserID == userID {
		return src, nil
	}
	cp := *src
	cp.ID = primitive.NilObjectID
	cp.UserID = userID
	cp.Source = models.SourceDatabase
	cp.CreatedAt = time.Time{}
	if cp.Status == "" {
		// written before statuses were stored; it has a video
		cp.Status = models.RouteStatusCompleted
	}
	if err := s.save(ctx, &cp); err != nil {
		return nil, err
	}
	return &cp, nil
}

func (s *RouteService) fromCacheCheck(ctx context.Context, userID string, in PipelineInput, resp *pyservice.CacheCheckResponse) (*models.Route, error) {
	pyID := resp.RouteID
	if pyID == "" {
		pyID = models.PythonRouteID(in.Start, in.End)
	}

	stats := resp.ProcessingStats
	if len(stats) == 0 {
		stats = models.FrameStats(resp.Frames)
	}

	var vs pyservice.VideoStats
	if resp.VideoStats != nil {
		vs = *resp.VideoStats
	}
	route := &models.Route{
		UserID:              userID,
		Start:               in.Start,
		End:                 in.End,
		PythonRouteID:       pyID,
		Status:              models.RouteStatusCompleted,
		Frames:              resp.Frames,
		InterpolationFactor: in.InterpolationFactor,
		EnableAlerts:        *in.EnableAlerts,
		ProcessingStats:     stats,
		Source:              models.SourcePythonCache,
		Video:               videoFromStats(pyID, resp.VideoFilename, resp.VideoPath, vs, in.videoOptions(), s.now()),
	}

	// keep what an earlier run stored that the cache check does not return
	if prev, err := s.routes.FindByPythonID(ctx, userID, pyID); err == nil && prev != nil {
		route.VOHeadings = prev.VOHeadings
		route.DirectionsData = prev.DirectionsData
		route.NavigationStats = prev.NavigationStats
	}
	if err := s.save(ctx, route); err != nil {
		return nil, err
	}
	return route, nil
}

// videoExists asks the Python service whether the file is still there.
// Positive answers are cached in Redis for videoCheckTTL.
func (s *RouteService) videoExists(ctx context.Context, pythonRouteID, filename string) (bool, error) {
	key := videoCheckKey(pythonRouteID, filename)
	var cached bool
	if ok, err := cache.GetJSON(ctx, key, &cached); err == nil && ok && cached {
		return true, nil
	}

	exists, err := s.py.CheckVideo(ctx, pythonRouteID, filename)
	if err != nil {
		return false, err
	}
	if exists && s.videoCheckTTL > 0 {
		if err := cache.SetJSON(ctx, key, true, s.videoCheckTTL); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("caching video check failed")
		}
	}
	return exists, nil
}

func (s *RouteService) dropStaleVideo(ctx context.Context, route *models.Route) {
	ctx = context.WithoutCancel(ctx)
	if route.Video != nil {
		forgetVideoCheck(ctx, route.PythonRouteID, route.Video.Filename)
	}
	if err := s.routes.ClearVideo(ctx, route.ID); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("route", route.ID.Hex()).Msg("clearing stale video failed")
	}
	route.Video = nil
	route.Status = models.RouteStatusInterpolated
}

// save validates route and writes it, merging into the caller's existing
// document for the same Python route id.
func (s *RouteService) save(ctx context.Context, route *models.Route) error {
	now := s.now()
	route.UpdatedAt = now
	route.Error = ""

	if err := validation.Struct(route); err != nil {
		return fmt.Errorf("route document rejected: %w", err)
	}

	if route.ID.IsZero() {
		if route.CreatedAt.IsZero() {
			route.CreatedAt = now
		}
		return s.routes.Upsert(ctx, route)
	}
	if route.CreatedAt.IsZero() {
		route.CreatedAt = now
	}
	return s.routes.Replace(ctx, route)
}

// fail marks a stored route as failed and returns err wrapped with the step.
func (s *RouteService) fail(ctx context.Context, route *models.Route, step string, err error) error {
	logging.Ctx(ctx).Error().Err(err).Str("step", step).Str("kind", pyservice.Kind(err)).
		Str("route", route.PythonRouteID).Msg("python step failed")

	if !route.ID.IsZero() {
		route.Status = models.RouteStatusFailed
		route.Error = err.Error()
		if merr := s.routes.MarkFailed(context.WithoutCancel(ctx), route.ID, err.Error()); merr != nil {
			logging.Ctx(ctx).Warn().Err(merr).Msg("marking route failed")
		}
	}
	return err
}

func videoFromStats(pyID, filename, path string, vs pyservice.VideoStats, opts VideoOptions, now time.Time) *models.VideoInfo {
	if filename == "" {
		filename = vs.VideoFilename
	}
	if filename == "" {
		filename = models.VideoFilename(pyID, opts.FPS)
	}
	if path == "" {
		path = vs.VideoPath
	}
	fps := vs.FPS
	if fps == 0 {
		fps = opts.FPS
	}
	quality := vs.Quality
	if quality == "" {
		quality = opts.Quality
	}
	return &models.VideoInfo{
		Filename:           filename,
		Path:               models.NormalizeFramePath(path),
		URL:                models.VideoURL(pyID, filename),
		FPS:                fps,
		Quality:            quality,
		FileSizeMB:         vs.FileSizeMB,
		DurationSeconds:    vs.DurationSeconds,
		Resolution:         vs.Resolution,
		TotalSourceFrames:  vs.TotalSourceFrames,
		TotalWrittenFrames: vs.TotalWrittenFrames,
		SpeedType:          vs.SpeedType,
		GeneratedAt:        now,
	}
}

func videoCheckKey(pythonRouteID, filename string) string {
	return "video:exists:" + pythonRouteID + ":" + filename
}

func forgetVideoCheck(ctx context.Context, pythonRouteID, filename string) {
	if err := cache.Delete(ctx, videoCheckKey(pythonRouteID, filename)); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("route", pythonRouteID).Msg("dropping cached video check failed")
	}
}

func setStat(route *models.Route, key string, v any) {
	if route.ProcessingStats == nil {
		route.ProcessingStats = map[string]any{}
	}
	route.ProcessingStats[key] = v
}

func hasSmoothedHeadings(frames []models.Frame) bool {
	for _, f := range frames {
		if f.SmoothedHeading != nil {
			return true
		}
	}
	return false
}
