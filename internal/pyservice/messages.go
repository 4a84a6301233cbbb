package pyservice

import "github.com/bharath13925/street-view-videos-sub000/internal/models"

// Request and response bodies of the Python route-video service. Field
// names follow the service's snake_case wire format; frames use the
// same camelCase shape as the stored documents.

type GenerateFramesRequest struct {
	Start        string `json:"start"`
	End          string `json:"end"`
	EnableAlerts bool   `json:"enable_alerts"`
}

type GenerateFramesResponse struct {
	RouteID         string         `json:"route_id"`
	Frames          []models.Frame `json:"frames"`
	VOHeadings      []*float64     `json:"vo_headings"`
	DirectionsData  map[string]any `json:"directions_data"`
	NavigationStats map[string]any `json:"navigation_stats"`

	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// FramesRequest is the body of /smooth and /regenerate_frames.
type FramesRequest struct {
	RouteID string         `json:"route_id"`
	Frames  []models.Frame `json:"frames"`
}

type SmoothResponse struct {
	RouteID  string         `json:"route_id"`
	Frames   []models.Frame `json:"frames"`
	Smoothed bool           `json:"smoothed"`
}

type RegenerateResponse struct {
	RouteID          string         `json:"route_id"`
	Frames           []models.Frame `json:"frames"`
	RegeneratedCount int            `json:"regenerated_count"`
	Success          bool           `json:"success"`
	Error            string         `json:"error,omitempty"`
}

type InterpolateRequest struct {
	RouteID             string         `json:"route_id"`
	Frames              []models.Frame `json:"frames"`
	InterpolationFactor int            `json:"interpolation_factor"`
}

type InterpolateResponse struct {
	RouteID           string         `json:"route_id"`
	Frames            []models.Frame `json:"frames"`
	InterpolatedCount int            `json:"interpolated_count"`
	OriginalCount     int            `json:"original_count"`
	TotalCount        int            `json:"total_count"`
	OverlaysApplied   int            `json:"overlays_applied"`
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
}

type PipelineRequest struct {
	Start               string `json:"start"`
	End                 string `json:"end"`
	InterpolationFactor int    `json:"interpolation_factor"`
	EnableAlerts        bool   `json:"enable_alerts"`
}

type PipelineResponse struct {
	RouteID         string         `json:"route_id"`
	PipelineSuccess bool           `json:"pipeline_success"`
	FinalFrames     []models.Frame `json:"final_frames"`
	VOHeadings      []*float64     `json:"vo_headings"`
	DirectionsData  map[string]any `json:"directions_data"`
	Statistics      map[string]any `json:"statistics"`
	NavigationStats map[string]any `json:"navigation_stats"`
	Error           string         `json:"error,omitempty"`
}

type VideoRequest struct {
	RouteID             string `json:"route_id"`
	FPS                 int    `json:"fps"`
	OutputFormat        string `json:"output_format"`
	Quality             string `json:"quality"`
	IncludeInterpolated bool   `json:"include_interpolated"`
}

// VideoStats covers both the /generate_video and the cache-check shapes.
type VideoStats struct {
	VideoPath          string  `json:"video_path,omitempty"`
	VideoFilename      string  `json:"video_filename,omitempty"`
	TotalSourceFrames  int     `json:"total_source_frames,omitempty"`
	TotalWrittenFrames int     `json:"total_written_frames,omitempty"`
	FPS                int     `json:"fps,omitempty"`
	DurationSeconds    float64 `json:"duration_seconds,omitempty"`
	Resolution         string  `json:"resolution,omitempty"`
	SpeedType          string  `json:"speed_type,omitempty"`
	SlowdownMultiplier string  `json:"slowdown_multiplier,omitempty"`
	FileSizeMB         float64 `json:"file_size_mb,omitempty"`
	Quality            string  `json:"quality,omitempty"`
	SourceType         string  `json:"source_type,omitempty"`
}

type VideoResponse struct {
	RouteID       string     `json:"route_id"`
	VideoPath     string     `json:"video_path"`
	VideoFilename string     `json:"video_filename"`
	VideoStats    VideoStats `json:"video_stats"`
	Success       bool       `json:"success"`
	Error         string     `json:"error,omitempty"`
}

type CacheCheckRequest struct {
	Start               string `json:"start"`
	End                 string `json:"end"`
	InterpolationFactor int    `json:"interpolation_factor"`
	VideoFPS            int    `json:"video_fps"`
	VideoQuality        string `json:"video_quality"`
}

type CacheCheckResponse struct {
	Exists          bool           `json:"exists"`
	VideoAvailable  bool           `json:"video_available"`
	RouteID         string         `json:"route_id,omitempty"`
	Frames          []models.Frame `json:"frames,omitempty"`
	VideoPath       string         `json:"video_path,omitempty"`
	VideoFilename   string         `json:"video_filename,omitempty"`
	VideoStats      *VideoStats    `json:"video_stats,omitempty"`
	ProcessingStats map[string]any `json:"processing_stats,omitempty"`
	Error           string         `json:"error,omitempty"`
}

type checkVideoResponse struct {
	Exists bool   `json:"exists"`
	Path   string `json:"path,omitempty"`
	Error  string `json:"error,omitempty"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Detail  any    `json:"detail"`
}
