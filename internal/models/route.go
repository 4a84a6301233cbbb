package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Route lifecycle. A route only moves forward through these, except to
// RouteStatusFailed, which any step may set.
const (
	RouteStatusPending         = "pending"
	RouteStatusFramesGenerated = "frames_generated"
	RouteStatusSmoothed        = "smoothed"
	RouteStatusRegenerated     = "regenerated"
	RouteStatusInterpolated    = "interpolated"
	RouteStatusCompleted       = "completed"
	RouteStatusFailed          = "failed"
)

// Where the stored result came from.
const (
	SourceGenerated   = "generated"
	SourcePythonCache = "python_cache"
	SourceDatabase    = "database"
)

const (
	AlertTypeTurn     = "turn"
	AlertTypeLandmark = "landmark"
)

// Frame is one Street View image along the route. Filename is a path on
// the Python host.
type Frame struct {
	Lat             float64  `json:"lat" bson:"lat"`
	Lon             float64  `json:"lon" bson:"lon"`
	Heading         float64  `json:"heading" bson:"heading"`
	SmoothedHeading *float64 `json:"smoothedHeading" bson:"smoothedHeading,omitempty"`
	Filename        string   `json:"filename,omitempty" bson:"filename,omitempty"`
	Interpolated    bool     `json:"interpolated" bson:"interpolated"`

	Alert         string   `json:"alert,omitempty" bson:"alert,omitempty"`
	AlertType     string   `json:"alertType,omitempty" bson:"alertType,omitempty" validate:"omitempty,oneof=turn landmark"`
	AlertDistance *float64 `json:"alertDistance,omitempty" bson:"alertDistance,omitempty"`
	AlertIcon     string   `json:"alertIcon,omitempty" bson:"alertIcon,omitempty"`
	Category      string   `json:"category,omitempty" bson:"category,omitempty"`
}

type VideoInfo struct {
	Filename           string    `json:"filename" bson:"filename"`
	Path               string    `json:"path,omitempty" bson:"path,omitempty"`
	URL                string    `json:"url" bson:"url"`
	FPS                int       `json:"fps" bson:"fps"`
	Quality            string    `json:"quality" bson:"quality" validate:"omitempty,oneof=high medium low"`
	FileSizeMB         float64   `json:"fileSizeMb" bson:"fileSizeMb"`
	DurationSeconds    float64   `json:"durationSeconds,omitempty" bson:"durationSeconds,omitempty"`
	Resolution         string    `json:"resolution,omitempty" bson:"resolution,omitempty"`
	TotalSourceFrames  int       `json:"totalSourceFrames,omitempty" bson:"totalSourceFrames,omitempty"`
	TotalWrittenFrames int       `json:"totalWrittenFrames,omitempty" bson:"totalWrittenFrames,omitempty"`
	SpeedType          string    `json:"speedType,omitempty" bson:"speedType,omitempty"`
	GeneratedAt        time.Time `json:"generatedAt" bson:"generatedAt"`
}

// Route is the document for collection "routes".
type Route struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID        string             `json:"userId" bson:"userId" validate:"required"`
	Start         string             `json:"start" bson:"start" validate:"required"`
	End           string             `json:"end" bson:"end" validate:"required"`
	PythonRouteID string             `json:"pythonRouteId" bson:"pythonRouteId"`
	Status        string             `json:"status" bson:"status" validate:"oneof=pending frames_generated smoothed regenerated interpolated completed failed"`

	Frames     []Frame    `json:"frames" bson:"frames" validate:"dive"`
	VOHeadings []*float64 `json:"voHeadings,omitempty" bson:"voHeadings,omitempty"`
	Video      *VideoInfo `json:"video,omitempty" bson:"video,omitempty"`

	InterpolationFactor int  `json:"interpolationFactor" bson:"interpolationFactor"`
	EnableAlerts        bool `json:"enableAlerts" bson:"enableAlerts"`

	ProcessingStats map[string]any `json:"processingStats,omitempty" bson:"processingStats,omitempty"`
	NavigationStats map[string]any `json:"navigationStats,omitempty" bson:"navigationStats,omitempty"`
	DirectionsData  map[string]any `json:"directionsData,omitempty" bson:"directionsData,omitempty"`

	Source string `json:"source,omitempty" bson:"source,omitempty"`
	Error  string `json:"error,omitempty" bson:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// RouteSummary is the list view of a route; frames and raw API payloads
// are left out.
type RouteSummary struct {
	ID            primitive.ObjectID `json:"id"`
	Start         string             `json:"start"`
	End           string             `json:"end"`
	PythonRouteID string             `json:"pythonRouteId"`
	Status        string             `json:"status"`
	FrameCount    int                `json:"frameCount"`
	Video         *VideoInfo         `json:"video,omitempty"`
	Source        string             `json:"source,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt"`
}

func (r *Route) Summary() RouteSummary {
	return RouteSummary{
		ID:            r.ID,
		Start:         r.Start,
		End:           r.End,
		PythonRouteID: r.PythonRouteID,
		Status:        r.Status,
		FrameCount:    len(r.Frames),
		Video:         r.Video,
		Source:        r.Source,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

// FrameStats counts frames, turns and alerts the same way the Python
// service reports them for cached routes.
func FrameStats(frames []Frame) map[string]any {
	turns, alerts, interpolated := 0, 0, 0
	for _, f := range frames {
		if f.AlertType == AlertTypeTurn {
			turns++
		}
		if f.Alert != "" {
			alerts++
		}
		if f.Interpolated {
			interpolated++
		}
	}
	return map[string]any{
		"total_final_frames":  len(frames),
		"interpolated_frames": interpolated,
		"total_turns":         turns,
		"total_alerts":        alerts,
	}
}
