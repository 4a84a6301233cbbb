package service

import (
	"fmt"
	"strings"

	"github.com/bharath13925/street-view-videos-sub000/internal/validation"
)

const (
	DefaultInterpolationFactor = 2
	DefaultFPS                 = 30
	DefaultQuality             = "high"
	DefaultOutputFormat        = "mp4"
)

type GenerateFramesInput struct {
	Start        string `json:"start" validate:"required,max=200"`
	End          string `json:"end" validate:"required,max=200"`
	EnableAlerts *bool  `json:"enableAlerts"`
}

type VideoOptions struct {
	FPS                 int    `json:"fps" validate:"min=1,max=60"`
	Quality             string `json:"quality" validate:"oneof=high medium low"`
	OutputFormat        string `json:"outputFormat" validate:"oneof=mp4"`
	IncludeInterpolated *bool  `json:"includeInterpolated"`
}

// PipelineInput drives the one-shot and cached pipelines.
type PipelineInput struct {
	Start               string `json:"start" validate:"required,max=200"`
	End                 string `json:"end" validate:"required,max=200"`
	InterpolationFactor int    `json:"interpolationFactor" validate:"min=1,max=8"`
	EnableAlerts        *bool  `json:"enableAlerts"`
	FPS                 int    `json:"fps" validate:"min=1,max=60"`
	Quality             string `json:"quality" validate:"oneof=high medium low"`
}

func (in *GenerateFramesInput) normalize() error {
	in.Start = strings.TrimSpace(in.Start)
	in.End = strings.TrimSpace(in.End)
	if in.EnableAlerts == nil {
		in.EnableAlerts = boolPtr(true)
	}
	return validate(in)
}

func (o *VideoOptions) normalize() error {
	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.Quality == "" {
		o.Quality = DefaultQuality
	}
	if o.OutputFormat == "" {
		o.OutputFormat = DefaultOutputFormat
	}
	if o.IncludeInterpolated == nil {
		o.IncludeInterpolated = boolPtr(true)
	}
	return validate(o)
}

func (in *PipelineInput) normalize() error {
	in.Start = strings.TrimSpace(in.Start)
	in.End = strings.TrimSpace(in.End)
	if in.InterpolationFactor == 0 {
		in.InterpolationFactor = DefaultInterpolationFactor
	}
	if in.EnableAlerts == nil {
		in.EnableAlerts = boolPtr(true)
	}
	if in.FPS == 0 {
		in.FPS = DefaultFPS
	}
	if in.Quality == "" {
		in.Quality = DefaultQuality
	}
	return validate(in)
}

func (in *PipelineInput) videoOptions() VideoOptions {
	return VideoOptions{
		FPS:                 in.FPS,
		Quality:             in.Quality,
		OutputFormat:        DefaultOutputFormat,
		IncludeInterpolated: boolPtr(true),
	}
}

func validate(v any) error {
	if err := validation.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
