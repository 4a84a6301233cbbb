package handler

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bharath13925/street-view-videos-sub000/internal/logging"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"
	"github.com/bharath13925/street-view-videos-sub000/internal/service"
)

const wsWriteWait = 10 * time.Second

// PipelineHandler streams step-by-step pipeline progress over a WebSocket.
type PipelineHandler struct {
	svc      RouteAPI
	upgrader websocket.Upgrader
}

func NewPipelineHandler(s RouteAPI, allowedOrigins []string) *PipelineHandler {
	return &PipelineHandler{
		svc: s,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

type wsMessage struct {
	Type  string        `json:"type"`
	Step  string        `json:"step,omitempty"`
	Msg   string        `json:"msg,omitempty"`
	Error string        `json:"error,omitempty"`
	Route *models.Route `json:"route,omitempty"`
	At    time.Time     `json:"at"`
}

// @Summary Step-by-step pipeline with live progress (WebSocket)
// @Tags pipeline
// @Security BearerAuth
// @Param start query string true "start location"
// @Param end query string true "end location"
// @Param interpolationFactor query int false "1-8 (default 2)"
// @Param fps query int false "video fps (default 30)"
// @Param quality query string false "high|medium|low"
// @Param enableAlerts query bool false "navigation overlays (default true)"
// @Param token query string false "Firebase ID token"
// @Success 101
// @Router /api/routes/ws/pipeline [get]
func (h *PipelineHandler) Pipeline(w http.ResponseWriter, r *http.Request) {
	in := pipelineInputFromQuery(r)
	userID := UserIDFromContext(r.Context())
	log := logging.Ctx(r.Context())

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	// the pipeline stops when the client goes away
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()

	send := func(m wsMessage) {
		m.At = time.Now().UTC()
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		if err := conn.WriteJSON(m); err != nil {
			log.Debug().Err(err).Str("type", m.Type).Msg("websocket write failed")
		}
	}

	send(wsMessage{Type: "start", Msg: "pipeline started"})

	route, err := h.svc.RunStepwise(ctx, userID, in, func(step string, route *models.Route) {
		send(wsMessage{Type: "progress", Step: step, Route: route})
	})
	if err != nil {
		_, msg := statusFor(err)
		log.Warn().Err(err).Msg("websocket pipeline failed")
		send(wsMessage{Type: "error", Msg: msg, Error: err.Error()})
	} else {
		send(wsMessage{Type: "completed", Route: route})
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
}

func pipelineInputFromQuery(r *http.Request) service.PipelineInput {
	q := r.URL.Query()
	in := service.PipelineInput{
		Start:   q.Get("start"),
		End:     q.Get("end"),
		Quality: q.Get("quality"),
	}
	in.InterpolationFactor, _ = strconv.Atoi(q.Get("interpolationFactor"))
	in.FPS, _ = strconv.Atoi(q.Get("fps"))
	if v := q.Get("enableAlerts"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			in.EnableAlerts = &b
		}
	}
	return in
}
