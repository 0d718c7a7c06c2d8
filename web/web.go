// Package web exposes a session's marker, commands and published topics over HTTP, standing in
// for an interactive marker client.
package web

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.viam.com/utils"
	"goji.io"
	"goji.io/pat"

	"go.viam.com/waypoints/archive"
	"go.viam.com/waypoints/arm"
	"go.viam.com/waypoints/dispatcher"
	"go.viam.com/waypoints/logging"
	"go.viam.com/waypoints/marker"
	"go.viam.com/waypoints/motion"
	"go.viam.com/waypoints/publish"
	"go.viam.com/waypoints/referenceframe"
	"go.viam.com/waypoints/ros"
)

// Archive lists archived trajectories.
type Archive interface {
	List(ctx context.Context, limit int) ([]archive.Record, error)
}

// Service serves one arm's session.
type Service struct {
	side    arm.Side
	marker  *marker.Server
	session *dispatcher.Session
	broker  *publish.Broker
	archive Archive
	logger  logging.Logger
}

// New returns a service. records may be nil, in which case the archive route reports not found.
func New(
	side arm.Side,
	markerServer *marker.Server,
	session *dispatcher.Session,
	broker *publish.Broker,
	records Archive,
	logger logging.Logger,
) *Service {
	return &Service{
		side:    side,
		marker:  markerServer,
		session: session,
		broker:  broker,
		archive: records,
		logger:  logger,
	}
}

// Handler returns the routes of the service.
func (svc *Service) Handler() http.Handler {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/marker"), svc.getMarker)
	mux.HandleFunc(pat.Post("/marker/feedback"), svc.postFeedback)
	mux.HandleFunc(pat.Post("/marker/menu/:entry"), svc.postMenu)
	mux.HandleFunc(pat.Get("/menu"), svc.getMenu)
	mux.HandleFunc(pat.Get("/trajectory"), svc.getTrajectory)
	mux.HandleFunc(pat.Get("/topics"), svc.getTopics)
	mux.HandleFunc(pat.Get("/topics/:topic"), svc.getTopic)
	mux.HandleFunc(pat.Get("/archive"), svc.getArchive)
	return cors.AllowAll().Handler(mux)
}

// Serve serves on listener until ctx is done.
func (svc *Service) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Handler:           svc.Handler(),
	}

	stopped := make(chan struct{})
	defer close(stopped)
	utils.PanicCapturingGo(func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			svc.logger.Warnw("error shutting down web server", "error", err)
		}
	})

	svc.logger.Infow("serving", "url", "http://"+listener.Addr().String())
	if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type errorResponse struct {
	Error string `json:"error"`
}

type commandResponse struct {
	Command string `json:"command"`
	Status  string `json:"status"`
}

// poseRequest is a marker pose. An empty frame means the marker's current frame and a zero
// orientation means identity.
type poseRequest struct {
	Frame       string         `json:"frame"`
	Position    ros.Point      `json:"position"`
	Orientation ros.Quaternion `json:"orientation"`
}

type feedbackRequest struct {
	Type        string       `json:"type"`
	MarkerName  string       `json:"marker_name"`
	Pose        *poseRequest `json:"pose"`
	MenuEntryID int          `json:"menu_entry_id"`
}

func (svc *Service) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		svc.logger.Debugw("error writing response", "error", err)
	}
}

func (svc *Service) writeError(w http.ResponseWriter, err error) {
	svc.writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

// statusFor maps rejected input to 422 and backend failures to 502.
func statusFor(err error) int {
	switch {
	case errors.Is(err, dispatcher.ErrUnknownCommand),
		errors.Is(err, marker.ErrUnknownMarker),
		errors.Is(err, marker.ErrUnknownMenuEntry):
		return http.StatusNotFound
	case errors.Is(err, dispatcher.ErrPoseUnreachable),
		errors.Is(err, dispatcher.ErrFrameMismatch),
		errors.Is(err, motion.ErrEmptyTrajectory),
		errors.Is(err, marker.ErrNoPose):
		return http.StatusUnprocessableEntity
	case errors.Is(err, dispatcher.ErrSessionClosed),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func (svc *Service) getMarker(w http.ResponseWriter, r *http.Request) {
	registration, err := svc.marker.Marker()
	if err != nil {
		svc.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	svc.writeJSON(w, http.StatusOK, registration)
}

func (svc *Service) postFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		svc.writeJSON(w, http.StatusBadRequest, errorResponse{Error: errors.Wrap(err, "decoding feedback").Error()})
		return
	}
	feedback := marker.Feedback{MarkerName: req.MarkerName, MenuEntryID: req.MenuEntryID}
	if feedback.MarkerName == "" {
		feedback.MarkerName = marker.Name(svc.side)
	}
	switch req.Type {
	case "pose_update":
		if req.Pose == nil {
			svc.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "pose_update requires a pose"})
			return
		}
		feedback.Type = marker.PoseUpdate
		feedback.Pose = svc.poseInFrame(*req.Pose)
	case "menu_select":
		feedback.Type = marker.MenuSelect
	default:
		svc.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown feedback type " + strconv.Quote(req.Type)})
		return
	}
	if err := svc.marker.ProcessFeedback(r.Context(), feedback); err != nil {
		svc.writeError(w, err)
		return
	}
	svc.writeJSON(w, http.StatusOK, commandResponse{Command: req.Type, Status: "ok"})
}

func (svc *Service) poseInFrame(req poseRequest) *referenceframe.PoseInFrame {
	frame := req.Frame
	if frame == "" {
		frame = referenceframe.World
		if current, err := svc.marker.CurrentPose(); err == nil {
			frame = current.FrameName()
		}
	}
	pose := ros.Pose{Position: req.Position, Orientation: req.Orientation}
	return referenceframe.NewPoseInFrame(frame, pose.Spatial())
}

func (svc *Service) postMenu(w http.ResponseWriter, r *http.Request) {
	cmd, err := dispatcher.ParseCommand(pat.Param(r, "entry"))
	if err != nil {
		svc.writeError(w, err)
		return
	}
	feedback := marker.Feedback{
		MarkerName:  marker.Name(svc.side),
		Type:        marker.MenuSelect,
		MenuEntryID: cmd.MenuEntryID(),
	}
	if err := svc.marker.ProcessFeedback(r.Context(), feedback); err != nil {
		svc.writeError(w, err)
		return
	}
	svc.writeJSON(w, http.StatusOK, commandResponse{Command: cmd.String(), Status: "ok"})
}

func (svc *Service) getMenu(w http.ResponseWriter, r *http.Request) {
	commands := dispatcher.Commands()
	entries := make([]ros.MenuEntry, 0, len(commands))
	for _, cmd := range commands {
		entries = append(entries, ros.MenuEntry{ID: cmd.MenuEntryID(), Title: cmd.String()})
	}
	svc.writeJSON(w, http.StatusOK, entries)
}

func (svc *Service) getTrajectory(w http.ResponseWriter, r *http.Request) {
	traj, err := svc.session.Trajectory(r.Context())
	if err != nil {
		svc.writeError(w, err)
		return
	}
	svc.writeJSON(w, http.StatusOK, publish.PoseArray(traj))
}

func (svc *Service) getTopics(w http.ResponseWriter, r *http.Request) {
	svc.writeJSON(w, http.StatusOK, svc.broker.Topics())
}

func (svc *Service) getTopic(w http.ResponseWriter, r *http.Request) {
	topic := pat.Param(r, "topic")
	latest, ok := svc.broker.Latest(topic)
	if !ok {
		svc.writeJSON(w, http.StatusNotFound, errorResponse{Error: "nothing published on " + strconv.Quote(topic)})
		return
	}
	svc.writeJSON(w, http.StatusOK, latest)
}

func (svc *Service) getArchive(w http.ResponseWriter, r *http.Request) {
	if svc.archive == nil {
		svc.writeJSON(w, http.StatusNotFound, errorResponse{Error: "archive is not configured"})
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			svc.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit " + strconv.Quote(raw)})
			return
		}
		limit = parsed
	}
	records, err := svc.archive.List(r.Context(), limit)
	if err != nil {
		svc.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	svc.writeJSON(w, http.StatusOK, records)
}
