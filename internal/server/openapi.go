package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/landmark-survey/fieldview/internal/handler/health"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Request shapes used only to describe path and query parameters.
type (
	jobPath struct {
		Job string `path:"job" description:"Job slug."`
	}
	pointsRequest struct {
		jobPath
		PointsQuery
	}
	captureRequest struct {
		jobPath
		CaptureRequest
	}
	sessionsRequest struct {
		jobPath
		SessionsQuery
	}
	timelineRequest struct {
		jobPath
		TimelineQuery
	}
	mapRequest struct {
		jobPath
		MapQuery
	}
	demoRequest struct {
		jobPath
		DemoQuery
	}
	exportRequest struct {
		jobPath
		Format string `path:"format" enum:"csv,pnezd,dxf,kml"`
	}
	importRequest struct {
		jobPath
		Format string `query:"format" enum:"auto,csv,pnezd" description:"Parser hint; anything else auto-detects."`
	}
)

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Fieldview API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Survey jobs, live point capture, session and timeline analysis, map projection and CAD/GIS interchange.")

	type op struct {
		method, path, summary, description string
		req                                any
		resp                               []respOpt
	}

	ops := []op{
		{
			method: http.MethodGet, path: "/healthz",
			summary:     "Health check",
			description: "Returns the health status of backend dependencies.",
			resp: []respOpt{
				{map[string]health.Result{}, http.StatusOK, ""},
				{map[string]health.Result{}, http.StatusServiceUnavailable, ""},
			},
		},
		{
			method: http.MethodPost, path: "/api/admin/login",
			summary:     "Admin login",
			description: "Authenticate with email and password. Sets admin_session cookie.",
			req:         AdminLoginRequest{},
			resp: []respOpt{
				{AdminMeResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusUnauthorized, ""},
			},
		},
		{
			method: http.MethodPost, path: "/api/admin/logout",
			summary:     "Admin logout",
			description: "Clears admin session and cookie.",
			resp:        []respOpt{{nil, http.StatusOK, ""}},
		},
		{
			method: http.MethodGet, path: "/api/admin/me",
			summary:     "Current admin",
			description: "Returns the currently authenticated admin. Requires admin_session cookie.",
			resp: []respOpt{
				{AdminMeResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusUnauthorized, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs",
			summary:     "List jobs",
			description: "Returns every survey job with its point count.",
			resp:        []respOpt{{[]JobSummary{}, http.StatusOK, ""}},
		},
		{
			method: http.MethodPost, path: "/api/jobs",
			summary:     "Create job",
			description: "Creates a survey job and its point database. Requires admin_session cookie.",
			req:         CreateJobRequest{},
			resp: []respOpt{
				{JobSummary{}, http.StatusCreated, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
				{ErrorResponse{}, http.StatusConflict, ""},
				{ErrorResponse{}, http.StatusUnauthorized, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/points",
			summary:     "List points",
			description: "Returns the job's points in capture order, up to the timeline cutoff f.",
			req:         pointsRequest{},
			resp: []respOpt{
				{PointsResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
				{ErrorResponse{}, http.StatusNotFound, ""},
			},
		},
		{
			method: http.MethodPost, path: "/api/jobs/{job}/points",
			summary:     "Capture points",
			description: "Appends a batch of captured points. Points whose id already exists are skipped. Requires admin_session cookie.",
			req:         captureRequest{},
			resp: []respOpt{
				{CaptureResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
				{ErrorResponse{}, http.StatusUnauthorized, ""},
			},
		},
		{
			method: http.MethodPost, path: "/api/jobs/{job}/demo",
			summary:     "Seed demo points",
			description: "Adds the seeded three-session demo data set. Requires admin_session cookie.",
			req:         demoRequest{},
			resp: []respOpt{
				{CaptureResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusUnauthorized, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/sessions",
			summary:     "Field sessions",
			description: "Splits the job into sessions wherever consecutive points are more than gapMinutes apart.",
			req:         sessionsRequest{},
			resp: []respOpt{
				{SessionsResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/timeline",
			summary:     "Timeline density",
			description: "Returns the capture-time histogram and the visible count at fraction f.",
			req:         timelineRequest{},
			resp: []respOpt{
				{TimelineResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/map",
			summary:     "Projected map",
			description: "Projects visible mappable points into a width x height viewport, then applies zoom and pan.",
			req:         mapRequest{},
			resp: []respOpt{
				{MapResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/export/{format}",
			summary:     "Export points",
			description: "Downloads the job as CSV, PNEZD, DXF or KML. KML coordinates are not reprojected.",
			req:         exportRequest{},
			resp: []respOpt{
				{nil, http.StatusOK, "text/csv"},
				{ErrorResponse{}, http.StatusBadRequest, ""},
			},
		},
		{
			method: http.MethodPost, path: "/api/jobs/{job}/import",
			summary:     "Import points",
			description: "Parses a PNEZD or CSV request body and appends the mappable rows. Rate limited. Requires admin_session cookie.",
			req:         importRequest{},
			resp: []respOpt{
				{ImportResponse{}, http.StatusOK, ""},
				{ErrorResponse{}, http.StatusBadRequest, ""},
				{ErrorResponse{}, http.StatusRequestEntityTooLarge, ""},
				{ErrorResponse{}, http.StatusTooManyRequests, ""},
			},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/events",
			summary:     "SSE point stream",
			description: "Server-Sent Events stream of newly added points for the job.",
			req:         jobPath{},
			resp:        []respOpt{{nil, http.StatusOK, "text/event-stream"}},
		},
		{
			method: http.MethodGet, path: "/api/jobs/{job}/capture",
			summary:     "Capture socket",
			description: "Upgrades to a WebSocket; each JSON frame {points: [...]} is appended and acknowledged. Requires admin_session cookie.",
			req:         jobPath{},
			resp:        []respOpt{{nil, http.StatusSwitchingProtocols, "text/plain"}},
		},
	}

	for _, o := range ops {
		oc, _ := r.NewOperationContext(o.method, o.path)
		oc.SetSummary(o.summary)
		oc.SetDescription(o.description)
		if o.req != nil {
			oc.AddReqStructure(o.req)
		}
		for _, rs := range o.resp {
			opts := []openapi.ContentOption{openapi.WithHTTPStatus(rs.status)}
			if rs.contentType != "" {
				opts = append(opts, openapi.WithContentType(rs.contentType))
			}
			oc.AddRespStructure(rs.body, opts...)
		}
		_ = r.AddOperation(oc)
	}

	return r.Spec
}

type respOpt struct {
	body        any
	status      int
	contentType string
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
