package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/emrgen/graphbase/internal/graph"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/service"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/labstack/echo/v4"
)

// Handler handles the HTTP requests for record, link, graph, option and
// event operations.
type Handler struct {
	schema  *schema.Schema
	records *service.RecordService
	links   *service.LinkService
	options *service.OptionService
	events  *service.EventService
	builder *graph.Builder
}

// NewHandler creates a new handler over the services.
func NewHandler(
	s *schema.Schema,
	records *service.RecordService,
	links *service.LinkService,
	options *service.OptionService,
	events *service.EventService,
	builder *graph.Builder,
) *Handler {
	return &Handler{
		schema:  s,
		records: records,
		links:   links,
		options: options,
		events:  events,
		builder: builder,
	}
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	v1 := e.Group("/v1")

	records := v1.Group("/records")
	records.POST("/:table", h.SubmitRecord)
	records.GET("/:table", h.ListRecords)
	records.GET("/:table/:id", h.GetRecord)
	records.GET("/:table/:id/versions", h.ListRecordVersions)
	records.GET("/:table/:id/versions/:version", h.GetRecordVersion)
	records.DELETE("/:table/:id", h.DeleteRecord)

	v1.PUT("/links/:table", h.SyncLinks)
	v1.GET("/graph", h.GetGraph)
	v1.GET("/options/:table", h.ListOptions)
	v1.GET("/schema", h.GetSchema)
	v1.GET("/events", h.ListEvents)
}

// SubmitRecord appends a record version. A body without an id creates a
// new record, a body with one appends the next version for it.
// POST /v1/records/:table
func (h *Handler) SubmitRecord(c echo.Context) error {
	var fields map[string]any
	if err := c.Bind(&fields); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	ctx := c.Request().Context()
	result, err := h.records.Submit(ctx, c.Param("table"), fields)
	if errors.Is(err, store.ErrIDConflict) {
		// a concurrent submission can win the id race, retry once
		result, err = h.records.Submit(ctx, c.Param("table"), fields)
	}
	if err != nil {
		return httpError(err)
	}

	status := http.StatusOK
	if result.Status == service.SubmitCreated {
		status = http.StatusCreated
	}
	return c.JSON(status, result)
}

// ListRecords returns the current version of every record in a table.
// GET /v1/records/:table?include_deleted=true
func (h *Handler) ListRecords(c echo.Context) error {
	includeDeleted := c.QueryParam("include_deleted") == "true"

	records, err := h.records.List(c.Request().Context(), c.Param("table"), includeDeleted)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// GetRecord returns the current version of one record and logs the view.
// GET /v1/records/:table/:id
func (h *Handler) GetRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	rec, err := h.records.Get(ctx, c.Param("table"), id)
	if err != nil {
		return httpError(err)
	}

	h.events.LogView(ctx, c.Param("table"), id)

	return c.JSON(http.StatusOK, rec)
}

// ListRecordVersions returns the full version history of one record,
// oldest first.
// GET /v1/records/:table/:id/versions
func (h *Handler) ListRecordVersions(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	versions, err := h.records.ListVersions(c.Request().Context(), c.Param("table"), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, versions)
}

// GetRecordVersion returns one explicit version from the history,
// soft-deleted versions included.
// GET /v1/records/:table/:id/versions/:version
func (h *Handler) GetRecordVersion(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	version, err := strconv.ParseInt(c.Param("version"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record version")
	}

	rec, err := h.records.GetVersion(c.Request().Context(), c.Param("table"), id, version)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

// DeleteRecord soft-deletes a record. The version history stays intact.
// DELETE /v1/records/:table/:id
func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.records.Delete(c.Request().Context(), c.Param("table"), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

// SyncLinks makes the stored link set of a source record equal to the
// posted target set.
// PUT /v1/links/:table
func (h *Handler) SyncLinks(c echo.Context) error {
	var req service.SyncRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	req.LinkTable = c.Param("table")

	if req.SourceCol == "" || req.TargetCol == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "source_col and target_col are required")
	}
	if req.SourceID == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "source_id is required")
	}

	result, err := h.links.Sync(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetGraph materializes the stored records into nodes and edges.
// GET /v1/graph?include_deleted=true&types=people&seeds=people-1&radius=2&traversable=people
func (h *Handler) GetGraph(c echo.Context) error {
	opts := graph.BuildOptions{
		IncludeDeleted: c.QueryParam("include_deleted") == "true",
		Radius:         -1,
	}

	if types := c.QueryParam("types"); types != "" {
		opts.NodeTypes = splitList(types)
	}
	if seeds := c.QueryParam("seeds"); seeds != "" {
		opts.Seeds = splitList(seeds)
	}
	if traversable := c.QueryParam("traversable"); traversable != "" {
		opts.TraversableTypes = splitList(traversable)
	}
	if radius := c.QueryParam("radius"); radius != "" {
		r, err := strconv.Atoi(radius)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid radius")
		}
		opts.Radius = r
	}

	g, err := h.builder.BuildGraph(c.Request().Context(), opts)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, g)
}

// ListOptions returns (label, value) pairs for a selection list.
// GET /v1/options/:table?value=id&label=name&exclude=3
func (h *Handler) ListOptions(c echo.Context) error {
	query := service.OptionQuery{
		Table:    c.Param("table"),
		ValueCol: c.QueryParam("value"),
		LabelCol: c.QueryParam("label"),
	}

	if exclude := c.QueryParam("exclude"); exclude != "" {
		id, err := strconv.ParseInt(exclude, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid exclude id")
		}
		query.ExcludeID = id
	}

	options, err := h.options.ListOptions(c.Request().Context(), query)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, options)
}

// GetSchema returns the loaded schema descriptor.
// GET /v1/schema
func (h *Handler) GetSchema(c echo.Context) error {
	return c.JSON(http.StatusOK, h.schema)
}

// ListEvents returns the most recent view events, newest first.
// GET /v1/events?limit=20
func (h *Handler) ListEvents(c echo.Context) error {
	limit := 0
	if l := c.QueryParam("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = n
	}

	events, err := h.events.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, events)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	return id, nil
}

// splitList parses a comma-separated query parameter.
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// httpError maps the service error values onto HTTP status codes.
// Anything unmapped bubbles up as an internal error.
func httpError(err error) error {
	switch {
	case errors.Is(err, store.ErrTableNotFound),
		errors.Is(err, store.ErrRecordNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrIDConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, store.ErrConstraint),
		errors.Is(err, store.ErrNotLinkColumn),
		errors.Is(err, service.ErrNotLinkTable),
		errors.Is(err, service.ErrUnknownColumn),
		errors.Is(err, service.ErrEmptyPayload):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return err
}
