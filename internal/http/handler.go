package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/http/middleware"
	"github.com/nurpe/licitaciones-portal/internal/listing"
	"github.com/nurpe/licitaciones-portal/internal/mapview"
	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
	"github.com/nurpe/licitaciones-portal/internal/service"
	"github.com/nurpe/licitaciones-portal/internal/view"
)

type snapshotCounter interface {
	Count(ctx context.Context) (int64, error)
}

type Handler struct {
	portal      *service.PortalService
	pages       *template.Template
	strategies  map[string]mapview.Strategy
	mapRenderer string
	pageSize    int
	snapshots   snapshotCounter
	log         zerolog.Logger
}

type HandlerOptions struct {
	MapRenderer string
	MapOptions  mapview.Options
	PageSize    int
	// Snapshots is optional; when set /healthz reports the stored count.
	Snapshots   snapshotCounter
}

func NewHandler(portal *service.PortalService, opts HandlerOptions, log zerolog.Logger) (*Handler, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	strategies := make(map[string]mapview.Strategy, 3)
	for _, name := range []string{"vector", "provider", "raster"} {
		strategy, err := mapview.StrategyFor(name, opts.MapOptions)
		if err != nil {
			return nil, err
		}
		strategies[name] = strategy
	}
	if _, ok := strategies[opts.MapRenderer]; !ok {
		opts.MapRenderer = "vector"
	}
	return &Handler{
		portal:      portal,
		pages:       pages,
		strategies:  strategies,
		mapRenderer: opts.MapRenderer,
		pageSize:    opts.PageSize,
		snapshots:   opts.Snapshots,
		log:         log,
	}, nil
}

func (h *Handler) Register(router *gin.Engine, sessionMiddleware, apiMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	router.GET("/mapa.svg", h.renderMap("vector"))
	router.GET("/mapa.json", h.renderMap("provider"))
	router.GET("/mapa.png", h.renderMap("raster"))

	pages := router.Group("/")
	pages.Use(sessionMiddleware)
	pages.GET("/", h.home)
	pages.GET("/mapa/:region", h.selectRegion)
	pages.GET("/dashboard", h.dashboard)
	pages.GET("/dashboard/:region", h.dashboard)
	pages.POST("/dashboard/clear", h.clearFilters)
	pages.POST("/dashboard/retry", h.retry)
	pages.GET("/dashboard/export.csv", h.exportCSV)
	pages.GET("/dashboard/export.xlsx", h.exportExcel)
	pages.GET("/licitacion/:id", h.detail)
	pages.GET("/licitacion/:id/pdf", h.detailPDF)

	api := router.Group("/api")
	api.Use(apiMiddleware)
	api.OPTIONS("/*path", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.GET("/licitaciones", h.apiListTenders)
	api.GET("/licitaciones/:id", h.apiGetTender)
	api.GET("/estadisticas", h.apiStatistics)
}

type homePage struct {
	Title       string
	Home        *service.HomeData
	MapRenderer string
}

func (h *Handler) home(c *gin.Context) {
	data, err := h.portal.Home(c.Request.Context())
	if err != nil {
		h.handlePageError(c, err, "/", http.MethodGet)
		return
	}
	h.render(c, http.StatusOK, "home", homePage{Title: "Inicio", Home: data, MapRenderer: h.mapRenderer})
}

func (h *Handler) selectRegion(c *gin.Context) {
	r, ok := region.Resolve(c.Param("region"))
	if !ok {
		h.handlePageError(c, fmt.Errorf("%w: region %q", service.ErrNotFound, c.Param("region")), "", "")
		return
	}
	_, name, err := h.portal.RegionMap(c.Request.Context(), "", r.Code)
	if err != nil {
		h.handlePageError(c, err, c.Request.URL.Path, http.MethodGet)
		return
	}
	c.Redirect(http.StatusFound, "/dashboard/"+url.PathEscape(name))
}

func (h *Handler) renderMap(name string) gin.HandlerFunc {
	strategy := h.strategies[name]
	return func(c *gin.Context) {
		var hover model.RegionCode
		if raw := c.Query("hover"); raw != "" {
			if r, ok := region.Resolve(raw); ok {
				hover = r.Code
			}
		}
		v, _, err := h.portal.RegionMap(c.Request.Context(), hover, "")
		if err != nil {
			h.handleError(c, err)
			return
		}
		var buf bytes.Buffer
		if err := strategy.Render(&buf, v); err != nil {
			h.handleError(c, fmt.Errorf("render %s map: %w", strategy.Name(), err))
			return
		}
		c.Header("Cache-Control", "public, max-age=60")
		c.Data(http.StatusOK, strategy.ContentType(), buf.Bytes())
	}
}

type dashboardPage struct {
	Title      string
	Data       *service.DashboardData
	Notice     string
	RegionName string
	Statuses   []model.Status
	PrevURL    string
	NextURL    string
}

func (h *Handler) dashboard(c *gin.Context) {
	sess, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing session"})
		return
	}
	ctx := c.Request.Context()

	next, changed, err := h.filtersFromRequest(c, sess.Listing.Filters())
	if err != nil {
		data := h.portal.DashboardView(ctx, sess.Listing)
		h.renderDashboard(c, http.StatusBadRequest, data, service.UserMessage(fmt.Errorf("%w: %w", service.ErrInvalidInput, err)))
		return
	}
	if !changed {
		if snap := sess.Listing.Snapshot(); snap.Loaded || snap.Err != nil {
			h.renderDashboard(c, http.StatusOK, h.portal.DashboardView(ctx, sess.Listing), "")
			return
		}
	}

	data, err := h.portal.Dashboard(ctx, sess.Listing, next)
	if err != nil {
		h.handlePageError(c, err, c.Request.URL.String(), http.MethodGet)
		return
	}
	h.renderDashboard(c, http.StatusOK, data, "")
}

func (h *Handler) clearFilters(c *gin.Context) {
	sess, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing session"})
		return
	}
	if _, err := h.portal.ClearFilters(c.Request.Context(), sess.Listing); err != nil {
		h.handlePageError(c, err, "/dashboard", http.MethodGet)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) retry(c *gin.Context) {
	sess, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing session"})
		return
	}
	if _, err := h.portal.Retry(c.Request.Context(), sess.Listing); err != nil {
		h.handlePageError(c, err, "/dashboard/retry", http.MethodPost)
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (h *Handler) renderDashboard(c *gin.Context, status int, data *service.DashboardData, notice string) {
	page := dashboardPage{
		Title:    "Licitaciones",
		Data:     data,
		Notice:   notice,
		Statuses: model.Statuses,
	}
	if data.Filters.Region != "" {
		page.RegionName = region.Name(data.Filters.Region)
	}
	if data.HasPrev() {
		page.PrevURL = pageURL(data.Filters, data.Filters.Page-1)
	}
	if data.HasNext() {
		page.NextURL = pageURL(data.Filters, data.Filters.Page+1)
	}
	h.render(c, status, "dashboard", page)
}

// filtersFromRequest reads the filter form. It reports changed=false when
// the request carries no filter, page or region, in which case the
// session's current filters stand.
func (h *Handler) filtersFromRequest(c *gin.Context, current model.FilterState) (model.FilterState, bool, error) {
	query := c.Request.URL.Query()
	regionParam := strings.TrimSpace(c.Param("region"))
	if !hasFilterParams(query) && regionParam == "" {
		return current, false, nil
	}

	next := model.DefaultFilterState(h.pageSize)
	for _, field := range listing.Fields {
		if err := listing.ApplyField(&next, field, query.Get(string(field))); err != nil {
			return current, false, err
		}
	}
	if regionParam != "" && query.Get(string(model.FilterRegion)) == "" {
		if err := listing.ApplyField(&next, model.FilterRegion, regionParam); err != nil {
			return current, false, err
		}
	}
	if raw := query.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return current, false, fmt.Errorf("%w: page %q", listing.ErrInvalidFilter, raw)
		}
		next.Page = page
	}
	return next, true, nil
}

func hasFilterParams(query url.Values) bool {
	if query.Has("page") {
		return true
	}
	for _, field := range listing.Fields {
		if query.Has(string(field)) {
			return true
		}
	}
	return false
}

func pageURL(f model.FilterState, page int) string {
	values := url.Values{}
	for _, field := range listing.Fields {
		if v := listing.FieldValue(f, field); v != "" {
			values.Set(string(field), v)
		}
	}
	values.Set("page", strconv.Itoa(page))
	return "/dashboard?" + values.Encode()
}

func (h *Handler) exportCSV(c *gin.Context) {
	sess, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing session"})
		return
	}
	result, err := h.portal.ExportCSV(sess.Listing)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, result)
}

func (h *Handler) exportExcel(c *gin.Context) {
	sess, ok := middleware.MustSession(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "missing session"})
		return
	}
	result, err := h.portal.ExportExcel(sess.Listing)
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, result)
}

type detailPage struct {
	Title  string
	Detail view.Detail
	Source string
}

func (h *Handler) detail(c *gin.Context) {
	sess, _ := middleware.MustSession(c)
	var ctrl *listing.Controller
	if sess != nil {
		ctrl = sess.Listing
	}
	d, source, err := h.portal.Detail(c.Request.Context(), ctrl, c.Param("id"))
	if err != nil {
		h.handlePageError(c, err, c.Request.URL.Path, http.MethodGet)
		return
	}
	h.render(c, http.StatusOK, "detail", detailPage{Title: d.Title, Detail: d, Source: string(source)})
}

func (h *Handler) detailPDF(c *gin.Context) {
	sess, _ := middleware.MustSession(c)
	var ctrl *listing.Controller
	if sess != nil {
		ctrl = sess.Listing
	}
	result, err := h.portal.DetailPDF(c.Request.Context(), ctrl, c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	h.attachment(c, result)
}

func (h *Handler) apiListTenders(c *gin.Context) {
	f := model.DefaultFilterState(h.pageSize)
	for _, field := range listing.Fields {
		if err := listing.ApplyField(&f, field, c.Query(string(field))); err != nil {
			h.handleError(c, fmt.Errorf("%w: %w", service.ErrInvalidInput, err))
			return
		}
	}
	var err error
	if f.Page, err = intQuery(c, "page", 1); err != nil {
		h.handleError(c, err)
		return
	}
	if f.PageSize, err = intQuery(c, "limit", h.pageSize); err != nil {
		h.handleError(c, err)
		return
	}

	page, err := h.portal.SearchTenders(c.Request.Context(), f)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    page.Items,
		"total":   page.Total,
		"pagination": gin.H{
			"page":       f.Page,
			"limit":      f.PageSize,
			"total":      page.Total,
			"totalPages": model.TotalPages(page.Total, f.PageSize),
		},
	})
}

func (h *Handler) apiGetTender(c *gin.Context) {
	t, err := h.portal.Tender(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": t})
}

func (h *Handler) apiStatistics(c *gin.Context) {
	summary, err := h.portal.Summary(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}

func (h *Handler) health(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.snapshots != nil {
		count, err := h.snapshots.Count(c.Request.Context())
		if err != nil {
			h.log.Warn().Err(err).Msg("snapshot store unreachable")
			body["snapshots"] = "unavailable"
		} else {
			body["snapshots"] = count
		}
	}
	c.JSON(http.StatusOK, body)
}

func (h *Handler) attachment(c *gin.Context, result *service.FileResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

type errorPage struct {
	Title       string
	Message     string
	RetryURL    string
	RetryMethod string
}

func (h *Handler) render(c *gin.Context, status int, name string, data interface{}) {
	body, err := renderTemplate(h.pages, name, data)
	if err != nil {
		h.log.Error().Err(err).Str("template", name).Msg("render page failed")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", body)
}

func (h *Handler) handlePageError(c *gin.Context, err error, retryURL, retryMethod string) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("page failed")
	}
	if status == http.StatusNotFound {
		retryURL = ""
	}
	h.render(c, status, "error", errorPage{
		Title:       "Error",
		Message:     service.UserMessage(err),
		RetryURL:    retryURL,
		RetryMethod: retryMethod,
	})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(status, gin.H{"success": false, "error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"success": false, "error": service.UserMessage(err)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUpstream):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func intQuery(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", service.ErrInvalidInput, key)
	}
	return n, nil
}
