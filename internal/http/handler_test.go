package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/config"
	"github.com/nurpe/licitaciones-portal/internal/detail"
	"github.com/nurpe/licitaciones-portal/internal/export"
	"github.com/nurpe/licitaciones-portal/internal/listing"
	"github.com/nurpe/licitaciones-portal/internal/mapview"
	"github.com/nurpe/licitaciones-portal/internal/service"
	"github.com/nurpe/licitaciones-portal/internal/session"
	"github.com/nurpe/licitaciones-portal/internal/tenderapi"
)

const listBody = `{
	"success": true,
	"total": 2,
	"data": [
		{"id": "1057-12-LE25", "nombre": "Reparación de veredas", "responsable": "Municipalidad de Talca",
		 "Monto": 1500000, "region": "Maule", "estado": "Publicada", "fechaPublicacion": "2025-03-01",
		 "urlLicitacion": "https://www.mercadopublico.cl/ficha?id=1057-12-LE25"},
		{"id": "2201-4-L125", "nombre": "Compra de insumos", "responsable": "Hospital del Salvador",
		 "Monto": 1500000, "region": "Metropolitana", "estado": "Cerrada"}
	]
}`

const statsBody = `{
	"success": true,
	"data": {
		"totalLicitaciones": 2, "licitacionesAbiertas": 1, "organismos": 2, "montoTotal": 3000000,
		"resumenPorRegion": {"Maule": 1, "Metropolitana": 1},
		"fechaUltimaActualizacion": "2025-03-01"
	}
}`

const detailBody = `{
	"success": true,
	"data": {"id": "1057-12-LE25", "nombre": "Reparación de veredas", "responsable": "Municipalidad de Talca",
	         "descripcion": "Reposición de 300 m2 de veredas", "region": "Maule", "estado": "Publicada",
	         "criteriosEvaluacion": [{"item": "Precio", "ponderacion": 70}]}
}`

type upstream struct {
	mu      sync.Mutex
	queries []string
	down    bool
}

func (u *upstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.queries = append(u.queries, r.URL.Path+"?"+r.URL.RawQuery)
	down := u.down
	u.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if down {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success":false,"error":"Bad Gateway"}`))
		return
	}
	switch {
	case r.URL.Path == "/licitaciones":
		_, _ = w.Write([]byte(listBody))
	case r.URL.Path == "/estadisticas":
		_, _ = w.Write([]byte(statsBody))
	case r.URL.Path == "/licitaciones/1057-12-LE25":
		_, _ = w.Write([]byte(detailBody))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success":false,"error":"Licitación no encontrada"}`))
	}
}

func (u *upstream) setDown(down bool) {
	u.mu.Lock()
	u.down = down
	u.mu.Unlock()
}

func (u *upstream) sawQuery(part string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, q := range u.queries {
		if strings.Contains(q, part) {
			return true
		}
	}
	return false
}

func (u *upstream) listCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, q := range u.queries {
		if strings.HasPrefix(q, "/licitaciones?") {
			n++
		}
	}
	return n
}

// lastQuery returns the most recent listing request.
func (u *upstream) lastQuery() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	for i := len(u.queries) - 1; i >= 0; i-- {
		if strings.HasPrefix(u.queries[i], "/licitaciones?") {
			return u.queries[i]
		}
	}
	return ""
}

func newTestRouter(t *testing.T) (*gin.Engine, *upstream) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	up := &upstream{}
	srv := httptest.NewServer(up)
	t.Cleanup(srv.Close)

	log := zerolog.Nop()
	cfg := &config.Config{
		Environment: "development",
		Listing:     config.ListingConfig{PageSize: 10, MaxPageSize: 50},
	}
	client := tenderapi.NewClient(srv.URL, 5*time.Second, log)
	loader := detail.NewLoader(client, nil, log)
	portal := service.NewPortalService(client, loader, export.NewExcelGenerator(), export.NewPDFGenerator(), cfg, log)

	handler, err := NewHandler(portal, HandlerOptions{
		MapRenderer: "vector",
		MapOptions:  mapview.Options{RasterScale: 1},
		PageSize:    10,
	}, log)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	sessions := session.NewStore("test-secret", time.Hour, func() *listing.Controller {
		return listing.NewController(client, 10, log)
	})
	router := NewRouter(handler, sessions, RouterOptions{Environment: "development"}, log)
	return router, up
}

func do(router *gin.Engine, method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	for _, want := range []string{"Total Licitaciones", "$3.000.000", "Maule", "/mapa.svg"} {
		if !strings.Contains(body, want) {
			t.Fatalf("home page missing %q", want)
		}
	}
}

func TestHome_UpstreamDownShowsRetry(t *testing.T) {
	router, up := newTestRouter(t)
	up.setDown(true)
	rec := do(router, http.MethodGet, "/", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Reintentar") || !strings.Contains(rec.Body.String(), "Error 502") {
		t.Fatalf("error page=%s", rec.Body.String())
	}
}

func TestMapEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	svg := do(router, http.MethodGet, "/mapa.svg?hover=Maule", nil)
	if svg.Code != http.StatusOK || !strings.HasPrefix(svg.Header().Get("Content-Type"), "image/svg+xml") {
		t.Fatalf("svg status=%d type=%s", svg.Code, svg.Header().Get("Content-Type"))
	}
	if n := strings.Count(svg.Body.String(), "<path"); n != 16 {
		t.Fatalf("svg paths=%d; want 16", n)
	}

	feed := do(router, http.MethodGet, "/mapa.json", nil)
	var payload struct {
		Markers []struct {
			Code  string `json:"code"`
			Count int    `json:"count"`
		} `json:"markers"`
	}
	if err := json.Unmarshal(feed.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode feed: %v", err)
	}
	if len(payload.Markers) != 16 {
		t.Fatalf("markers=%d", len(payload.Markers))
	}

	png := do(router, http.MethodGet, "/mapa.png", nil)
	if png.Code != http.StatusOK || !strings.HasPrefix(png.Body.String(), "\x89PNG") {
		t.Fatalf("png status=%d", png.Code)
	}
}

func TestSelectRegionRedirects(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/mapa/CL-ML", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard/Maule" {
		t.Fatalf("status=%d location=%s", rec.Code, rec.Header().Get("Location"))
	}
	if rec := do(router, http.MethodGet, "/mapa/Narnia", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("unknown region status=%d", rec.Code)
	}
}

func TestDashboard_RegionPathAndExport(t *testing.T) {
	router, up := newTestRouter(t)

	rec := do(router, http.MethodGet, "/dashboard/Maule", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if !up.sawQuery("/licitaciones?") || !up.sawQuery("region=Maule") {
		t.Fatalf("upstream never asked for Maule")
	}
	if !strings.Contains(rec.Body.String(), "Reparación de veredas") {
		t.Fatalf("dashboard missing tender row")
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 || cookies[0].Name != session.CookieName {
		t.Fatalf("session cookie not set: %v", cookies)
	}

	csvRec := do(router, http.MethodGet, "/dashboard/export.csv", cookies)
	if csvRec.Code != http.StatusOK || !strings.HasPrefix(csvRec.Header().Get("Content-Type"), "text/csv") {
		t.Fatalf("csv status=%d type=%s", csvRec.Code, csvRec.Header().Get("Content-Type"))
	}
	if lines := strings.Count(csvRec.Body.String(), "\n"); lines != 3 {
		t.Fatalf("csv lines=%d; want header + 2 rows", lines)
	}
	if !strings.Contains(csvRec.Header().Get("Content-Disposition"), "licitaciones.csv") {
		t.Fatalf("disposition=%s", csvRec.Header().Get("Content-Disposition"))
	}

	xlsx := do(router, http.MethodGet, "/dashboard/export.xlsx", cookies)
	if xlsx.Code != http.StatusOK || !strings.HasPrefix(xlsx.Body.String(), "PK") {
		t.Fatalf("xlsx status=%d", xlsx.Code)
	}
}

func TestDashboard_InvalidFilterKeepsPage(t *testing.T) {
	router, up := newTestRouter(t)
	rec := do(router, http.MethodGet, "/dashboard?fechaInicio=ayer", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ayer") {
		t.Fatalf("notice missing from page")
	}
	if up.sawQuery("/licitaciones?") {
		t.Fatalf("invalid filter triggered a load")
	}
}

func TestDashboard_UpstreamDownOffersRetry(t *testing.T) {
	router, up := newTestRouter(t)
	up.setDown(true)
	rec := do(router, http.MethodGet, "/dashboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `action="/dashboard/retry"`) {
		t.Fatalf("retry form missing")
	}

	up.setDown(false)
	cookies := rec.Result().Cookies()
	retry := do(router, http.MethodPost, "/dashboard/retry", cookies)
	if retry.Code != http.StatusSeeOther || retry.Header().Get("Location") != "/dashboard" {
		t.Fatalf("retry status=%d location=%q", retry.Code, retry.Header().Get("Location"))
	}
	calls := up.listCalls()
	page := do(router, http.MethodGet, "/dashboard", cookies)
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), "Compra de insumos") {
		t.Fatalf("dashboard after retry status=%d", page.Code)
	}
	if up.listCalls() != calls {
		t.Fatalf("redirected dashboard reloaded the listing")
	}
}

func TestCrawlersGetNoSession(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1)")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	if cookies := rec.Result().Cookies(); len(cookies) != 0 {
		t.Fatalf("crawler got a session cookie: %v", cookies)
	}

	browser := do(router, http.MethodGet, "/dashboard", nil)
	if len(browser.Result().Cookies()) == 0 {
		t.Fatalf("browser got no session cookie")
	}
}

func TestDashboard_ClearRedirects(t *testing.T) {
	router, up := newTestRouter(t)
	rec := do(router, http.MethodGet, "/dashboard/Maule", nil)
	cookies := rec.Result().Cookies()

	cleared := do(router, http.MethodPost, "/dashboard/clear", cookies)
	if cleared.Code != http.StatusSeeOther || cleared.Header().Get("Location") != "/dashboard" {
		t.Fatalf("clear status=%d location=%q", cleared.Code, cleared.Header().Get("Location"))
	}
	if strings.Contains(up.lastQuery(), "region=") {
		t.Fatalf("clear kept the region: %s", up.lastQuery())
	}
}

func TestDashboard_UnrelatedQueryKeepsFilters(t *testing.T) {
	router, up := newTestRouter(t)
	rec := do(router, http.MethodGet, "/dashboard/Maule", nil)
	cookies := rec.Result().Cookies()
	calls := up.listCalls()

	again := do(router, http.MethodGet, "/dashboard?utm_source=boletin", cookies)
	if again.Code != http.StatusOK {
		t.Fatalf("status=%d", again.Code)
	}
	if up.listCalls() != calls {
		t.Fatalf("tracking parameter reloaded the listing")
	}
	if !strings.Contains(up.lastQuery(), "region=Maule") {
		t.Fatalf("last query=%s", up.lastQuery())
	}
}

func TestDetailPages(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/licitacion/1057-12-LE25", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Criterios de evaluación") || !strings.Contains(body, "70%") {
		t.Fatalf("criteria section missing")
	}
	if strings.Contains(body, "Fechas del proceso") {
		t.Fatalf("extra dates section rendered without data")
	}

	if rec := do(router, http.MethodGet, "/licitacion/no-existe", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing tender status=%d", rec.Code)
	}

	pdf := do(router, http.MethodGet, "/licitacion/1057-12-LE25/pdf", nil)
	if pdf.Code != http.StatusOK || !strings.HasPrefix(pdf.Body.String(), "%PDF-") {
		t.Fatalf("pdf status=%d", pdf.Code)
	}
}

func TestAPI(t *testing.T) {
	router, up := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/licitaciones?region=CL-RM&estado=publicada&limit=20", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	last := up.lastQuery()
	if !strings.Contains(last, "region=Metropolitana") || !strings.Contains(last, "estado=Publicada") || !strings.Contains(last, "limit=20") {
		t.Fatalf("upstream query=%s", last)
	}
	var list struct {
		Success bool `json:"success"`
		Total   int  `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || !list.Success || list.Total != 2 {
		t.Fatalf("list=%+v err=%v", list, err)
	}

	if rec := do(router, http.MethodGet, "/api/licitaciones?limit=500", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("oversized limit status=%d", rec.Code)
	}
	if rec := do(router, http.MethodGet, "/api/licitaciones/no-existe", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing tender status=%d", rec.Code)
	}

	stats := do(router, http.MethodGet, "/api/estadisticas", nil)
	if stats.Code != http.StatusOK || !strings.Contains(stats.Body.String(), `"totalLicitaciones":2`) {
		t.Fatalf("stats status=%d body=%s", stats.Code, stats.Body.String())
	}
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)
	rec := do(router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}
