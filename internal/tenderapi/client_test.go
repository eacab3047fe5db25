package tenderapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second, zerolog.Nop())
}

func TestQuery_OmitsEmptyFields(t *testing.T) {
	got := Query{Region: "Maule", Page: 2, Limit: 10}.Values().Encode()
	if got != "limit=10&page=2&region=Maule" {
		t.Fatalf("Values()=%q", got)
	}
	if got := (Query{Search: "  "}).Values().Encode(); got != "" {
		t.Fatalf("blank search must be omitted, got %q", got)
	}
}

func TestListTenders_NormalizesFields(t *testing.T) {
	var gotQuery string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/licitaciones" {
			t.Errorf("path=%s", r.URL.Path)
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"pagination": {"total": 42},
			"data": [
				{"id": "1234-5-LE25", "nombre": "Compra de insumos", "responsable": "Hospital Regional",
				 "Monto": "$ 1.500.000", "region": "Valparaíso", "estado": "Publicada",
				 "fechaPublicacion": "2025-03-01", "fecha_cierre": "15-03-2025 15:00",
				 "fechaVisitaTerreno": "N/A", "fechaAdjudicacion": "pronto",
				 "urlLicitacion": "https://www.mercadopublico.cl/ficha?code=1",
				 "linkAdjuntos": "No disponible",
				 "criteriosEvaluacion": [{"item": "Precio", "ponderacion": 60}, {"item": "Plazo", "ponderacion": "40%"}]},
				{"id": 99, "titulo": "Servicio de aseo", "monto": 2500.5, "region": "Región de Los Ríos", "estado": "Cerrada"}
			]
		}`))
	})

	result, err := client.ListTenders(context.Background(), Query{Region: "Valparaiso", Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListTenders: %v", err)
	}
	if gotQuery != "limit=10&page=1&region=Valparaiso" {
		t.Fatalf("query=%q", gotQuery)
	}
	if result.Page.Total != 42 {
		t.Fatalf("Total=%d; want 42 from pagination.total", result.Page.Total)
	}
	if len(result.Page.Items) != 2 {
		t.Fatalf("items=%d", len(result.Page.Items))
	}

	first := result.Page.Items[0]
	if first.Amount == nil || *first.Amount != 1_500_000 {
		t.Fatalf("Amount=%v", first.Amount)
	}
	if first.Region != "CL-VS" || first.Status != model.StatusPublicada {
		t.Fatalf("region=%s status=%s", first.Region, first.Status)
	}
	if first.PublishedAt == nil || first.PublishedAt.Day() != 1 {
		t.Fatalf("PublishedAt=%v", first.PublishedAt)
	}
	if first.ClosesAt == nil || first.ClosesAt.Hour() != 15 {
		t.Fatalf("ClosesAt=%v", first.ClosesAt)
	}
	if first.SiteVisit != nil {
		t.Fatalf("placeholder date must stay nil")
	}
	if first.RawDates["fechaAdjudicacion"] != "pronto" {
		t.Fatalf("RawDates=%v", first.RawDates)
	}
	if first.AltAttachmentsURL != "" {
		t.Fatalf("placeholder link kept: %q", first.AltAttachmentsURL)
	}
	if len(first.Criteria) != 2 || first.Criteria[0].Weighting != "60%" || first.Criteria[1].Weighting != "40%" {
		t.Fatalf("Criteria=%+v", first.Criteria)
	}

	second := result.Page.Items[1]
	if second.ID != "99" || second.Title != "Servicio de aseo" {
		t.Fatalf("second=%+v", second)
	}
	if second.Amount == nil || *second.Amount != 2500.5 {
		t.Fatalf("Amount=%v", second.Amount)
	}
	if second.Region != "CL-LR" {
		t.Fatalf("Region=%s", second.Region)
	}
}

func TestListTenders_TotalFallbacks(t *testing.T) {
	tcs := []struct {
		body string
		want int
	}{
		{`{"success":true,"total":7,"data":[]}`, 7},
		{`{"success":true,"estadisticas":{"total":"11"},"data":[]}`, 11},
		{`{"success":true,"data":[{"id":"a"},{"id":"b"}]}`, 2},
	}
	for _, tc := range tcs {
		body := tc.body
		client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(body))
		})
		result, err := client.ListTenders(context.Background(), Query{})
		if err != nil {
			t.Fatalf("ListTenders(%s): %v", body, err)
		}
		if result.Page.Total != tc.want {
			t.Fatalf("Total=%d; want %d for %s", result.Page.Total, tc.want, body)
		}
	}
}

func TestListTenders_SuccessFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false, "error": "tabla no disponible"}`))
	})
	_, err := client.ListTenders(context.Background(), Query{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err=%v; want *APIError", err)
	}
	if apiErr.Message != "tabla no disponible" {
		t.Fatalf("Message=%q", apiErr.Message)
	}
}

func TestGetTender_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/licitaciones/no-existe" {
			t.Errorf("path=%s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"success": false, "error": "Licitación no encontrada"}`))
	})
	_, err := client.GetTender(context.Background(), "no-existe")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v; want ErrNotFound", err)
	}
	if err.Error() != "Error 404: Licitación no encontrada" {
		t.Fatalf("Error()=%q", err.Error())
	}
}

func TestGetTender_ConnectionError(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, zerolog.Nop())
	_, err := client.GetTender(context.Background(), "x")
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("err=%v; want *ConnectionError", err)
	}
}

func TestGetStatistics(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "data": {
			"totalLicitaciones": 250, "licitacionesAbiertas": 80, "organismos": 31,
			"montoTotal": 123456789, "resumenPorRegion": {"Maule": 12, "Ñuble": "4"},
			"fechaUltimaActualizacion": "2025-03-09T10:00:00Z"}}`))
	})
	stats, err := client.GetStatistics(context.Background())
	if err != nil {
		t.Fatalf("GetStatistics: %v", err)
	}
	if stats.TotalTenders != 250 || stats.OpenTenders != 80 || stats.Organisms != 31 {
		t.Fatalf("stats=%+v", stats)
	}
	if stats.RegionSummary["Maule"] != 12 || stats.RegionSummary["Ñuble"] != 4 {
		t.Fatalf("RegionSummary=%v", stats.RegionSummary)
	}
	if stats.LastUpdated == nil || stats.LastUpdated.Day() != 9 {
		t.Fatalf("LastUpdated=%v", stats.LastUpdated)
	}
}

func TestParseAmount(t *testing.T) {
	tcs := []struct {
		raw  string
		want float64
		ok   bool
	}{
		{"1500000", 1500000, true},
		{"$ 1.234.567", 1234567, true},
		{"1.234", 1234, true},
		{"1.234,50", 1234.5, true},
		{"2500.5", 2500.5, true},
		{"CLP 9.900", 9900, true},
		{"a convenir", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Infinity", 0, false},
	}
	for _, tc := range tcs {
		got, ok := parseAmount(tc.raw)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("parseAmount(%q)=%v,%v; want %v,%v", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestNormalizeTender_AmountSources(t *testing.T) {
	tcs := []struct {
		name   string
		raw    string
		amount float64
		ok     bool
		text   string
	}{
		{"json number keeps decimals", `1500.000`, 1500, true, ""},
		{"quoted thousands", `"1.500"`, 1500, true, ""},
		{"quoted nan", `"NaN"`, 0, false, "NaN"},
		{"placeholder", `"No disponible"`, 0, false, ""},
		{"free text", `"a convenir"`, 0, false, "a convenir"},
	}
	for _, tc := range tcs {
		got := normalizeTender(rawRecord{"Monto": json.RawMessage(tc.raw)})
		if (got.Amount != nil) != tc.ok {
			t.Fatalf("%s: Amount=%v; want ok=%v", tc.name, got.Amount, tc.ok)
		}
		if tc.ok && *got.Amount != tc.amount {
			t.Fatalf("%s: Amount=%v; want %v", tc.name, *got.Amount, tc.amount)
		}
		if got.AmountText != tc.text {
			t.Fatalf("%s: AmountText=%q; want %q", tc.name, got.AmountText, tc.text)
		}
		if _, err := json.Marshal(got); err != nil {
			t.Fatalf("%s: marshal tender: %v", tc.name, err)
		}
	}
}
