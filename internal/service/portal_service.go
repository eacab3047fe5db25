package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/licitaciones-portal/internal/config"
	"github.com/nurpe/licitaciones-portal/internal/detail"
	"github.com/nurpe/licitaciones-portal/internal/export"
	"github.com/nurpe/licitaciones-portal/internal/listing"
	"github.com/nurpe/licitaciones-portal/internal/mapview"
	"github.com/nurpe/licitaciones-portal/internal/model"
	"github.com/nurpe/licitaciones-portal/internal/region"
	"github.com/nurpe/licitaciones-portal/internal/stats"
	"github.com/nurpe/licitaciones-portal/internal/tenderapi"
	"github.com/nurpe/licitaciones-portal/internal/view"
)

type TenderAPI interface {
	ListTenders(ctx context.Context, q tenderapi.Query) (*tenderapi.ListResult, error)
	GetTender(ctx context.Context, id string) (model.Tender, error)
	GetStatistics(ctx context.Context) (model.Statistics, error)
}

type ExcelGenerator interface {
	Generate(tenders []model.Tender) ([]byte, error)
}

type PDFGenerator interface {
	Generate(d view.Detail) ([]byte, error)
}

type PortalService struct {
	api         TenderAPI
	details     *detail.Loader
	excel       ExcelGenerator
	pdf         PDFGenerator
	log         zerolog.Logger
	now         func() time.Time
	maxPageSize int
}

func NewPortalService(api TenderAPI, details *detail.Loader, excel ExcelGenerator, pdf PDFGenerator, cfg *config.Config, log zerolog.Logger) *PortalService {
	return &PortalService{
		api:         api,
		details:     details,
		excel:       excel,
		pdf:         pdf,
		log:         log,
		now:         time.Now,
		maxPageSize: cfg.Listing.MaxPageSize,
	}
}

type FileResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

type HomeData struct {
	Summary model.Summary
	Map     mapview.View
	Regions []RegionLink
}

type RegionLink struct {
	Code  model.RegionCode
	Name  string
	Count int
	Href  string
}

// Summary prefers the server statistics and falls back to counting the
// largest page the API will return.
func (s *PortalService) Summary(ctx context.Context) (model.Summary, error) {
	server, err := s.api.GetStatistics(ctx)
	if err == nil && !server.IsEmpty() {
		return stats.Aggregate(nil, &server, s.now()), nil
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("statistics endpoint failed, counting tenders")
	}

	result, listErr := s.api.ListTenders(ctx, tenderapi.Query{Page: 1, Limit: s.maxPageSize})
	if listErr != nil {
		if err != nil {
			return model.Summary{}, classify(err)
		}
		return model.Summary{}, classify(listErr)
	}
	return stats.Aggregate(result.Page.Items, result.Statistics, s.now()), nil
}

func (s *PortalService) Home(ctx context.Context) (*HomeData, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}
	m := mapview.NewMap(region.Catalog(), summary, nil)
	data := &HomeData{Summary: summary, Map: m.View()}
	for _, cell := range data.Map.Cells {
		data.Regions = append(data.Regions, RegionLink{Code: cell.Code, Name: cell.Name, Count: cell.Count, Href: cell.Href})
	}
	return data, nil
}

// RegionMap builds the map with hover state and an optional selection. The
// returned name is the display name of the selected region, empty when
// nothing was selected.
func (s *PortalService) RegionMap(ctx context.Context, hover, selectCode model.RegionCode) (mapview.View, string, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return mapview.View{}, "", err
	}
	var selected string
	m := mapview.NewMap(region.Catalog(), summary, func(name string) { selected = name })
	if hover != "" {
		m.Hover(hover)
	}
	if selectCode != "" && !m.Select(selectCode) {
		return mapview.View{}, "", fmt.Errorf("%w: region %q", ErrNotFound, selectCode)
	}
	return m.View(), selected, nil
}

type DashboardData struct {
	listing.Snapshot
	Rows    []view.Row
	Summary model.Summary
	Regions []model.Region
}

// Dashboard applies the requested filters to the session's controller and
// returns what the table should show. A load failure is not returned as an
// error: it travels in Snapshot.Err so the page can offer a retry.
func (s *PortalService) Dashboard(ctx context.Context, ctrl *listing.Controller, next model.FilterState) (*DashboardData, error) {
	if err := ctrl.Apply(ctx, next); err != nil && !errors.Is(err, listing.ErrSuperseded) {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		s.log.Warn().Err(err).Msg("dashboard load failed")
	}
	return s.dashboardData(ctx, ctrl), nil
}

// DashboardView returns the current state without reloading.
func (s *PortalService) DashboardView(ctx context.Context, ctrl *listing.Controller) *DashboardData {
	return s.dashboardData(ctx, ctrl)
}

// Retry reloads the current filters.
func (s *PortalService) Retry(ctx context.Context, ctrl *listing.Controller) (*DashboardData, error) {
	if err := ctrl.Load(ctx); err != nil && errors.Is(err, context.Canceled) {
		return nil, err
	}
	return s.dashboardData(ctx, ctrl), nil
}

func (s *PortalService) ClearFilters(ctx context.Context, ctrl *listing.Controller) (*DashboardData, error) {
	if err := ctrl.ClearFilters(ctx); err != nil && errors.Is(err, context.Canceled) {
		return nil, err
	}
	return s.dashboardData(ctx, ctrl), nil
}

func (s *PortalService) dashboardData(ctx context.Context, ctrl *listing.Controller) *DashboardData {
	snap := ctrl.Snapshot()
	server := snap.Statistics
	if snap.Err == nil && server.IsEmpty() {
		if fetched, err := s.api.GetStatistics(ctx); err == nil {
			server = &fetched
		} else {
			s.log.Debug().Err(err).Msg("dashboard statistics unavailable")
		}
	}
	return &DashboardData{
		Snapshot: snap,
		Rows:     view.NewRows(snap.Items),
		Summary:  stats.Aggregate(snap.Items, server, s.now()),
		Regions:  region.Catalog(),
	}
}

// Detail loads the full record, degrading to the row already on the
// session's page.
func (s *PortalService) Detail(ctx context.Context, ctrl *listing.Controller, id string) (view.Detail, detail.Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return view.Detail{}, "", fmt.Errorf("%w: id is required", ErrInvalidInput)
	}
	var fallback *model.Tender
	if ctrl != nil {
		if t, ok := ctrl.Find(id); ok {
			fallback = &t
		}
	}
	t, source, err := s.details.Load(ctx, id, fallback)
	if err != nil {
		return view.Detail{}, "", classify(err)
	}
	d := view.NewDetail(t, s.now())
	d.Partial = source == detail.SourceFallback
	return d, source, nil
}

func (s *PortalService) DetailPDF(ctx context.Context, ctrl *listing.Controller, id string) (*FileResult, error) {
	d, _, err := s.Detail(ctx, ctrl, id)
	if err != nil {
		return nil, err
	}
	content, err := s.pdf.Generate(d)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	name := sanitizeFileName(d.ID)
	if name == "" {
		name = "detalle"
	}
	return &FileResult{
		FileName:    fmt.Sprintf("licitacion-%s.pdf", name),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

// ExportCSV and ExportExcel cover the page currently visible in the
// session, not the full result set.
func (s *PortalService) ExportCSV(ctrl *listing.Controller) (*FileResult, error) {
	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, ctrl.Visible()); err != nil {
		return nil, err
	}
	return &FileResult{
		FileName:    export.CSVFileName,
		ContentType: "text/csv; charset=utf-8",
		Content:     buf.Bytes(),
	}, nil
}

func (s *PortalService) ExportExcel(ctrl *listing.Controller) (*FileResult, error) {
	content, err := s.excel.Generate(ctrl.Visible())
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return &FileResult{
		FileName:    export.ExcelFileName,
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

// SearchTenders is the stateless listing behind the JSON API.
func (s *PortalService) SearchTenders(ctx context.Context, f model.FilterState) (model.TenderPage, error) {
	if f.PageSize <= 0 || f.PageSize > s.maxPageSize {
		return model.TenderPage{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidInput, s.maxPageSize)
	}
	if f.Page < 1 {
		f.Page = 1
	}
	result, err := s.api.ListTenders(ctx, listing.QueryFor(f))
	if err != nil {
		return model.TenderPage{}, classify(err)
	}
	return result.Page, nil
}

func (s *PortalService) Tender(ctx context.Context, id string) (model.Tender, error) {
	t, _, err := s.details.Load(ctx, strings.TrimSpace(id), nil)
	if err != nil {
		return model.Tender{}, classify(err)
	}
	return t, nil
}

func sanitizeFileName(input string) string {
	result := make([]rune, 0, len(input))
	for _, r := range input {
		switch {
		case r >= 'a' && r <= 'z':
			result = append(result, r)
		case r >= 'A' && r <= 'Z':
			result = append(result, r)
		case r >= '0' && r <= '9':
			result = append(result, r)
		case r == '-', r == '_':
			result = append(result, r)
		default:
			result = append(result, '-')
		}
	}
	return strings.Trim(string(result), "-")
}
