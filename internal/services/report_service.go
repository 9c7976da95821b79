package services

import (
	"context"
	"errors"
	"fmt"

	"moneta/internal/charts"
	"moneta/internal/core"
	"moneta/internal/storage"
)

var ErrInvalidMonth = errors.New("month must be between 1 and 12")

type ReportService struct {
	storage *storage.Repository
	charts  *charts.Generator
}

func NewReportService(storage *storage.Repository, charts *charts.Generator) *ReportService {
	return &ReportService{storage: storage, charts: charts}
}

// Monthly aggregates a user's transactions for one calendar month.
func (s *ReportService) Monthly(ctx context.Context, userID int64, year, month int) (core.MonthlyReport, error) {
	if month < 1 || month > 12 {
		return core.MonthlyReport{}, ErrInvalidMonth
	}
	if year < 1 {
		return core.MonthlyReport{}, core.ErrInvalidDate
	}
	return s.storage.MonthlyReport(ctx, userID, year, month)
}

// MonthlyChart renders the monthly report as a PNG. The image is nil when the
// month has no transactions.
func (s *ReportService) MonthlyChart(ctx context.Context, userID int64, year, month int) ([]byte, error) {
	report, err := s.Monthly(ctx, userID, year, month)
	if err != nil {
		return nil, err
	}
	png, err := s.charts.RenderMonthlyReport(report)
	if err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return png, nil
}
