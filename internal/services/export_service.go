package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strconv"

	"github.com/ramandeep-singh77/IntervueAi/internal/utils"
)

// ExportService renders a session report for download.
type ExportService interface {
	ExportJSON(ctx context.Context, sessionID string) ([]byte, error)
	ExportCSV(ctx context.Context, sessionID string) ([]byte, error)
}

type exportService struct {
	reports ReportService
}

func NewExportService(reports ReportService) ExportService {
	return &exportService{reports: reports}
}

func (s *exportService) ExportJSON(ctx context.Context, sessionID string) ([]byte, error) {
	const op = "ExportService.ExportJSON"

	report, err := s.reports.Generate(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to encode report", err)
	}
	return out, nil
}

var csvHeader = []string{
	"Question", "Response_Words", "Speaking_Rate_WPM", "Filler_Words",
	"Voice_Stability", "Face_Detection", "Eye_Contact", "Confidence_Score",
}

func (s *exportService) ExportCSV(ctx context.Context, sessionID string) ([]byte, error) {
	const op = "ExportService.ExportCSV"

	report, err := s.reports.Generate(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to write csv", err)
	}

	for _, q := range report.Questions {
		row := []string{q.Question, "0", "0.0", "0", "0.0", "0.0", "0.0", "0.0"}
		if q.Answered && q.Metrics != nil {
			m := q.Metrics
			row[1] = strconv.Itoa(m.WordCount)
			row[2] = formatScore(m.SpeakingRateWPM)
			row[3] = strconv.Itoa(len(m.FillerWords))
			if m.Voice != nil {
				row[4] = formatScore(m.Voice.StabilityScore)
			}
			if m.Visual != nil {
				row[5] = formatScore(m.Visual.FaceDetectionRate)
				row[6] = formatScore(m.Visual.EyeContactRate)
				row[7] = formatScore(m.Visual.Confidence)
			}
		}
		if err := w.Write(row); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to write csv", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to write csv", err)
	}
	return buf.Bytes(), nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
