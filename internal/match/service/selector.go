package service

import (
	"context"
	"strings"

	"shipmatch-service/internal/match/model"
	"shipmatch-service/internal/store"
)

// loadCandidates — booking rows for the scoring loop. Filtered by port when
// one is given; a filtered query that starves the matcher (zero rows) is
// retried without the filter. Store read errors propagate: no candidates,
// no decision.
func (s *Service) loadCandidates(ctx context.Context, port string) ([]model.BookingRecord, error) {
	byPort := strings.TrimSpace(port) != ""
	rows, err := s.queryBookings(ctx, port)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 && byPort {
		rows, err = s.queryBookings(ctx, "")
		if err != nil {
			return nil, err
		}
	}

	out := make([]model.BookingRecord, 0, len(rows))
	for _, r := range rows {
		b := bookingFromRow(r)
		if b.VesselClean == "" {
			b.VesselClean = NormalizeVessel(b.Vessel)
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Service) queryBookings(ctx context.Context, port string) ([]store.Row, error) {
	q := s.store.Table(model.TableBookings).Select()
	if strings.TrimSpace(port) != "" {
		q = q.Eq("port", port)
	}
	return q.Execute(ctx)
}

// FindBestMatch — greedy best candidate for a raw bill-of-lading vessel
// string. Scans every candidate in load order, tracks the strict maximum
// (first one wins ties) and gates acceptance on score >= threshold.
// A rejected best still reports its score for near-miss diagnostics.
func (s *Service) FindBestMatch(ctx context.Context, vessel, port string, threshold float64) (*model.BookingRecord, float64, error) {
	if strings.TrimSpace(vessel) == "" {
		return nil, 0, nil
	}
	clean := NormalizeVessel(vessel)

	cands, err := s.loadCandidates(ctx, port)
	if err != nil {
		return nil, 0, err
	}

	var best *model.BookingRecord
	bestScore := -1.0 // internal sentinel, never surfaced
	for i := range cands {
		sc := Score(clean, cands[i].VesselClean)
		if sc > bestScore {
			bestScore = sc
			best = &cands[i]
		}
	}

	if best == nil {
		return nil, 0, nil
	}
	if bestScore < threshold {
		return nil, bestScore, nil
	}
	return best, bestScore, nil
}

func bookingFromRow(r store.Row) model.BookingRecord {
	b := model.BookingRecord{
		Vessel:      asString(r["vessel"]),
		VesselClean: asString(r["vessel_clean"]),
		Port:        asString(r["port"]),
		BookingETA:  asStringPtr(r["booking_eta"]),
		ForecastETA: asStringPtr(r["forecast_eta"]),
	}
	if id, ok := r["id"].(int64); ok {
		b.ID = id
	}
	if raw, ok := r["raw_json"].(map[string]any); ok {
		b.Raw = raw
	}
	return b
}
