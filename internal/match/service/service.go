package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shipmatch-service/internal/match/model"
	"shipmatch-service/internal/store"
)

// Service wires the matching engine to a record store. It holds no mutable
// state of its own; every match query is independent.
type Service struct {
	store store.Store
	log   zerolog.Logger
}

func New(st store.Store, logger zerolog.Logger) *Service {
	return &Service{store: st, log: logger}
}

// ResolveAndMatch — resolve a shipment by hbl_no (narrowed by agent and
// sheet_name when given), extract its vessel/port from the raw row and run a
// live match against the booking candidates. Matching is never cached;
// matched_at is computed fresh on every call.
func (s *Service) ResolveAndMatch(ctx context.Context, hblNo, agent, sheetName string, threshold float64) (*model.MatchResult, error) {
	if threshold <= 0 {
		threshold = model.DefaultThreshold
	}

	q := s.store.Table(model.TableShipments).Select().Eq("hbl_no", hblNo)
	if strings.TrimSpace(agent) != "" {
		q = q.Eq("agent", agent)
	}
	if strings.TrimSpace(sheetName) != "" {
		q = q.Eq("sheet_name", sheetName)
	}
	rows, err := q.Limit(1).Execute(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, model.ErrShipmentNotFound
	}
	ship := rows[0]

	raw, _ := ship["raw_json"].(map[string]any)
	vessel := firstAlias(raw, model.VesselAliases)
	port := firstAlias(raw, model.PortAliases)

	best, score, err := s.FindBestMatch(ctx, vessel, port, threshold)
	if err != nil {
		return nil, err
	}

	res := &model.MatchResult{
		HblNo:           asString(ship["hbl_no"]),
		Agent:           asString(ship["agent"]),
		SheetName:       asString(ship["sheet_name"]),
		BlVessel:        vessel,
		BlVesselClean:   NormalizeVessel(vessel),
		Port:            port,
		SimilarityScore: math.Round(score*100) / 100,
		MatchFound:      best != nil,
		Raw:             raw,
		MatchedAt:       time.Now().UTC().Format(time.RFC3339),
	}
	if best != nil {
		res.BookingVessel = &best.Vessel
		res.BookingVesselID = &best.ID
		res.ForecastETA = best.ForecastETA
		res.BookingETA = best.BookingETA
	}
	return res, nil
}

// IngestBookings — per-row upsert of booking/forecast rows keyed by
// (vessel_clean, port). A row that fails to parse or write is logged and
// skipped; the counters cover successful rows only.
func (s *Service) IngestBookings(ctx context.Context, rows []map[string]string) (inserted, updated int) {
	bookings := s.store.Table(model.TableBookings)

	for i, rec := range rows {
		vessel := firstAliasStr(rec, model.BookingVesselAliases)
		clean := NormalizeVessel(vessel)
		if clean == "" {
			// unmatchable row, and an empty vessel_clean would collide in
			// the upsert key
			continue
		}
		port := firstAliasStr(rec, model.BookingPortAliases)

		fields := store.Row{
			"vessel":       vessel,
			"vessel_clean": clean,
			"port":         port,
			"booking_eta":  ISODate(firstAliasStr(rec, model.BookingETAAliases)),
			"forecast_eta": ISODate(firstAliasStr(rec, model.ForecastETAAliases)),
			"raw_json":     toAnyMap(rec),
			"created_at":   time.Now().UTC().Format(time.RFC3339),
		}

		existing, err := bookings.Select("id").
			Eq("vessel_clean", clean).Eq("port", port).
			Limit(1).Execute(ctx)
		if err != nil {
			s.log.Warn().Err(err).Int("row", i).Msg("booking lookup failed, row skipped")
			continue
		}

		if len(existing) > 0 {
			if _, err := bookings.Update(fields).Eq("id", existing[0]["id"]).Execute(ctx); err != nil {
				s.log.Warn().Err(err).Int("row", i).Msg("booking update failed, row skipped")
				continue
			}
			updated++
		} else {
			if err := bookings.Insert(ctx, []store.Row{fields}); err != nil {
				s.log.Warn().Err(err).Int("row", i).Msg("booking insert failed, row skipped")
				continue
			}
			inserted++
		}
	}
	return inserted, updated
}

// IngestShipments — upload of bill-of-lading rows for one agent, upserted by
// (hbl_no, sheet_name, agent). Duplicate HBLs within the upload collapse to
// the first occurrence. The full row survives as raw_json.
func (s *Service) IngestShipments(ctx context.Context, rows []map[string]string, agent string) (int, error) {
	hblCol, sheetCol := "", ""
	for _, rec := range rows {
		if hblCol == "" {
			hblCol = firstAliasKey(rec, model.HblAliases)
		}
		if sheetCol == "" {
			sheetCol = firstAliasKey(rec, model.SheetAliases)
		}
		if hblCol != "" && sheetCol != "" {
			break
		}
	}
	if hblCol == "" || sheetCol == "" {
		return 0, fmt.Errorf("missing required columns: HBL and Sheet")
	}

	seen := make(map[string]bool, len(rows))
	payload := make([]store.Row, 0, len(rows))
	now := time.Now().UTC().Format(time.RFC3339)
	for _, rec := range rows {
		hbl := strings.TrimSpace(rec[hblCol])
		if hbl == "" || seen[hbl] {
			continue
		}
		seen[hbl] = true
		payload = append(payload, store.Row{
			"hbl_no":     hbl,
			"sheet_name": strings.TrimSpace(rec[sheetCol]),
			"agent":      agent,
			"raw_json":   toAnyMap(rec),
			"created_at": now,
		})
	}

	if err := s.store.Table(model.TableShipments).Upsert(ctx, payload, "hbl_no", "agent", "sheet_name"); err != nil {
		return 0, err
	}
	return len(payload), nil
}

// ===== field extraction helpers =====

// firstAlias — ordered-priority lookup in a raw row: the first alias with a
// non-empty value wins.
func firstAlias(raw map[string]any, aliases []string) string {
	for _, k := range aliases {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(asString(v)); s != "" {
			return s
		}
	}
	return ""
}

func firstAliasStr(rec map[string]string, aliases []string) string {
	for _, k := range aliases {
		if s := strings.TrimSpace(rec[k]); s != "" {
			return s
		}
	}
	return ""
}

// firstAliasKey — which alias is actually present as a column in this row.
func firstAliasKey(rec map[string]string, aliases []string) string {
	for _, k := range aliases {
		if _, ok := rec[k]; ok {
			return k
		}
	}
	return ""
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

func asStringPtr(v any) *string {
	s := asString(v)
	if s == "" {
		return nil
	}
	return &s
}

func toAnyMap(rec map[string]string) map[string]any {
	m := make(map[string]any, len(rec))
	for k, v := range rec {
		m[k] = v
	}
	return m
}
