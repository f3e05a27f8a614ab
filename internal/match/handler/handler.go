package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"shipmatch-service/internal/fileio"
	"shipmatch-service/internal/match/model"
	"shipmatch-service/internal/match/service"
)

// MatchHBL — GET /match/hbl?hbl=...&agent=&sheet=&similarity_threshold=75
// Resolves the shipment and runs a live match against booking candidates.
func MatchHBL(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := reqLogger(logger, r)

		hbl := strings.TrimSpace(r.URL.Query().Get("hbl"))
		if hbl == "" {
			httpError(w, http.StatusBadRequest, "missing hbl")
			return
		}
		agent := r.URL.Query().Get("agent")
		sheet := r.URL.Query().Get("sheet")
		threshold := toFloat(r.URL.Query().Get("similarity_threshold"), model.DefaultThreshold)

		res, err := svc.ResolveAndMatch(r.Context(), hbl, agent, sheet, threshold)
		if err != nil {
			if errors.Is(err, model.ErrShipmentNotFound) {
				httpError(w, http.StatusNotFound, "shipment not found")
				return
			}
			log.Error().Err(err).Str("hbl", hbl).Msg("match failed")
			httpError(w, http.StatusInternalServerError, "match failed")
			return
		}

		writeJSON(w, http.StatusOK, res)
		log.Info().
			Str("hbl", hbl).
			Bool("match_found", res.MatchFound).
			Float64("score", res.SimilarityScore).
			Dur("elapsed", time.Since(start)).
			Msg("match done")
	}
}

// UploadBookings — POST /bookings/upload, multipart "file" with a
// booking/forecast sheet. Rows upsert by (vessel_clean, port); bad rows are
// skipped, the response carries aggregate counters only.
func UploadBookings(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)

		rows, ok := readUpload(w, r)
		if !ok {
			return
		}

		inserted, updated := svc.IngestBookings(r.Context(), rows)
		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"inserted": inserted,
			"updated":  updated,
		})
		log.Info().Int("rows", len(rows)).Int("inserted", inserted).Int("updated", updated).Msg("bookings upload")
	}
}

// UploadShipments — POST /shipments/upload, multipart "file" plus form
// "agent". Upserts by (hbl_no, sheet_name, agent).
func UploadShipments(svc *service.Service, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := reqLogger(logger, r)

		rows, ok := readUpload(w, r)
		if !ok {
			return
		}
		agent := strings.TrimSpace(r.FormValue("agent"))
		if agent == "" {
			httpError(w, http.StatusBadRequest, "missing agent")
			return
		}

		uploaded, err := svc.IngestShipments(r.Context(), rows, agent)
		if err != nil {
			if strings.Contains(err.Error(), "missing required columns") {
				httpError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error().Err(err).Msg("shipments upload failed")
			httpError(w, http.StatusInternalServerError, "upload failed")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"uploaded": uploaded,
		})
		log.Info().Str("agent", agent).Int("uploaded", uploaded).Msg("shipments upload")
	}
}

// readUpload pulls the multipart "file" field and parses it into rows.
// Writes the error response itself when something is off.
func readUpload(w http.ResponseWriter, r *http.Request) ([]map[string]string, bool) {
	defer r.Body.Close()
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return nil, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httpError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return nil, false
	}
	defer file.Close()

	rows, err := fileio.ReadAnyMaps(file, header.Filename, atoi(r.FormValue("header_row"), 1))
	if err != nil {
		httpError(w, http.StatusBadRequest, "could not read file: "+err.Error())
		return nil, false
	}
	return rows, true
}
