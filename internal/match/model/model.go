package model

import "errors"

// Store table names (kept from the original schema).
const (
	TableShipments = "shipments_raw"
	TableBookings  = "booking_forecast"
)

// DefaultThreshold is the acceptance threshold for a fuzzy vessel match.
// Empirically tuned; callers may override per request.
const DefaultThreshold = 75.0

// ErrShipmentNotFound signals that no shipment matched the given identifiers.
var ErrShipmentNotFound = errors.New("shipment not found")

// ShipmentRecord is one uploaded bill-of-lading row. hbl_no is a business
// key, not globally unique; the triple (hbl_no, agent, sheet_name) is.
type ShipmentRecord struct {
	HblNo     string         `json:"hbl_no"`
	Agent     string         `json:"agent"`
	SheetName string         `json:"sheet_name"`
	Raw       map[string]any `json:"raw_json"`
}

// BookingRecord is one booking/forecast row. VesselClean is the normalized
// form, cached at write time; the loader recomputes it when missing.
type BookingRecord struct {
	ID          int64          `json:"id"`
	Vessel      string         `json:"vessel"`
	VesselClean string         `json:"vessel_clean"`
	Port        string         `json:"port"`
	BookingETA  *string        `json:"booking_eta"`
	ForecastETA *string        `json:"forecast_eta"`
	Raw         map[string]any `json:"raw_json,omitempty"`
}

// MatchResult is computed per query and never persisted.
// MatchFound == true implies Score >= threshold and a non-nil booking.
type MatchResult struct {
	HblNo           string         `json:"hbl_no"`
	Agent           string         `json:"agent"`
	SheetName       string         `json:"sheet_name"`
	BlVessel        string         `json:"bl_vessel"`
	BlVesselClean   string         `json:"bl_vessel_clean"`
	Port            string         `json:"port"`
	SimilarityScore float64        `json:"similarity_score"`
	MatchFound      bool           `json:"match_found"`
	BookingVessel   *string        `json:"booking_vessel"`
	BookingVesselID *int64         `json:"booking_vessel_id"`
	ForecastETA     *string        `json:"forecast_eta"`
	BookingETA      *string        `json:"booking_eta"`
	Raw             map[string]any `json:"raw_json"`
	MatchedAt       string         `json:"matched_at"`
}

// Upstream sheets are inconsistent about column naming. These alias lists
// are an ordered-priority contract: first non-empty value wins. Do not
// replace with fuzzy header matching.
var (
	VesselAliases = []string{
		"Vessel", "First Vessel", "Second Vessel", "First Vessel Name",
		"VESSEL", "vessel", "Vessel Name",
	}
	PortAliases = []string{
		"Port of Origin", "Port", "port", "Port of Loading", "POL",
	}

	// Booking-sheet variants (upload side).
	BookingVesselAliases = []string{
		"Vessel", "VESSEL", "vessel", "Vessel Name", "VESSEL NAME",
	}
	BookingPortAliases = []string{
		"Port", "PORT", "port", "Port of Loading", "POL",
	}
	BookingETAAliases  = []string{"Booking ETA", "booking_eta", "BOOKING ETA", "ETA"}
	ForecastETAAliases = []string{"Forecast ETA", "forecast_eta", "FORECAST ETA", "ETD"}

	HblAliases   = []string{"HBL NO", "HBL_NO", "hbl_no", "HBL"}
	SheetAliases = []string{"Sheet", "SHEET", "sheet", "Sheet Name", "sheet_name"}
)
