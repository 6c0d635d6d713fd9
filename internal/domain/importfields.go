package domain

// Import field names. These are the column names the batch endpoint accepts
// and the names an uploaded timetable must map onto. The spelling ("jammat",
// "dhur", "magrib") is the wire contract and must not be corrected.
const (
	FieldDate         = "date"
	FieldFajrStart    = "fajr_start"
	FieldFajrJammat   = "fajr_jammat"
	FieldSunrise      = "sunrise"
	FieldDhurStart    = "dhur_start"
	FieldDhurJammat   = "dhur_jammat"
	FieldAsrStart     = "asr_start"
	FieldAsrStart1    = "asr_start_1"
	FieldAsrJammat    = "asr_jammat"
	FieldMagribStart  = "magrib_start"
	FieldMagribJammat = "magrib_jammat"
	FieldIshaStart    = "isha_start"
	FieldIshaJammat   = "isha_jammat"
)

// RequiredImportFields is the fixed, ordered set of fields every import must
// map. Order is the display order of the mapping and review tables.
var RequiredImportFields = []string{
	FieldDate,
	FieldFajrStart,
	FieldFajrJammat,
	FieldSunrise,
	FieldDhurStart,
	FieldDhurJammat,
	FieldAsrStart,
	FieldAsrJammat,
	FieldMagribStart,
	FieldMagribJammat,
	FieldIshaStart,
	FieldIshaJammat,
}

// OptionalImportFields may be mapped but never block the mapping step.
var OptionalImportFields = []string{FieldAsrStart1}

// IsImportField reports whether name is a required or optional import field.
func IsImportField(name string) bool {
	for _, f := range RequiredImportFields {
		if f == name {
			return true
		}
	}
	for _, f := range OptionalImportFields {
		if f == name {
			return true
		}
	}
	return false
}

// ImportValues returns the record's values keyed by import field name,
// in the shape an export row or a mapping preview needs.
func (p PrayerTime) ImportValues() map[string]string {
	asr1 := ""
	if p.AsrStart1 != nil {
		asr1 = *p.AsrStart1
	}
	return map[string]string{
		FieldDate:         p.Date,
		FieldFajrStart:    p.FajrStart,
		FieldFajrJammat:   p.FajrJammat,
		FieldSunrise:      p.Sunrise,
		FieldDhurStart:    p.DhurStart,
		FieldDhurJammat:   p.DhurJammat,
		FieldAsrStart:     p.AsrStart,
		FieldAsrStart1:    asr1,
		FieldAsrJammat:    p.AsrJammat,
		FieldMagribStart:  p.MagribStart,
		FieldMagribJammat: p.MagribJammat,
		FieldIshaStart:    p.IshaStart,
		FieldIshaJammat:   p.IshaJammat,
	}
}
