// Package domain models eHSN (electronic hydrometric station notes) field
// visits and their conversion into time-series measurement records.
//
// # Data Source
//
// Field technicians fill in an eHSN form during each station visit. The
// upstream collector service deserializes the form, wraps it in a small JSON
// envelope (station number, visit date, the form sections) and publishes it
// to the Kafka source topic. Every section of the form is optional; a visit
// may carry any subset of stage readings, a discharge measurement summary,
// environmental conditions and logged sensor results.
//
// # eHSN Conventions
//
// Time-of-day format:
//
//	"HH:MM" or "HH:MM:SS" in station local time, e.g. "08:30" or "14:05:30".
//	Anything else (empty, padded, single-digit hours, wrong delimiters)
//	does not resolve, and rows with unresolvable times are dropped rather
//	than errored. The shape is validated by regex only; values like "99:99"
//	match the shape and are normalized by the timestamp constructor rather
//	than rejected. The visit date supplies the calendar day, the station's
//	standard UTC offset supplies the zone.
//
// Stage readings:
//
//	Each row carries a primary (WL1) and secondary (WL2) water level in
//	metres. WL1 wins when both are present; the form guarantees at least
//	one. A sensor reset correction may be attached to a row together with
//	a label naming who or what applied it; corrected rows get a remark of
//	the form "@<time> <applier>. Correction:<value>".
//
// Discharge measurement summary:
//
//	When the section is present the form guarantees all seven scalars:
//	air temperature, water temperature, section width, section area,
//	mean velocity, mean gauge height and discharge. All seven records
//	share the measurement window [start, end]. Technicians sometimes
//	leave the window's clock strings malformed; those records are still
//	published with an unresolved (zero) anchor.
//
// Sensor results:
//
//	Three parallel columns of equal length: sensor name, sample time,
//	sample value, indexed positionally. Only channels on the allow-list
//	in sensorChannels become records; the velocity, discharge and
//	temperature sensor columns that also appear in real forms are
//	deliberately ignored.
//
// # Visit IDs
//
// Visit IDs are deterministic SHA-256 hashes of station|date, so replaying
// the same raw visit yields the same ID and downstream upserts stay
// idempotent. See [VisitID].
package domain
