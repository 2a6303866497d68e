// Package domain models the two extracts behind the crime and weather report
// and the monthly tables derived from them.
//
// # Data Sources
//
// Crime incidents come from a street-level police extract, one row per
// reported incident. The extract is already month-granular: the date column
// holds "YYYY-MM" rather than a calendar day, and coordinates are snapped to
// an anonymised street point.
//
// Daily weather comes from a station summary, one row per calendar day, with
// the column names used by the station export:
//
//	TemperatureCAvg  mean air temperature, °C
//	Precmm           precipitation, mm
//	WindkmhInt       mean wind speed, km/h
//	lowClOct         low cloud cover, oktas (0–8)
//	PreselevHp       sea-level pressure, hPa (mostly empty, dropped)
//	SnowDepcm        snow depth, cm (mostly empty, dropped)
//
// # Conventions
//
// Month key:
//
//	Both datasets are aligned on a "YYYY-MM" key. Crime dates are used as-is;
//	weather dates are truncated by [MonthKey]. Lexical order of keys equals
//	chronological order.
//
// Missing values:
//
//	outcome_status  absent means not yet recorded; replaced by "Unknown".
//	Precmm          absent is read as "no rainfall occurred" (0 mm). This is
//	                a policy choice, not a measurement.
//	lowClOct        absent is replaced by the column mean of observed days.
//
// Joining:
//
//	The merged monthly table keeps every crime month. A month without weather
//	keeps nil weather fields; nothing is imputed at the monthly level.
package domain
