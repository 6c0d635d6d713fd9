package domain

// MaxQueryLimit caps a prayer time listing at a leap year of days.
const MaxQueryLimit = 366

// PrayerTimeQuery carries the optional filters of a prayer time listing from
// the HTTP layer to the repo layer. StartDate and EndDate are inclusive ISO
// dates. Limit is always between 1 and MaxQueryLimit after NewPrayerTimeQuery.
type PrayerTimeQuery struct {
	StartDate *string
	EndDate   *string
	Limit     int
}

// NewPrayerTimeQuery builds a PrayerTimeQuery from optional HTTP query params.
// A missing or non-positive limit falls back to MaxQueryLimit, and larger
// values are capped to it.
func NewPrayerTimeQuery(start, end *string, limit *int) PrayerTimeQuery {
	q := PrayerTimeQuery{StartDate: start, EndDate: end, Limit: MaxQueryLimit}
	if limit != nil && *limit >= 1 && *limit < MaxQueryLimit {
		q.Limit = *limit
	}
	return q
}

// Between builds a query covering an inclusive date range.
func Between(start, end string) PrayerTimeQuery {
	return PrayerTimeQuery{StartDate: &start, EndDate: &end, Limit: MaxQueryLimit}
}
