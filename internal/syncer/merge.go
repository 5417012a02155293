package syncer

import (
	"sort"

	"github.com/user/fingerpulse/internal/model"
)

// PriorLookup fetches the previously stored record for one (user, date) key.
// A nil record means no prior row exists.
type PriorLookup func(fingerprintID, date string) (*model.DailyAttendanceRecord, error)

type dailyKey struct {
	userID string
	date   string
}

type dailyAgg struct {
	checkIn  string // earliest morning punch in the batch
	checkOut string // latest afternoon punch in the batch
}

// Merge groups a batch of normalized punches by (user, date) and reduces each
// group to a single attendance record: earliest morning punch as check-in,
// latest afternoon punch as check-out, merged field-wise against whatever is
// already stored for the key. A field never regresses to empty once known.
// Records where neither field ends up set are not emitted.
func Merge(batch []model.NormalizedPunch, prior PriorLookup) []model.DailyAttendanceRecord {
	groups := make(map[dailyKey]*dailyAgg)

	for _, punch := range batch {
		key := dailyKey{userID: punch.UserID, date: punch.Date}
		agg, ok := groups[key]
		if !ok {
			agg = &dailyAgg{}
			groups[key] = agg
		}

		// Fixed-width HH:MM strings compare correctly as strings.
		if punch.IsMorning {
			if agg.checkIn == "" || punch.Time < agg.checkIn {
				agg.checkIn = punch.Time
			}
		} else {
			if agg.checkOut == "" || punch.Time > agg.checkOut {
				agg.checkOut = punch.Time
			}
		}
	}

	records := make([]model.DailyAttendanceRecord, 0, len(groups))
	for key, agg := range groups {
		rec := model.DailyAttendanceRecord{
			FingerprintID: key.userID,
			Date:          key.date,
			CheckIn:       agg.checkIn,
			CheckOut:      agg.checkOut,
		}

		if prior != nil {
			// A failed lookup is treated as "no prior row"; the store
			// upsert still cannot regress existing values.
			if existing, err := prior(key.userID, key.date); err == nil && existing != nil {
				if rec.CheckIn == "" {
					rec.CheckIn = existing.CheckIn
				}
				if rec.CheckOut == "" {
					rec.CheckOut = existing.CheckOut
				}
			}
		}

		if rec.CheckIn == "" && rec.CheckOut == "" {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].FingerprintID != records[j].FingerprintID {
			return records[i].FingerprintID < records[j].FingerprintID
		}
		return records[i].Date < records[j].Date
	})

	return records
}
