package report

import (
	"github.com/google/uuid"

	"github.com/physiomanager/backend/internal/domain/clinic"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// maxProjectionDays caps the calculator's range at one year plus a day,
// keeping the day-by-day walk bounded.
const maxProjectionDays = 366

// walkScheduledDays iterates every day in [from, to] and invokes visit
// for each (day, patient) pair where the patient has a scheduled
// session. Patients in the excluded set are skipped entirely. The walk
// is pure: identical inputs always produce the identical visit sequence.
func walkScheduledDays(
	patients []clinic.Patient,
	from, to clinic.Date,
	excluded map[uuid.UUID]bool,
	visit func(day clinic.Date, patient *clinic.Patient),
) error {
	if to.Before(from) {
		return shared.NewDomainError("INVALID_RANGE", "Range end precedes its start")
	}

	days := 0
	for day := from; !day.After(to); day = day.Next() {
		days++
		if days > maxProjectionDays {
			return shared.NewDomainError("RANGE_TOO_LARGE", "Projection ranges are limited to one year")
		}
		for i := range patients {
			p := &patients[i]
			if excluded[p.ID] {
				continue
			}
			if clinic.IsScheduled(p, day) {
				visit(day, p)
			}
		}
	}
	return nil
}

func rangeDays(from, to clinic.Date) int {
	days := 0
	for day := from; !day.After(to); day = day.Next() {
		days++
		if days > maxProjectionDays {
			break
		}
	}
	return days
}
