package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	// ListByEmployeePeriod returns entries within [from, to] ordered by date.
	ListByEmployeePeriod(ctx context.Context, employeeID string, from, to time.Time, companyID string) ([]Entry, error)
}
