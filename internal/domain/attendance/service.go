package attendance

import "context"

type AttendanceService interface {
	// RecordAttendance stores one day for an employee, deriving hours from check-in/out when given
	RecordAttendance(ctx context.Context, req RecordAttendanceRequest) (AttendanceResponse, error)

	ListAttendance(ctx context.Context, req ListAttendanceRequest) ([]AttendanceResponse, error)
}
