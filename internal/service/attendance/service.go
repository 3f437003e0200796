package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AttendanceServiceImpl struct {
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	hoursPerDay    int
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	hoursPerDay int,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		hoursPerDay:    hoursPerDay,
	}
}

func getCompanyFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", user.ErrInvalidToken, err)
	}

	companyID, ok := claims["company_id"].(string)
	if !ok || companyID == "" {
		return "", fmt.Errorf("%w: company_id claim is missing or invalid", user.ErrCompanyIDRequired)
	}
	return companyID, nil
}

func (s *AttendanceServiceImpl) RecordAttendance(ctx context.Context, req attendance.RecordAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	companyID, err := getCompanyFromContext(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, companyID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}

	now := time.Now()
	entry := attendance.Entry{
		ID:            id.String(),
		CompanyID:     companyID,
		EmployeeID:    req.EmployeeID,
		Date:          req.ParsedDate,
		Status:        attendance.Status(req.Status),
		CheckIn:       req.ParsedCheckIn,
		CheckOut:      req.ParsedCheckOut,
		RegularHours:  decimal.Zero,
		OvertimeHours: decimal.Zero,
		LateMinutes:   req.LateMinutes,
		Excused:       req.Excused,
		Notes:         req.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	// Explicit hours are used when no check-in/out pair is given.
	if req.RegularHours != nil {
		entry.RegularHours = *req.RegularHours
	}
	if req.OvertimeHours != nil {
		entry.OvertimeHours = *req.OvertimeHours
	}
	entry.TotalHours = entry.RegularHours.Add(entry.OvertimeHours)
	entry.DeriveHours(s.hoursPerDay)

	created, err := s.attendanceRepo.Create(ctx, entry)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	return mapToResponse(created), nil
}

func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, req attendance.ListAttendanceRequest) ([]attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	companyID, err := getCompanyFromContext(ctx)
	if err != nil {
		return nil, err
	}

	from, to := payroll.PeriodBounds(req.PeriodMonth, req.PeriodYear)
	entries, err := s.attendanceRepo.ListByEmployeePeriod(ctx, req.EmployeeID, from, to, companyID)
	if err != nil {
		return nil, err
	}

	responses := make([]attendance.AttendanceResponse, 0, len(entries))
	for _, e := range entries {
		responses = append(responses, mapToResponse(e))
	}
	return responses, nil
}

func mapToResponse(e attendance.Entry) attendance.AttendanceResponse {
	resp := attendance.AttendanceResponse{
		ID:            e.ID,
		EmployeeID:    e.EmployeeID,
		Date:          e.Date.Format("2006-01-02"),
		Status:        string(e.Status),
		TotalHours:    e.TotalHours,
		RegularHours:  e.RegularHours,
		OvertimeHours: e.OvertimeHours,
		LateMinutes:   e.LateMinutes,
		Excused:       e.Excused,
		Notes:         e.Notes,
	}
	if e.CheckIn != nil {
		s := e.CheckIn.Format(time.RFC3339)
		resp.CheckIn = &s
	}
	if e.CheckOut != nil {
		s := e.CheckOut.Format(time.RFC3339)
		resp.CheckOut = &s
	}
	return resp
}
