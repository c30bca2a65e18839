package employee

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

type EmployeeFilter struct {
	BranchID       *string
	Department     *string
	Position       *string
	Status         *string
	EmploymentType *string
	Search         *string
	Page           int
	Limit          int
	SortBy         string
	SortOrder      string
}

func (f *EmployeeFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}
}

type CreateEmployeeRequest struct {
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	DateOfBirth      *string           `json:"date_of_birth,omitempty"`
	Gender           *string           `json:"gender,omitempty"`
	MaritalStatus    *string           `json:"marital_status,omitempty"`
	Nationality      *string           `json:"nationality,omitempty"`
	NationalID       *string           `json:"national_id,omitempty"`
	Address          *string           `json:"address,omitempty"`
	City             *string           `json:"city,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`

	Position           string   `json:"position"`
	Department         string   `json:"department"`
	BranchID           string   `json:"branch_id"`
	ManagerID          *string  `json:"manager_id,omitempty"`
	JoiningDate        string   `json:"joining_date"`
	EmploymentType     string   `json:"employment_type"`
	ProbationEndDate   *string  `json:"probation_end_date,omitempty"`
	ContractEndDate    *string  `json:"contract_end_date,omitempty"`
	WorkingHoursPerDay *float64 `json:"working_hours_per_day,omitempty"`
	OvertimeRate       *float64 `json:"overtime_rate,omitempty"`

	BaseSalary   decimal.Decimal  `json:"base_salary"`
	Currency     string           `json:"currency,omitempty"`
	Allowances   []PayComponent   `json:"allowances,omitempty"`
	Deductions   []PayComponent   `json:"deductions,omitempty"`
	EPFEmployee  *decimal.Decimal `json:"epf_employee,omitempty"`
	EPFEmployer  *decimal.Decimal `json:"epf_employer,omitempty"`
	ETF          *decimal.Decimal `json:"etf,omitempty"`
	BankDetails  *BankDetails     `json:"bank_details,omitempty"`
	LeaveBalance LeaveBalance     `json:"leave_balance,omitempty"`

	// Set by the auth service when the employee registers together with a user.
	UserID *string `json:"-"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "first_name", Message: "first_name is required"})
	}
	if validator.IsEmpty(r.LastName) {
		errs = append(errs, validator.ValidationError{Field: "last_name", Message: "last_name is required"})
	}
	errs = append(errs, validatePersonal(r.Email, r.Phone, r.DateOfBirth, r.Gender)...)

	if !Position(r.Position).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "position", Message: "position is invalid"})
	}
	if validator.IsEmpty(r.Department) {
		errs = append(errs, validator.ValidationError{Field: "department", Message: "department is required"})
	}
	if !validator.IsValidUUID(r.BranchID) {
		errs = append(errs, validator.ValidationError{Field: "branch_id", Message: "branch_id must be a valid UUID"})
	}
	if r.ManagerID != nil && !validator.IsValidUUID(*r.ManagerID) {
		errs = append(errs, validator.ValidationError{Field: "manager_id", Message: "manager_id must be a valid UUID"})
	}
	if !isDate(r.JoiningDate) {
		errs = append(errs, validator.ValidationError{Field: "joining_date", Message: "joining_date must be in YYYY-MM-DD format"})
	}
	if r.EmploymentType == "" {
		r.EmploymentType = string(EmploymentTypeFullTime)
	}
	if !EmploymentType(r.EmploymentType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "employment_type", Message: "employment_type must be full-time, part-time, contract or intern"})
	}
	for field, v := range map[string]*string{"probation_end_date": r.ProbationEndDate, "contract_end_date": r.ContractEndDate} {
		if v != nil && !isDate(*v) {
			errs = append(errs, validator.ValidationError{Field: field, Message: field + " must be in YYYY-MM-DD format"})
		}
	}
	errs = append(errs, validateWorkRates(r.WorkingHoursPerDay, r.OvertimeRate)...)

	if !r.BaseSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "base_salary must be greater than 0"})
	}
	errs = append(errs, validateComponents("allowances", r.Allowances)...)
	errs = append(errs, validateComponents("deductions", r.Deductions)...)
	errs = append(errs, validatePercent("epf_employee", r.EPFEmployee)...)
	errs = append(errs, validatePercent("epf_employer", r.EPFEmployer)...)
	errs = append(errs, validatePercent("etf", r.ETF)...)
	for k, v := range r.LeaveBalance {
		if v < 0 {
			errs = append(errs, validator.ValidationError{Field: "leave_balance." + k, Message: "leave balance must not be negative"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest carries the editable fields; nil means unchanged.
type UpdateEmployeeRequest struct {
	ID string `json:"-"`

	FirstName        *string           `json:"first_name,omitempty"`
	LastName         *string           `json:"last_name,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	DateOfBirth      *string           `json:"date_of_birth,omitempty"`
	Gender           *string           `json:"gender,omitempty"`
	MaritalStatus    *string           `json:"marital_status,omitempty"`
	Nationality      *string           `json:"nationality,omitempty"`
	NationalID       *string           `json:"national_id,omitempty"`
	Address          *string           `json:"address,omitempty"`
	City             *string           `json:"city,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergency_contact,omitempty"`

	Position           *string  `json:"position,omitempty"`
	Department         *string  `json:"department,omitempty"`
	BranchID           *string  `json:"branch_id,omitempty"`
	ManagerID          *string  `json:"manager_id,omitempty"`
	EmploymentType     *string  `json:"employment_type,omitempty"`
	Status             *string  `json:"status,omitempty"`
	WorkingHoursPerDay *float64 `json:"working_hours_per_day,omitempty"`
	OvertimeRate       *float64 `json:"overtime_rate,omitempty"`

	BaseSalary   *decimal.Decimal `json:"base_salary,omitempty"`
	Allowances   *[]PayComponent  `json:"allowances,omitempty"`
	Deductions   *[]PayComponent  `json:"deductions,omitempty"`
	EPFEmployee  *decimal.Decimal `json:"epf_employee,omitempty"`
	EPFEmployer  *decimal.Decimal `json:"epf_employer,omitempty"`
	ETF          *decimal.Decimal `json:"etf,omitempty"`
	BankDetails  *BankDetails     `json:"bank_details,omitempty"`
	LeaveBalance LeaveBalance     `json:"leave_balance,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.FirstName != nil && validator.IsEmpty(*r.FirstName) {
		errs = append(errs, validator.ValidationError{Field: "first_name", Message: "first_name must not be empty"})
	}
	errs = append(errs, validatePersonal(r.Email, r.Phone, r.DateOfBirth, r.Gender)...)
	if r.Position != nil && !Position(*r.Position).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "position", Message: "position is invalid"})
	}
	if r.BranchID != nil && !validator.IsValidUUID(*r.BranchID) {
		errs = append(errs, validator.ValidationError{Field: "branch_id", Message: "branch_id must be a valid UUID"})
	}
	if r.EmploymentType != nil && !EmploymentType(*r.EmploymentType).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "employment_type", Message: "employment_type must be full-time, part-time, contract or intern"})
	}
	if r.Status != nil && !Status(*r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be active, inactive, terminated or on-leave"})
	}
	errs = append(errs, validateWorkRates(r.WorkingHoursPerDay, r.OvertimeRate)...)
	if r.BaseSalary != nil && !r.BaseSalary.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "base_salary", Message: "base_salary must be greater than 0"})
	}
	if r.Allowances != nil {
		errs = append(errs, validateComponents("allowances", *r.Allowances)...)
	}
	if r.Deductions != nil {
		errs = append(errs, validateComponents("deductions", *r.Deductions)...)
	}
	errs = append(errs, validatePercent("epf_employee", r.EPFEmployee)...)
	errs = append(errs, validatePercent("epf_employer", r.EPFEmployer)...)
	errs = append(errs, validatePercent("etf", r.ETF)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply copies the set fields of r onto e.
func (r UpdateEmployeeRequest) Apply(e *Employee) error {
	if r.FirstName != nil {
		e.FirstName = strings.TrimSpace(*r.FirstName)
	}
	if r.LastName != nil {
		e.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.Email != nil {
		e.Email = r.Email
	}
	if r.Phone != nil {
		e.Phone = r.Phone
	}
	if r.DateOfBirth != nil {
		dob, _ := time.Parse("2006-01-02", *r.DateOfBirth)
		e.DateOfBirth = &dob
	}
	if r.Gender != nil {
		g := Gender(*r.Gender)
		e.Gender = &g
	}
	if r.MaritalStatus != nil {
		e.MaritalStatus = r.MaritalStatus
	}
	if r.Nationality != nil {
		e.Nationality = r.Nationality
	}
	if r.NationalID != nil {
		e.NationalID = r.NationalID
	}
	if r.Address != nil {
		e.Address = r.Address
	}
	if r.City != nil {
		e.City = r.City
	}
	if r.EmergencyContact != nil {
		e.EmergencyContact = r.EmergencyContact
	}
	if r.Position != nil {
		e.Position = Position(*r.Position)
	}
	if r.Department != nil {
		e.Department = *r.Department
	}
	if r.BranchID != nil {
		e.BranchID = *r.BranchID
	}
	if r.ManagerID != nil {
		e.ManagerID = r.ManagerID
	}
	if r.EmploymentType != nil {
		e.EmploymentType = EmploymentType(*r.EmploymentType)
	}
	if r.Status != nil {
		e.Status = Status(*r.Status)
	}
	if r.WorkingHoursPerDay != nil {
		e.WorkingHoursPerDay = *r.WorkingHoursPerDay
	}
	if r.OvertimeRate != nil {
		e.OvertimeRate = *r.OvertimeRate
	}
	if r.BaseSalary != nil {
		e.BaseSalary = *r.BaseSalary
	}
	if r.Allowances != nil {
		e.Allowances = *r.Allowances
	}
	if r.Deductions != nil {
		e.Deductions = *r.Deductions
	}
	if r.EPFEmployee != nil {
		e.EPFEmployee = *r.EPFEmployee
	}
	if r.EPFEmployer != nil {
		e.EPFEmployer = *r.EPFEmployer
	}
	if r.ETF != nil {
		e.ETF = *r.ETF
	}
	if r.BankDetails != nil {
		e.BankDetails = r.BankDetails
	}
	if len(r.LeaveBalance) > 0 {
		merged, err := e.LeaveBalance.Merge(r.LeaveBalance)
		if err != nil {
			return err
		}
		e.LeaveBalance = merged
	}
	return nil
}

func validatePersonal(email, phone, dob, gender *string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if email != nil && !validator.IsValidEmail(*email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if phone != nil && !validator.IsValidPhoneNumber(*phone) {
		errs = append(errs, validator.ValidationError{Field: "phone", Message: "phone must be a valid phone number"})
	}
	if dob != nil && !isDate(*dob) {
		errs = append(errs, validator.ValidationError{Field: "date_of_birth", Message: "date_of_birth must be in YYYY-MM-DD format"})
	}
	if gender != nil && !Gender(*gender).IsValid() {
		errs = append(errs, validator.ValidationError{Field: "gender", Message: "gender must be male, female or other"})
	}
	return errs
}

func isDate(s string) bool {
	_, ok := validator.IsValidDate(s)
	return ok
}

func validateWorkRates(hours, rate *float64) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if hours != nil && (*hours <= 0 || *hours > 24) {
		errs = append(errs, validator.ValidationError{Field: "working_hours_per_day", Message: "working_hours_per_day must be between 0 and 24"})
	}
	if rate != nil && *rate < 1 {
		errs = append(errs, validator.ValidationError{Field: "overtime_rate", Message: "overtime_rate must be at least 1"})
	}
	return errs
}

func validateComponents(field string, items []PayComponent) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, c := range items {
		if validator.IsEmpty(c.Name) {
			errs = append(errs, validator.ValidationError{Field: field, Message: "each item requires a name"})
		}
		if c.Type != ComponentFixed && c.Type != ComponentPercentage {
			errs = append(errs, validator.ValidationError{Field: field, Message: "type must be fixed or percentage"})
		}
		if c.Amount.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: field, Message: "amount must not be negative"})
		}
	}
	return errs
}

func validatePercent(field string, v *decimal.Decimal) validator.ValidationErrors {
	if v == nil {
		return nil
	}
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		return validator.ValidationErrors{{Field: field, Message: field + " must be between 0 and 100"}}
	}
	return nil
}

type UploadAvatarRequest struct {
	EmployeeID string
	File       io.Reader
	Filename   string
}

type UploadDocumentRequest struct {
	EmployeeID string
	Name       string
	Type       string
	File       io.Reader
	Filename   string
}

type EmployeeResponse struct {
	ID                 string            `json:"id"`
	EmployeeCode       string            `json:"employee_code"`
	UserID             *string           `json:"user_id,omitempty"`
	FirstName          string            `json:"first_name"`
	LastName           string            `json:"last_name"`
	FullName           string            `json:"full_name"`
	Email              *string           `json:"email,omitempty"`
	Phone              *string           `json:"phone,omitempty"`
	DateOfBirth        *string           `json:"date_of_birth,omitempty"`
	Gender             *Gender           `json:"gender,omitempty"`
	MaritalStatus      *string           `json:"marital_status,omitempty"`
	Nationality        *string           `json:"nationality,omitempty"`
	NationalID         *string           `json:"national_id,omitempty"`
	Address            *string           `json:"address,omitempty"`
	City               *string           `json:"city,omitempty"`
	EmergencyContact   *EmergencyContact `json:"emergency_contact,omitempty"`
	AvatarURL          *string           `json:"avatar_url,omitempty"`
	Position           Position          `json:"position"`
	Department         string            `json:"department"`
	BranchID           string            `json:"branch_id"`
	BranchName         *string           `json:"branch_name,omitempty"`
	ManagerID          *string           `json:"manager_id,omitempty"`
	JoiningDate        string            `json:"joining_date"`
	EmploymentType     EmploymentType    `json:"employment_type"`
	Status             Status            `json:"status"`
	WorkingHoursPerDay float64           `json:"working_hours_per_day"`
	OvertimeRate       float64           `json:"overtime_rate"`
	BaseSalary         decimal.Decimal   `json:"base_salary"`
	Currency           string            `json:"currency"`
	Allowances         []PayComponent    `json:"allowances"`
	Deductions         []PayComponent    `json:"deductions"`
	EPFEmployee        decimal.Decimal   `json:"epf_employee"`
	EPFEmployer        decimal.Decimal   `json:"epf_employer"`
	ETF                decimal.Decimal   `json:"etf"`
	BankDetails        *BankDetails      `json:"bank_details,omitempty"`
	LeaveBalance       LeaveBalance      `json:"leave_balance"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

func ToResponse(e Employee) EmployeeResponse {
	resp := EmployeeResponse{
		ID:                 e.ID,
		EmployeeCode:       e.EmployeeCode,
		UserID:             e.UserID,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		FullName:           e.FullName(),
		Email:              e.Email,
		Phone:              e.Phone,
		Gender:             e.Gender,
		MaritalStatus:      e.MaritalStatus,
		Nationality:        e.Nationality,
		NationalID:         e.NationalID,
		Address:            e.Address,
		City:               e.City,
		EmergencyContact:   e.EmergencyContact,
		AvatarURL:          e.AvatarURL,
		Position:           e.Position,
		Department:         e.Department,
		BranchID:           e.BranchID,
		BranchName:         e.BranchName,
		ManagerID:          e.ManagerID,
		JoiningDate:        e.JoiningDate.Format("2006-01-02"),
		EmploymentType:     e.EmploymentType,
		Status:             e.Status,
		WorkingHoursPerDay: e.StandardHours(),
		OvertimeRate:       e.OvertimeMultiplier(),
		BaseSalary:         e.BaseSalary,
		Currency:           e.Currency,
		Allowances:         e.Allowances,
		Deductions:         e.Deductions,
		EPFEmployee:        e.EPFEmployee,
		EPFEmployer:        e.EPFEmployer,
		ETF:                e.ETF,
		BankDetails:        e.BankDetails,
		LeaveBalance:       e.LeaveBalance,
		CreatedAt:          e.CreatedAt,
		UpdatedAt:          e.UpdatedAt,
	}
	if e.DateOfBirth != nil {
		dob := e.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	if resp.Allowances == nil {
		resp.Allowances = []PayComponent{}
	}
	if resp.Deductions == nil {
		resp.Deductions = []PayComponent{}
	}
	return resp
}

type ListEmployeeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
	Showing    string             `json:"showing"`
	Employees  []EmployeeResponse `json:"employees"`
}

type HistoryEntryResponse struct {
	LeaveID    *string   `json:"leave_id,omitempty"`
	LeaveType  string    `json:"leave_type"`
	StartDate  string    `json:"start_date"`
	EndDate    string    `json:"end_date"`
	Days       float64   `json:"days"`
	Status     string    `json:"status"`
	ActorID    *string   `json:"actor_id,omitempty"`
	Reason     *string   `json:"reason,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

func ToHistoryResponse(h HistoryEntry) HistoryEntryResponse {
	return HistoryEntryResponse{
		LeaveID:    h.LeaveID,
		LeaveType:  h.LeaveType,
		StartDate:  h.StartDate.Format("2006-01-02"),
		EndDate:    h.EndDate.Format("2006-01-02"),
		Days:       h.Days,
		Status:     h.Status,
		ActorID:    h.ActorID,
		Reason:     h.Reason,
		RecordedAt: h.RecordedAt,
	}
}

type DocumentResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       string    `json:"type"`
	URL        string    `json:"url"`
	UploadedAt time.Time `json:"uploaded_at"`
}

func ToDocumentResponse(d Document) DocumentResponse {
	return DocumentResponse{ID: d.ID, Name: d.Name, Type: d.Type, URL: d.URL, UploadedAt: d.UploadedAt}
}
