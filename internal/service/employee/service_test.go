package employee

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepay/timepay-backend/internal/domain/employee"
	"github.com/timepay/timepay-backend/internal/domain/user"
	"github.com/timepay/timepay-backend/internal/pkg/jwt"
)

type fakeTx struct{}

func (fakeTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeEmployees struct {
	employee.EmployeeRepository
	byID   map[string]employee.Employee
	docs   []employee.Document
	seq    int64
	listed employee.EmployeeFilter
}

func newFakeEmployees() *fakeEmployees {
	return &fakeEmployees{byID: map[string]employee.Employee{}}
}

func (f *fakeEmployees) NextCode(context.Context) (string, error) {
	f.seq++
	return employee.FormatCode(f.seq), nil
}

func (f *fakeEmployees) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	e.ID = "id-" + e.EmployeeCode
	f.byID[e.ID] = e
	return e, nil
}

func (f *fakeEmployees) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployees) Update(_ context.Context, e employee.Employee) error {
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEmployees) SetAvatar(_ context.Context, id, url string) error {
	e := f.byID[id]
	e.AvatarURL = &url
	f.byID[id] = e
	return nil
}

func (f *fakeEmployees) Delete(_ context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeEmployees) List(_ context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	f.listed = filter
	var out []employee.Employee
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, 42, nil
}

func (f *fakeEmployees) AddDocument(_ context.Context, d employee.Document) (employee.Document, error) {
	d.ID = "doc-1"
	f.docs = append(f.docs, d)
	return d, nil
}

type fakeFiles struct{}

func (fakeFiles) UploadAvatar(_ context.Context, employeeID string, _ io.Reader, _ string) (string, error) {
	return "http://files/avatars/" + employeeID + "/a.png", nil
}

func (fakeFiles) UploadDocument(_ context.Context, employeeID string, _ io.Reader, filename, _ string) (string, error) {
	return "http://files/documents/" + employeeID + "/" + filename, nil
}

func (fakeFiles) UploadLeaveAttachment(context.Context, string, io.Reader, string) (string, error) {
	return "", nil
}

func ctxAs(role user.Role, employeeID string) context.Context {
	return jwt.WithClaims(context.Background(), jwt.Claims{UserID: "u-" + string(role), EmployeeID: employeeID, Role: role})
}

func newService() (*EmployeeServiceImpl, *fakeEmployees) {
	repo := newFakeEmployees()
	return NewEmployeeService(fakeTx{}, repo, fakeFiles{}).(*EmployeeServiceImpl), repo
}

func validCreate() employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		FirstName:   "Nimal",
		LastName:    "Perera",
		Position:    string(employee.PositionSalesman),
		Department:  "Sales",
		BranchID:    "0190a6c4-0000-7000-8000-000000000001",
		JoiningDate: "2025-01-06",
		BaseSalary:  decimal.NewFromInt(85000),
	}
}

func TestEmployeeService_Create_AssignsCodeAndDefaults(t *testing.T) {
	svc, _ := newService()
	ctx := ctxAs(user.RoleHRManager, "")

	first, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)
	second, err := svc.Create(ctx, validCreate())
	require.NoError(t, err)

	assert.Equal(t, "EMP00001", first.EmployeeCode)
	assert.Equal(t, "EMP00002", second.EmployeeCode)
	assert.Equal(t, employee.StatusActive, first.Status)
	assert.Equal(t, "LKR", first.Currency)
	assert.Equal(t, float64(21), first.LeaveBalance["annual"])
	assert.True(t, first.EPFEmployee.Equal(decimal.NewFromInt(8)))
}

func TestEmployeeService_Create_TooYoung(t *testing.T) {
	svc, _ := newService()
	req := validCreate()
	dob := "2012-05-01"
	req.DateOfBirth = &dob

	_, err := svc.Create(ctxAs(user.RoleAdmin, ""), req)
	assert.ErrorIs(t, err, employee.ErrMinimumAge)
}

func TestEmployeeService_Get_OwnRecordOnly(t *testing.T) {
	svc, repo := newService()
	repo.byID["e1"] = employee.Employee{ID: "e1", FirstName: "A"}
	repo.byID["e2"] = employee.Employee{ID: "e2", FirstName: "B"}

	_, err := svc.Get(ctxAs(user.RoleEmployee, "e1"), "e1")
	assert.NoError(t, err)

	_, err = svc.Get(ctxAs(user.RoleEmployee, "e1"), "e2")
	assert.ErrorIs(t, err, employee.ErrUnauthorized)

	_, err = svc.Get(ctxAs(user.RoleHRManager, ""), "e2")
	assert.NoError(t, err)
}

func TestEmployeeService_GetMe(t *testing.T) {
	svc, repo := newService()
	repo.byID["e1"] = employee.Employee{ID: "e1", FirstName: "A", LastName: "B"}

	resp, err := svc.GetMe(ctxAs(user.RoleEmployee, "e1"))
	require.NoError(t, err)
	assert.Equal(t, "A B", resp.FullName)

	_, err = svc.GetMe(ctxAs(user.RoleAdmin, ""))
	assert.ErrorIs(t, err, employee.ErrNoEmployeeProfile)
}

func TestEmployeeService_List_Showing(t *testing.T) {
	svc, repo := newService()
	repo.byID["e1"] = employee.Employee{ID: "e1"}

	resp, err := svc.List(context.Background(), employee.EmployeeFilter{Page: 3, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, "41-42 of 42", resp.Showing)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, "desc", repo.listed.SortOrder)
}

func TestEmployeeService_Update_MergesLeaveBalance(t *testing.T) {
	svc, repo := newService()
	repo.byID["e1"] = employee.Employee{ID: "e1", FirstName: "A", LeaveBalance: employee.DefaultLeaveBalance()}

	dept := "Logistics"
	resp, err := svc.Update(ctxAs(user.RoleHRManager, ""), employee.UpdateEmployeeRequest{
		ID:           "e1",
		Department:   &dept,
		LeaveBalance: employee.LeaveBalance{"annual": 25},
	})
	require.NoError(t, err)
	assert.Equal(t, "Logistics", resp.Department)
	assert.Equal(t, float64(25), resp.LeaveBalance["annual"])
	assert.Equal(t, float64(10), resp.LeaveBalance["sick"])
}

func TestEmployeeService_Delete_NotSelf(t *testing.T) {
	svc, repo := newService()
	repo.byID["e1"] = employee.Employee{ID: "e1"}

	assert.ErrorIs(t, svc.Delete(ctxAs(user.RoleAdmin, "e1"), "e1"), employee.ErrCannotDeleteSelf)
	require.NoError(t, svc.Delete(ctxAs(user.RoleAdmin, "e9"), "e1"))
	assert.NotContains(t, repo.byID, "e1")
}

func TestEmployeeService_Uploads(t *testing.T) {
	svc, repo := newService()
	repo.byID["e1"] = employee.Employee{ID: "e1"}
	ctx := ctxAs(user.RoleEmployee, "e1")

	resp, err := svc.UploadAvatar(ctx, employee.UploadAvatarRequest{EmployeeID: "e1", File: bytes.NewBufferString("img"), Filename: "a.png"})
	require.NoError(t, err)
	require.NotNil(t, resp.AvatarURL)
	assert.Equal(t, "http://files/avatars/e1/a.png", *resp.AvatarURL)

	doc, err := svc.UploadDocument(ctx, employee.UploadDocumentRequest{EmployeeID: "e1", Type: "nic", File: bytes.NewBufferString("pdf"), Filename: "nic.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "nic.pdf", doc.Name)
	assert.Len(t, repo.docs, 1)

	_, err = svc.UploadAvatar(ctxAs(user.RoleEmployee, "e2"), employee.UploadAvatarRequest{EmployeeID: "e1", File: bytes.NewBufferString("img"), Filename: "a.png"})
	assert.ErrorIs(t, err, employee.ErrUnauthorized)
}
