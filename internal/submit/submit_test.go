package submit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/sims/internal/sdapi"
	"github.com/theirongolddev/sims/internal/validate"
	"github.com/theirongolddev/sims/internal/wire"
)

type fakeAPI struct {
	fetchResult *wire.Payload
	fetchErr    error
	createID    string
	createErr   error
	updateErr   error

	calls    []string
	created  *wire.Payload
	updateID string
}

func (f *fakeAPI) FetchBudget(_ context.Context, code string, year int) (*wire.Payload, error) {
	f.calls = append(f.calls, "fetch")
	return f.fetchResult, f.fetchErr
}

func (f *fakeAPI) CreateBudget(_ context.Context, p wire.Payload) (string, error) {
	f.calls = append(f.calls, "create")
	f.created = &p
	return f.createID, f.createErr
}

func (f *fakeAPI) UpdateBudget(_ context.Context, id string, p wire.Payload) error {
	f.calls = append(f.calls, "update")
	f.updateID = id
	return f.updateErr
}

type memKV map[string]string

func (m memKV) Get(key string) (string, bool, error) {
	v, ok := m[key]
	return v, ok, nil
}

func (m memKV) Set(key, value string) error {
	m[key] = value
	return nil
}

func (m memKV) Delete(key string) error {
	delete(m, key)
	return nil
}

func newService(api *fakeAPI, kv memKV) *Service {
	s := New(api, kv, nil)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestTargetYear(t *testing.T) {
	if got := TargetYear(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); got != 2027 {
		t.Errorf("TargetYear = %d, want 2027", got)
	}
}

func TestCreate_ExistingBudgetBlocks(t *testing.T) {
	api := &fakeAPI{fetchResult: &wire.Payload{ID: "b1", Year: 2027}}
	_, err := newService(api, memKV{}).Submit(context.Background(), Request{SchoolCode: "ABC123"})

	var exists *ExistsError
	if !errors.As(err, &exists) || exists.Year != 2027 {
		t.Fatalf("err = %v, want ExistsError for 2027", err)
	}
	if strings.Join(api.calls, ",") != "fetch" {
		t.Errorf("calls = %v, create must not run", api.calls)
	}
	n := NoticeFor(Result{}, err)
	if !n.Long || !strings.Contains(n.Description, "2027") {
		t.Errorf("notice = %+v", n)
	}
}

func TestCreate_OnlyNotFoundProceeds(t *testing.T) {
	tests := []struct {
		name       string
		fetchErr   error
		wantCreate bool
		wantErr    error
	}{
		{"404", sdapi.ErrNotFound, true, nil},
		{"server error", &sdapi.StatusError{Code: 500}, false, ErrExistenceCheck},
		{"unauthorized", sdapi.ErrUnauthorized, false, ErrExistenceCheck},
		{"network", errors.New("dial tcp: refused"), false, ErrExistenceCheck},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{fetchErr: tt.fetchErr, createID: "new"}
			kv := memKV{}
			res, err := newService(api, kv).Submit(context.Background(), Request{SchoolCode: "ABC123"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			created := api.created != nil
			if created != tt.wantCreate {
				t.Fatalf("create called = %v, want %v (calls %v)", created, tt.wantCreate, api.calls)
			}
			if tt.wantCreate {
				if api.calls[0] != "fetch" {
					t.Errorf("existence check must run first: %v", api.calls)
				}
				if api.created.Year != 2027 || api.created.SchoolCode != "ABC123" {
					t.Errorf("created payload = %s/%d", api.created.SchoolCode, api.created.Year)
				}
				if !res.Created || kv[BudgetKey] != "new" {
					t.Errorf("result = %+v, stored id = %q", res, kv[BudgetKey])
				}
			}
		})
	}
}

func TestSubmit_InvalidPayloadMakesNoRequest(t *testing.T) {
	bad := wire.Payload{Year: 2027, Revenues: []wire.RevenueRecord{{Type: "OTHER", Group: "OTHER", Amount: -5}}}
	tests := []struct {
		name string
		req  Request
		kv   memKV
	}{
		{"create", Request{SchoolCode: "ABC123", Payload: bad}, memKV{}},
		{"edit", Request{SchoolCode: "ABC123", Edit: true, Payload: bad}, memKV{BudgetKey: "b-1"}},
		{"missing code", Request{Payload: wire.Payload{Year: 2027}}, memKV{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{fetchErr: sdapi.ErrNotFound}
			_, err := newService(api, tt.kv).Submit(context.Background(), tt.req)
			var verrs validate.Errors
			if !errors.As(err, &verrs) {
				t.Fatalf("err = %v, want validate.Errors", err)
			}
			if errors.Is(err, ErrSaveFailed) || errors.Is(err, ErrExistenceCheck) {
				t.Errorf("validation error wrapped as a server failure: %v", err)
			}
			if len(api.calls) != 0 {
				t.Errorf("calls = %v, want none", api.calls)
			}
			if n := NoticeFor(Result{}, err); n.Title != "Please fix the highlighted fields" {
				t.Errorf("notice = %+v", n)
			}
		})
	}
}

func TestCreate_SaveFailure(t *testing.T) {
	api := &fakeAPI{fetchErr: sdapi.ErrNotFound, createErr: &sdapi.StatusError{Code: 500}}
	_, err := newService(api, memKV{}).Submit(context.Background(), Request{SchoolCode: "ABC123"})
	if !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("err = %v, want ErrSaveFailed", err)
	}
	if n := NoticeFor(Result{}, err); n.Title != "Failed to save budget" {
		t.Errorf("notice = %+v", n)
	}
}

func TestEdit_UpdatesStoredBudget(t *testing.T) {
	api := &fakeAPI{}
	kv := memKV{BudgetKey: "b-42"}
	res, err := newService(api, kv).Submit(context.Background(),
		Request{SchoolCode: "ABC123", Edit: true, Payload: wire.Payload{Year: 2027}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if api.updateID != "b-42" || res.BudgetID != "b-42" || res.Created {
		t.Errorf("update id = %q, result = %+v", api.updateID, res)
	}
	if strings.Join(api.calls, ",") != "update" {
		t.Errorf("calls = %v, edit mode must skip the existence check", api.calls)
	}
}

func TestEdit_NoBudgetID(t *testing.T) {
	api := &fakeAPI{}
	_, err := newService(api, memKV{}).Submit(context.Background(), Request{SchoolCode: "ABC123", Edit: true})
	if !errors.Is(err, ErrNoBudgetID) {
		t.Fatalf("err = %v, want ErrNoBudgetID", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("calls = %v", api.calls)
	}
}

func TestLoadForEdit(t *testing.T) {
	kv := memKV{BudgetKey: "stale"}
	api := &fakeAPI{fetchErr: sdapi.ErrNotFound}
	s := newService(api, kv)

	if _, err := s.LoadForEdit(context.Background(), "ABC123", 2027); !errors.Is(err, sdapi.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, ok := kv[BudgetKey]; ok {
		t.Error("stale budget id survived a failed load")
	}

	api.fetchErr = nil
	api.fetchResult = &wire.Payload{ID: "b-7", SchoolCode: "ABC123", Year: 2027}
	p, err := s.LoadForEdit(context.Background(), "ABC123", 2027)
	if err != nil || p.ID != "b-7" {
		t.Fatalf("LoadForEdit = %+v, %v", p, err)
	}
	if kv[BudgetKey] != "b-7" {
		t.Errorf("stored id = %q", kv[BudgetKey])
	}
}

func TestNoticeFor_Success(t *testing.T) {
	if n := NoticeFor(Result{Created: true, Year: 2027}, nil); n.Title != "Budget submitted" {
		t.Errorf("create notice = %+v", n)
	}
	if n := NoticeFor(Result{}, nil); n.Title != "Budget updated" {
		t.Errorf("update notice = %+v", n)
	}
}
