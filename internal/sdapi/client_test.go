package sdapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/theirongolddev/sims/internal/model"
	"github.com/theirongolddev/sims/internal/validate"
	"github.com/theirongolddev/sims/internal/wire"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/api", "tok-123")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClient_RequiresURL(t *testing.T) {
	if _, err := NewClient("", ""); !errors.Is(err, ErrNoBaseURL) {
		t.Errorf("empty URL err = %v", err)
	}
	if _, err := NewClient("ftp://example.org", ""); err == nil {
		t.Error("ftp URL should be rejected")
	}
}

func TestFetchBudget_PathAndAuth(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/budget/code/ABC123/2027" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = io.WriteString(w, `{"_id":"b1","code":"ABC123","year":2027,"revenues":[{"type":"OPEX","group":"OPEX","amount":5}]}`)
	})

	p, err := c.FetchBudget(context.Background(), "ABC123", 2027)
	if err != nil {
		t.Fatalf("FetchBudget: %v", err)
	}
	if p.ID != "b1" || len(p.Revenues) != 1 || p.Revenues[0].Amount != 5 {
		t.Errorf("payload = %+v", p)
	}
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrUnauthorized},
		{http.StatusTooManyRequests, ErrRateLimited},
	}
	for _, tt := range tests {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tt.status)
		})
		_, err := c.FetchBudget(context.Background(), "ABC123", 2027)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
	}

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	_, err := c.FetchBudget(context.Background(), "ABC123", 2027)
	var se *StatusError
	if !errors.As(err, &se) || se.Code != 500 {
		t.Fatalf("err = %v, want StatusError 500", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatal("500 must not be reported as not found")
	}
}

func TestCreateBudget(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/budget" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var p wire.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("decode: %v", err)
		}
		if p.SchoolCode != "ABC123" {
			t.Errorf("code = %q", p.SchoolCode)
		}
		_, _ = io.WriteString(w, `{"data":{"_id":"new-id"}}`)
	})

	id, err := c.CreateBudget(context.Background(), wire.Payload{SchoolCode: "ABC123", Year: 2027})
	if err != nil {
		t.Fatalf("CreateBudget: %v", err)
	}
	if id != "new-id" {
		t.Errorf("id = %q, want new-id", id)
	}
}

func TestCreateBudget_InvalidPayloadSkipsNetwork(t *testing.T) {
	c := newTestClient(t, func(http.ResponseWriter, *http.Request) {
		t.Error("request should not be sent")
	})
	_, err := c.CreateBudget(context.Background(), wire.Payload{Year: 2027})
	var verrs validate.Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("err = %v, want validation errors", err)
	}
}

func TestFetchSchool_IDOrCode(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, `{"_id":"64b7f0c2a1b2c3d4e5f60718","code":"ABC123","name":"Juba Day"}`)
	})

	if _, err := c.FetchSchool(context.Background(), "64b7f0c2a1b2c3d4e5f60718"); err != nil {
		t.Fatal(err)
	}
	s, err := c.FetchSchool(context.Background(), "ABC123")
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "Juba Day" {
		t.Errorf("name = %q", s.Name)
	}
	want := []string{"/api/school-data/school/64b7f0c2a1b2c3d4e5f60718", "/api/school-data/school/code/ABC123"}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("paths[%d] = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestCompleteEnrollment_RequiresComments(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		var e model.Enrollment
		_ = json.NewDecoder(r.Body).Decode(&e)
		if !e.Complete {
			t.Error("Complete flag not set")
		}
	})

	err := c.CompleteEnrollment(context.Background(), "64b7f0c2a1b2c3d4e5f60718", model.Enrollment{Year: 2026})
	if err == nil || called {
		t.Fatalf("missing comments: err=%v called=%v", err, called)
	}

	err = c.CompleteEnrollment(context.Background(), "64b7f0c2a1b2c3d4e5f60718",
		model.Enrollment{Year: 2026, Comments: "All classes counted"})
	if err != nil || !called {
		t.Fatalf("valid enrollment: err=%v called=%v", err, called)
	}
}

func TestRosterEndpoints(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var req codeRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Code != "ABC123" {
			t.Errorf("%s: code = %q", r.URL.Path, req.Code)
		}
		switch r.URL.Path {
		case "/api/data-set/2023_data/get/learnersv2":
			_, _ = io.WriteString(w, `[{"name":"A","gender":"F"},{"name":"B","gender":"M","isWithDisability":true}]`)
		case "/api/user/getTeachersByCode":
			_, _ = io.WriteString(w, `[{"name":"T","gender":"F"}]`)
		case "/api/data-set/overallMaleFemaleStat":
			_, _ = io.WriteString(w, `{"male":1,"female":2,"total":3,"withDisability":1}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	ctx := context.Background()
	learners, err := c.FetchLearners(ctx, "ABC123")
	if err != nil || len(learners) != 2 || !learners[1].Disability {
		t.Fatalf("learners = %+v, err = %v", learners, err)
	}
	teachers, err := c.FetchTeachers(ctx, "ABC123")
	if err != nil || len(teachers) != 1 {
		t.Fatalf("teachers = %+v, err = %v", teachers, err)
	}
	stats, err := c.FetchGenderStats(ctx, "ABC123")
	if err != nil || stats.Total != 3 {
		t.Fatalf("stats = %+v, err = %v", stats, err)
	}
}

func TestPatchSchool_Guards(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = io.WriteString(w, `{"_id":"64b7f0c2a1b2c3d4e5f60718","facilities":{"latrines":4}}`)
	})

	ctx := context.Background()
	if _, err := c.PatchSchool(ctx, "ABC123", model.SchoolPatch{Programs: []string{"ALP"}}); err == nil {
		t.Error("school code accepted as document id")
	}
	if _, err := c.PatchSchool(ctx, "64b7f0c2a1b2c3d4e5f60718", model.SchoolPatch{}); err == nil {
		t.Error("empty patch accepted")
	}
	s, err := c.PatchSchool(ctx, "64b7f0c2a1b2c3d4e5f60718", model.SchoolPatch{Facilities: map[string]int{"latrines": 4}})
	if err != nil {
		t.Fatal(err)
	}
	if s.Facilities["latrines"] != 4 {
		t.Errorf("facilities = %v", s.Facilities)
	}
}
