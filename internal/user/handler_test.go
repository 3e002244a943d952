package user

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type testEnvelope struct {
	Data json.RawMessage `json:"data"`
	Meta *struct {
		CurrentPage  int `json:"current_page"`
		LastPage     int `json:"last_page"`
		FirstItem    int `json:"first_item"`
		LastItem     int `json:"last_item"`
		ItemsPerPage int `json:"items_per_page"`
		Total        int `json:"total"`
	} `json:"meta"`
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

func newTestRouter(t *testing.T) (chi.Router, *Service) {
	t.Helper()

	service := newTestService(t)

	log := logrus.New()
	log.SetOutput(io.Discard)

	r := chi.NewRouter()
	r.Mount("/users", NewHandler(service, log).Routes())
	return r, service
}

func doRequest(t *testing.T, r chi.Router, method, path, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env testEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, env
}

func TestCreateAndGetUser(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodPost, "/users",
		`{"username":"alice","email":"alice@example.com","password":"supersecret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if env.StatusCode != http.StatusCreated {
		t.Fatalf("expected status_code 201 in envelope, got %d", env.StatusCode)
	}

	var created UserResponse
	if err := json.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode created user: %v", err)
	}
	if created.ID == 0 || created.Username != "alice" {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if strings.Contains(string(env.Data), "password") {
		t.Fatal("password leaked into the response body")
	}

	rec, env = doRequest(t, r, http.MethodGet, "/users/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var fetched UserResponse
	if err := json.Unmarshal(env.Data, &fetched); err != nil {
		t.Fatalf("decode fetched user: %v", err)
	}
	if fetched.Email != "alice@example.com" {
		t.Fatalf("unexpected fetched user: %+v", fetched)
	}
}

func TestCreateValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"username":"alice","password":"supersecret"}`},
		{"malformed email", `{"username":"alice","email":"not-an-email","password":"supersecret"}`},
		{"short password", `{"username":"alice","email":"alice@example.com","password":"short"}`},
		{"missing username", `{"email":"alice@example.com","password":"supersecret"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := doRequest(t, r, http.MethodPost, "/users", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestCreateDuplicateReturnsConflict(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"username":"alice","email":"alice@example.com","password":"supersecret"}`
	rec, _ := doRequest(t, r, http.MethodPost, "/users", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	rec, env := doRequest(t, r, http.MethodPost, "/users", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
	}
	if env.Detail == "" {
		t.Fatal("expected an error detail")
	}
}

func TestGetUserNotFound(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodGet, "/users/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if env.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status_code 404 in envelope, got %d", env.StatusCode)
	}
}

func TestGetUserInvalidID(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doRequest(t, r, http.MethodGet, "/users/abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestListMeta(t *testing.T) {
	r, service := newTestRouter(t)
	seedUsers(t, service, 5)

	rec, env := doRequest(t, r, http.MethodGet, "/users?page=1&items_per_page=2&sort_by=id&sort_type=asc", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if env.Meta == nil {
		t.Fatal("expected pagination meta")
	}
	if env.Meta.CurrentPage != 1 || env.Meta.LastPage != 3 || env.Meta.Total != 5 {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}
	if env.Meta.FirstItem != 1 || env.Meta.LastItem != 2 || env.Meta.ItemsPerPage != 2 {
		t.Fatalf("unexpected meta: %+v", env.Meta)
	}

	var items []UserResponse
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestListEmptyIsSuccess(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, env := doRequest(t, r, http.MethodGet, "/users", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("an empty listing is success, got %d", rec.Code)
	}

	var items []UserResponse
	if err := json.Unmarshal(env.Data, &items); err != nil {
		t.Fatalf("decode items: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items, got %d", len(items))
	}
	if env.Meta == nil || env.Meta.LastPage != 1 {
		t.Fatalf("expected last_page 1 on empty listing, got %+v", env.Meta)
	}
}

func TestUpdateRejectsImmutableFields(t *testing.T) {
	r, service := newTestRouter(t)
	seedUsers(t, service, 1)

	for _, body := range []string{
		`{"username":"renamed","email":"new@example.com"}`,
		`{"password":"newsecret123"}`,
	} {
		rec, _ := doRequest(t, r, http.MethodPut, "/users/1", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for %s, got %d", body, rec.Code)
		}
	}

	// the rejected payloads must not have changed anything
	u, err := service.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("get after rejected updates: %v", err)
	}
	if u.Email != "user01@example.com" {
		t.Fatalf("email changed by a rejected update: %q", u.Email)
	}
}

func TestUpdateNotFoundIsNotValidationError(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doRequest(t, r, http.MethodPut, "/users/9999", `{"username":"ghost"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("update on a missing user must be 404, got %d", rec.Code)
	}
}

func TestDeleteReturnsDeletedUser(t *testing.T) {
	r, service := newTestRouter(t)
	seedUsers(t, service, 1)

	rec, env := doRequest(t, r, http.MethodDelete, "/users/1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var deleted UserResponse
	if err := json.Unmarshal(env.Data, &deleted); err != nil {
		t.Fatalf("decode deleted user: %v", err)
	}
	if deleted.Username != "user01" {
		t.Fatalf("unexpected deleted user: %+v", deleted)
	}

	rec, _ = doRequest(t, r, http.MethodGet, "/users/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDeleteNotFoundReturns404(t *testing.T) {
	r, _ := newTestRouter(t)

	rec, _ := doRequest(t, r, http.MethodDelete, "/users/9999", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
