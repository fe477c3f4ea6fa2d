package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/campushq-io/campushq/internal/api/middleware"
	"github.com/campushq-io/campushq/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mockAdminStore implements AdminStore for testing.
type mockAdminStore struct {
	tenantsBySlug map[string]*models.Tenant
	usersByID     map[uuid.UUID]*models.User
	acks          []string
	createErr     error
}

func newMockAdminStore() *mockAdminStore {
	return &mockAdminStore{
		tenantsBySlug: make(map[string]*models.Tenant),
		usersByID:     make(map[uuid.UUID]*models.User),
	}
}

func (m *mockAdminStore) CreateTenant(_ context.Context, t *models.Tenant) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.tenantsBySlug[t.Slug] = t
	return nil
}

func (m *mockAdminStore) GetAllTenants(_ context.Context) ([]*models.Tenant, error) {
	var all []*models.Tenant
	for _, t := range m.tenantsBySlug {
		all = append(all, t)
	}
	return all, nil
}

func (m *mockAdminStore) GetTenantBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	if t, ok := m.tenantsBySlug[slug]; ok {
		return t, nil
	}
	return nil, errors.New("tenant not found")
}

func (m *mockAdminStore) UpdateTenant(_ context.Context, t *models.Tenant) error {
	m.tenantsBySlug[t.Slug] = t
	return nil
}

func (m *mockAdminStore) CreateUser(_ context.Context, u *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.usersByID[u.ID] = u
	return nil
}

func (m *mockAdminStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, errors.New("user not found")
}

func (m *mockAdminStore) RecordLegalAcknowledgment(_ context.Context, userID, tenantID uuid.UUID, actionKind string) error {
	m.acks = append(m.acks, userID.String()+"/"+tenantID.String()+"/"+actionKind)
	return nil
}

func operatorActorFixture() *models.Actor {
	a := models.Actor{
		UserID: mustUUID("99999999-9999-9999-9999-999999999999"),
		Email:  "ops@campushq.test",
		Roles:  []models.Role{models.RoleOperator},
	}
	return &a
}

func setupAdminRouter(store *mockAdminStore, actor *models.Actor) *gin.Engine {
	r, api := newTestRouter(actor)
	ops := api.Group("")
	ops.Use(middleware.RequireOperator())
	NewAdminHandler(store, zerolog.Nop()).RegisterRoutes(ops)
	return r
}

func TestAdminCreateTenant(t *testing.T) {
	operator := operatorActorFixture()

	t.Run("success", func(t *testing.T) {
		store := newMockAdminStore()
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"name":"Westfield High","slug":"westfield-high"}`
		req, _ := http.NewRequest("POST", "/api/v1/admin/tenants", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		created := store.tenantsBySlug["westfield-high"]
		if created == nil {
			t.Fatal("tenant was not stored")
		}
		if created.AcademicType != models.AcademicTypeUnconfigured {
			t.Fatalf("new tenant must start unconfigured, got %q", created.AcademicType)
		}
	})

	t.Run("non-operator denied", func(t *testing.T) {
		admin := adminActor("22222222-2222-2222-2222-222222222222")
		r := setupAdminRouter(newMockAdminStore(), admin)
		w := httptest.NewRecorder()
		body := `{"name":"Westfield High","slug":"westfield-high"}`
		req, _ := http.NewRequest("POST", "/api/v1/admin/tenants", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Fatalf("expected status 403, got %d", w.Code)
		}
	})
}

func TestAdminUpdateTenantAcademicType(t *testing.T) {
	operator := operatorActorFixture()

	store := newMockAdminStore()
	store.tenantsBySlug["westfield-high"] = models.NewTenant("Westfield High", "westfield-high")

	t.Run("assign type", func(t *testing.T) {
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"academic_type":"k12"}`
		req, _ := http.NewRequest("PUT", "/api/v1/admin/tenants/westfield-high", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		if got := store.tenantsBySlug["westfield-high"].AcademicType; got != models.AcademicTypeK12 {
			t.Fatalf("academic type = %q, want k12", got)
		}
	})

	t.Run("invalid type", func(t *testing.T) {
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"academic_type":"driving-school"}`
		req, _ := http.NewRequest("PUT", "/api/v1/admin/tenants/westfield-high", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})

	t.Run("unknown slug", func(t *testing.T) {
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"academic_type":"k12"}`
		req, _ := http.NewRequest("PUT", "/api/v1/admin/tenants/nope", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})
}

func TestAdminCreateUser(t *testing.T) {
	operator := operatorActorFixture()
	tenantID := uuid.New()

	t.Run("success returns key once", func(t *testing.T) {
		store := newMockAdminStore()
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"tenant_id":"` + tenantID.String() + `","email":"admin@school.test","name":"School Admin","roles":["admin"]}`
		req, _ := http.NewRequest("POST", "/api/v1/admin/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var resp struct {
			User   models.User `json:"user"`
			APIKey string      `json:"api_key"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if !strings.HasPrefix(resp.APIKey, "chq_") {
			t.Fatalf("api key has unexpected shape: %q", resp.APIKey)
		}
		if strings.Contains(w.Body.String(), "api_key_hash") {
			t.Fatal("key hash must not be serialized")
		}

		stored := store.usersByID[resp.User.ID]
		if stored == nil {
			t.Fatal("user was not stored")
		}
		if stored.APIKeyHash == "" || stored.APIKeyHash == resp.APIKey {
			t.Fatal("stored credential must be a hash of the issued key")
		}
	})

	t.Run("invalid role", func(t *testing.T) {
		r := setupAdminRouter(newMockAdminStore(), operator)
		w := httptest.NewRecorder()
		body := `{"tenant_id":"` + tenantID.String() + `","email":"x@school.test","name":"X","roles":["superuser"]}`
		req, _ := http.NewRequest("POST", "/api/v1/admin/users", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", w.Code)
		}
	})
}

func TestAdminRecordLegalAcknowledgment(t *testing.T) {
	operator := operatorActorFixture()
	tenantID := uuid.New()

	store := newMockAdminStore()
	user := models.NewUser(uuid.Nil, "ops@campushq.test", "Ops", []models.Role{models.RoleOperator}, "hash")
	store.usersByID[user.ID] = user

	t.Run("success", func(t *testing.T) {
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"user_id":"` + user.ID.String() + `","tenant_id":"` + tenantID.String() + `","action_kind":"tenant_restore"}`
		req, _ := http.NewRequest("POST", "/api/v1/admin/legal-acknowledgments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
		}
		if len(store.acks) != 1 || !strings.HasSuffix(store.acks[0], "/tenant_restore") {
			t.Fatalf("acknowledgment not recorded: %v", store.acks)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		r := setupAdminRouter(store, operator)
		w := httptest.NewRecorder()
		body := `{"user_id":"` + uuid.NewString() + `","tenant_id":"` + tenantID.String() + `","action_kind":"tenant_restore"}`
		req, _ := http.NewRequest("POST", "/api/v1/admin/legal-acknowledgments", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected status 404, got %d", w.Code)
		}
	})
}
