package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"

	"github.com/angelmondragon/limited-access-backend/internal/waitlist"
	"github.com/angelmondragon/limited-access-backend/pkg/db"
	"github.com/angelmondragon/limited-access-backend/pkg/db/models"
	"github.com/angelmondragon/limited-access-backend/pkg/enums"
	"github.com/angelmondragon/limited-access-backend/pkg/logger"
	"github.com/angelmondragon/limited-access-backend/pkg/pagination"
	"github.com/angelmondragon/limited-access-backend/pkg/types"
)

type entryEnvelope struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    waitlist.Entry `json:"data"`
}

type listEnvelope struct {
	Success    bool             `json:"success"`
	Data       []waitlist.Entry `json:"data"`
	Pagination pagination.Meta  `json:"pagination"`
}

func newWaitlistRouter(t *testing.T) http.Handler {
	t.Helper()
	conn, err := db.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.WaitlistEntry{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	svc, err := waitlist.NewService(waitlist.ServiceParams{Repo: waitlist.NewRepository(conn), Logger: logger.Nop()})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Get("/api/waitlist", WaitlistList(svc, nil))
	r.Get("/api/waitlist/stats/summary", WaitlistStats(svc, nil))
	r.Get("/api/waitlist/{id}", WaitlistGet(svc, nil))
	r.Post("/api/waitlist", WaitlistCreate(svc, nil))
	r.Put("/api/waitlist/{id}", WaitlistUpdateStatus(svc, nil))
	r.Delete("/api/waitlist/{id}", WaitlistDelete(svc, nil))
	return r
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createEntry(t *testing.T, h http.Handler, email, productID string) waitlist.Entry {
	t.Helper()
	rec := do(h, http.MethodPost, "/api/waitlist", fmt.Sprintf(`{"email":%q,"productId":%q,"name":"Ada Lovelace"}`, email, productID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var env entryEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Successfully added to waitlist", env.Message)
	return env.Data
}

func TestWaitlistCreateAndGet(t *testing.T) {
	h := newWaitlistRouter(t)
	entry := createEntry(t, h, " Fan@Example.com ", "drop-01")
	assert.Equal(t, "fan@example.com", entry.Email)
	assert.Equal(t, "Pending", string(entry.Status))

	rec := do(h, http.MethodGet, "/api/waitlist/"+entry.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env entryEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, entry.ID, env.Data.ID)
}

func TestWaitlistCreateWithShopifyCustomerID(t *testing.T) {
	h := newWaitlistRouter(t)

	rec := do(h, http.MethodPost, "/api/waitlist", `{"email":"a@x.com","productId":"p1","name":"Ada","shopifyCustomerId":"7001"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created entryEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.NotNil(t, created.Data.ShopifyCustomerID)
	assert.Equal(t, "7001", *created.Data.ShopifyCustomerID)

	rec = do(h, http.MethodGet, "/api/waitlist/"+created.Data.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var fetched entryEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&fetched))
	require.NotNil(t, fetched.Data.ShopifyCustomerID)
	assert.Equal(t, "7001", *fetched.Data.ShopifyCustomerID)

	body := fmt.Sprintf(`{"email":"a@x.com","productId":"p2","name":"Ada","shopifyCustomerId":%q}`, strings.Repeat("9", 65))
	rec = do(h, http.MethodPost, "/api/waitlist", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWaitlistCreateValidationAndConflict(t *testing.T) {
	h := newWaitlistRouter(t)

	rec := do(h, http.MethodPost, "/api/waitlist", `{"email":"nope","productId":"","name":"A"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var errEnv struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&errEnv))
	assert.Equal(t, "VALIDATION_ERROR", errEnv.Error.Code)
	assert.Contains(t, errEnv.Error.Details, "email")
	assert.Contains(t, errEnv.Error.Details, "productId")
	assert.Contains(t, errEnv.Error.Details, "name")

	createEntry(t, h, "fan@example.com", "drop-01")
	rec = do(h, http.MethodPost, "/api/waitlist", `{"email":"FAN@example.com","productId":"drop-01","name":"Ada"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	createEntry(t, h, "fan@example.com", "drop-02")
}

func TestWaitlistListFiltersAndPaginates(t *testing.T) {
	h := newWaitlistRouter(t)
	for i := 0; i < 3; i++ {
		createEntry(t, h, fmt.Sprintf("fan%d@example.com", i), "drop-01")
	}
	other := createEntry(t, h, "other@example.com", "drop-02")

	rec := do(h, http.MethodGet, "/api/waitlist?productId=drop-01&limit=2&page=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env listEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Len(t, env.Data, 2)
	assert.Equal(t, pagination.Meta{Page: 1, Limit: 2, Total: 3, Pages: 2}, env.Pagination)

	rec = do(h, http.MethodPut, "/api/waitlist/"+other.ID.String(), `{"status":"Approved"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "/api/waitlist?status=Approved", "")
	require.Equal(t, http.StatusOK, rec.Code)
	env = listEnvelope{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.Len(t, env.Data, 1)
	assert.Equal(t, other.ID, env.Data[0].ID)

	rec = do(h, http.MethodGet, "/api/waitlist?status=approved", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWaitlistUpdateStatus(t *testing.T) {
	h := newWaitlistRouter(t)
	entry := createEntry(t, h, "fan@example.com", "drop-01")

	rec := do(h, http.MethodPut, "/api/waitlist/"+entry.ID.String(), `{"status":"Approved"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var env entryEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, "Approved", string(env.Data.Status))
	require.NotNil(t, env.Data.ApprovedAt)
	assert.True(t, env.Data.UpdatedAt.After(entry.UpdatedAt))

	rec = do(h, http.MethodPut, "/api/waitlist/"+entry.ID.String(), `{"status":"Shipped"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPut, "/api/waitlist/"+uuid.NewString(), `{"status":"Rejected"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(h, http.MethodPut, "/api/waitlist/not-an-id", `{"status":"Rejected"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestWaitlistStatsAndDelete(t *testing.T) {
	h := newWaitlistRouter(t)
	entry := createEntry(t, h, "fan@example.com", "drop-01")
	createEntry(t, h, "fan@example.com", "drop-02")

	rec := do(h, http.MethodGet, "/api/waitlist/stats/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var stats struct {
		Data waitlist.Stats `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&stats))
	assert.EqualValues(t, 2, stats.Data.Total)
	assert.EqualValues(t, 2, stats.Data.ByStatus[enums.WaitlistStatusPending])
	assert.EqualValues(t, 0, stats.Data.ByStatus[enums.WaitlistStatusApproved])
	assert.Contains(t, stats.Data.ByStatus, enums.WaitlistStatusRejected)

	rec = do(h, http.MethodDelete, "/api/waitlist/"+entry.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var env entryEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, entry.ID, env.Data.ID)

	rec = do(h, http.MethodDelete, "/api/waitlist/"+entry.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var notFound types.ErrorEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&notFound))
	assert.Equal(t, "NOT_FOUND", notFound.Error.Code)
}
