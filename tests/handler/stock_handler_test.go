package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sitesupply/procurement-api/internal/auth"
	"github.com/sitesupply/procurement-api/internal/config"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/http/handler"
	"github.com/sitesupply/procurement-api/internal/repository"
	"github.com/sitesupply/procurement-api/internal/service"
	"github.com/sitesupply/procurement-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// newStockRouter mounts the stock routes the way the production router
// does: reads open to any authenticated user, mutations behind
// RequireAdmin.
func newStockRouter(db *gorm.DB, user *domain.User) *chi.Mux {
	logger := zap.NewNop()
	svc := service.NewStockService(repository.NewStockRepository(db), logger)
	h := handler.NewStockHandler(svc, logger)

	cfg := &config.Config{}
	cfg.Auth = config.AuthConfig{
		JWTSecret:       "test-secret-key-for-unit-tests",
		Issuer:          "procurement-api-test",
		TokenTTLMinutes: 60,
	}
	authMiddleware := auth.NewMiddleware(cfg, logger)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := auth.WithUserContext(req.Context(), testutil.UserContextFor(user))
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/api/v1/stock", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/balances", h.Balances)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.RequireAdmin)
			r.Post("/receive", h.Receive)
			r.Post("/deduct", h.Deduct)
			r.Patch("/{id}", h.Update)
		})
	})
	return r
}

func receiveBatch() map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{
			{"item": "Cement OPC 53", "quantity": 100, "unit": "bags"},
		},
	}
}

func TestStockHandler_MutationsRequireAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, domain.RoleUser)
	router := newStockRouter(db, user)

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{"receive", http.MethodPost, "/api/v1/stock/receive"},
		{"deduct", http.MethodPost, "/api/v1/stock/deduct"},
		{"update row", http.MethodPatch, "/api/v1/stock/00000000-0000-0000-0000-000000000001"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, tt.method, tt.path, receiveBatch())
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}

	// Nothing reached the ledger.
	var rows int64
	require.NoError(t, db.Model(&domain.StockTransaction{}).Count(&rows).Error)
	assert.EqualValues(t, 0, rows)
}

func TestStockHandler_AdminCanMutate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	admin := testutil.CreateTestUser(t, db, domain.RoleAdmin)
	router := newStockRouter(db, admin)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/stock/receive", receiveBatch())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var rows int64
	require.NoError(t, db.Model(&domain.StockTransaction{}).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestStockHandler_ReadsOpenToUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	user := testutil.CreateTestUser(t, db, domain.RoleUser)
	router := newStockRouter(db, user)

	rec := doJSON(t, router, http.MethodGet, "/api/v1/stock/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/v1/stock/balances", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
