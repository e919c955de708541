package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/domain"
	"github.com/inkwellapp/inkwell-server/internal/search"
	"github.com/inkwellapp/inkwell-server/internal/store"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// Deterministic 32-byte key for token tests.
const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

// testEnv wires real services over temp-dir storage for integration-style
// service tests.
type testEnv struct {
	Store     *store.Store
	Search    *search.Index
	Recorder  *ActivityRecorder
	Catalog   *CatalogService
	Reviews   *ReviewService
	Auth      *AuthService
	Admin     *AdminService
	Analytics *AnalyticsService
}

func setupTestEnv(t *testing.T) (*testEnv, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "service-test-*")
	require.NoError(t, err)

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	searchIndex, err := search.NewIndex(search.Options{DataPath: tmpDir})
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testKeyHex, 15*time.Minute)
	require.NoError(t, err)

	recorder := NewActivityRecorder(st, nil)
	validator := validation.New()
	logger := newTestLogger()

	env := &testEnv{
		Store:     st,
		Search:    searchIndex,
		Recorder:  recorder,
		Catalog:   NewCatalogService(st, searchIndex, recorder, validator, logger),
		Reviews:   NewReviewService(st, recorder, validator, logger),
		Auth:      NewAuthService(st, tokenService, recorder, validator, logger),
		Admin:     NewAdminService(st, logger),
		Analytics: NewAnalyticsService(st, logger),
	}

	cleanup := func() {
		recorder.Close()
		_ = searchIndex.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return env, cleanup
}

// drainRecorder blocks until every queued activity mutation has been
// applied. The recorder is closed afterward, so tests call this at most
// once, right before asserting on snapshot state.
func (env *testEnv) drainRecorder() {
	env.Recorder.Close()
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUser(id, name string, role domain.Role) *domain.User {
	user := &domain.User{
		Record: domain.Record{ID: id},
		Name:   name,
		Email:  id + "@example.com",
		Role:   role,
		Active: true,
	}
	user.InitTimestamps()
	return user
}

func mustCreateUser(t *testing.T, env *testEnv, user *domain.User) *domain.User {
	t.Helper()
	require.NoError(t, env.Store.Users.Create(context.Background(), user.ID, user))
	return user
}

func mustCreateBook(t *testing.T, env *testEnv, owner *domain.User, title string) *domain.Book {
	t.Helper()
	book, err := env.Catalog.CreateBook(context.Background(), owner, CreateBookRequest{
		Title:    title,
		Author:   "Test Author",
		Price:    9.99,
		Category: "fiction",
	})
	require.NoError(t, err)
	return book
}
