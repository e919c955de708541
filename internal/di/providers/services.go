package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/inkwellapp/inkwell-server/internal/auth"
	"github.com/inkwellapp/inkwell-server/internal/logger"
	"github.com/inkwellapp/inkwell-server/internal/service"
	"github.com/inkwellapp/inkwell-server/internal/validation"
)

// ActivityRecorderHandle wraps the recorder with shutdown capability. Closing
// drains the queue so buffered events reach the snapshot store.
type ActivityRecorderHandle struct {
	*service.ActivityRecorder
}

// Shutdown implements do.Shutdownable.
func (h *ActivityRecorderHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideActivityRecorder provides the async activity recorder.
func ProvideActivityRecorder(i do.Injector) (*ActivityRecorderHandle, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &ActivityRecorderHandle{
		ActivityRecorder: service.NewActivityRecorder(storeHandle.Store, log.Logger),
	}, nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	recorderHandle := do.MustInvoke[*ActivityRecorderHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, recorderHandle.ActivityRecorder, validator, log.Logger), nil
}

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	recorderHandle := do.MustInvoke[*ActivityRecorderHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.Index, recorderHandle.ActivityRecorder, validator, log.Logger), nil
}

// ProvideReviewService provides the review service.
func ProvideReviewService(i do.Injector) (*service.ReviewService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	recorderHandle := do.MustInvoke[*ActivityRecorderHandle](i)
	validator := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReviewService(storeHandle.Store, recorderHandle.ActivityRecorder, validator, log.Logger), nil
}

// ProvideAnalyticsService provides the analytics service.
func ProvideAnalyticsService(i do.Injector) (*service.AnalyticsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAnalyticsService(storeHandle.Store, log.Logger), nil
}

// ProvideAdminService provides the user administration service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAdminService(storeHandle.Store, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds the index when it is empty but the
// catalog is not. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	catalog := do.MustInvoke[*service.CatalogService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := catalog.IndexedBooks()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	count, err := storeHandle.CountBooks(ctx)
	if err != nil || count == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering initial reindex",
		"book_count", count,
	)

	go func() {
		if err := catalog.Reindex(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		}
	}()
}
