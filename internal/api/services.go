package api

import (
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Auth      *service.AuthService
	Catalog   *service.CatalogService
	Reviews   *service.ReviewService
	Analytics *service.AnalyticsService
	Admin     *service.AdminService
}
