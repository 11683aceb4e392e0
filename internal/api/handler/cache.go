package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/vfg2006/sales-forecast-api/internal/domain"
	"github.com/vfg2006/sales-forecast-api/pkg/apiErrors"
	"github.com/vfg2006/sales-forecast-api/pkg/log"
)

type CacheInvalidator interface {
	InvalidateCache(ctx context.Context, tenant string) error
}

// InvalidateCache descarta as observações em cache do tenant, usado após a carga do ETL
func InvalidateCache(service CacheInvalidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tenant := httprouter.ParamsFromContext(r.Context()).ByName("tenant")

		err := service.InvalidateCache(r.Context(), tenant)
		switch {
		case errors.Is(err, domain.ErrTenantRequired):
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tenant não informado", nil)
			return
		case errors.Is(err, domain.ErrUnknownTenant):
			apiErrors.WriteError(w, apiErrors.ErrResourceNotFound, "Tenant não configurado", map[string]string{"tenant": tenant})
			return
		case err != nil:
			log.ForContext(r.Context()).WithError(err).Error("Erro ao invalidar cache")
			apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro ao invalidar cache", nil)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Cache invalidado",
			"tenant":  tenant,
		})
	}
}
