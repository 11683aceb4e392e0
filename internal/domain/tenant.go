package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	ErrTenantRequired = errors.New("tenant é obrigatório")
	ErrUnknownTenant  = errors.New("tenant não configurado")
)

// ResolveTenant normaliza o tenant informado e confere se ele está entre os configurados
func ResolveTenant(allowed []string, tenant string) (string, error) {
	tenant = strings.ToLower(strings.TrimSpace(tenant))
	if tenant == "" {
		return "", ErrTenantRequired
	}
	if !slices.Contains(allowed, tenant) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTenant, tenant)
	}
	return tenant, nil
}
