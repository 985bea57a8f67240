package main

import (
	"crypto/subtle"
	"net/http"

	"github.com/sirupsen/logrus"

	"outage-pulse/pkg/config"
	"outage-pulse/pkg/types"
)

const adminSecretHeader = "X-Admin-Secret"

// adminAuthMiddleware guards administrative routes with the shared secret from
// the config file. The secret is read from the config manager on every request
// so hot reloads take effect without a restart.
type adminAuthMiddleware struct {
	logger        *logrus.Logger
	configManager *config.Manager[types.AppConfig]
	next          http.Handler
}

func newAdminAuthMiddleware(logger *logrus.Logger, configManager *config.Manager[types.AppConfig], next http.Handler) *adminAuthMiddleware {
	return &adminAuthMiddleware{
		logger:        logger,
		configManager: configManager,
		next:          next,
	}
}

func (m *adminAuthMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	secret := m.configManager.Get().AdminSecret
	provided := r.Header.Get(adminSecretHeader)

	// An empty configured secret means admin routes are disabled outright.
	if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
		m.logger.WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Warn("Rejected admin request with invalid secret")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"Forbidden"}`))
		return
	}

	m.next.ServeHTTP(w, r)
}
