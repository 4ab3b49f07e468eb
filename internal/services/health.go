package services

import (
	"fmt"
	"log"

	"github.com/curioapp/curio/internal/config"
	"github.com/curioapp/curio/internal/utils"
	"gorm.io/gorm"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Provider     string            `json:"provider"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck performs a health check of the service: database
// connectivity and reachability of the identity provider.
func HealthCheck(cfg *config.Config, db *gorm.DB, provider *Google) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	// Check database connectivity
	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.Details["database_error"] = err.Error()
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
	} else {
		if err := sqlDB.Ping(); err != nil {
			result.Status = "unhealthy"
			result.Database = "unreachable"
			result.Details["database_ping_error"] = err.Error()
			result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
			log.Printf("Health check failed - database ping: %v", err)
		} else {
			result.Database = "ok"
			result.Details["database_type"] = cfg.DBType
			result.Details["database_name"] = cfg.DBDatabase
		}
	}

	// Check identity provider reachability
	if err := utils.PingProvider(provider.TokenInfoURL); err != nil {
		result.Status = "unhealthy"
		result.Provider = "unreachable"
		result.Details["provider_error"] = err.Error()
		if result.ErrorMessage == "" {
			result.ErrorMessage = fmt.Sprintf("Provider ping failed: %v", err)
		} else {
			result.ErrorMessage += fmt.Sprintf("; provider ping failed: %v", err)
		}
		log.Printf("Health check failed - provider ping: %v", err)
	} else {
		result.Provider = "ok"
		result.Details["provider_url"] = provider.TokenInfoURL
	}

	if result.Status == "healthy" {
		log.Println("Health check passed - all systems operational")
	}

	return result
}
