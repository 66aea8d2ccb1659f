package middleware

import (
	"encoding/json"
	"time"

	"bank-card-service/internal/core/domain"
	"bank-card-service/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that records successful write
// operations after the response is sent.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var userEmail *string
		if email, exists := c.Get(CtxEmail); exists {
			if s, ok := email.(string); ok {
				userEmail = &s
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			UserEmail:    userEmail,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/signup" && method == "POST":
		return domain.AuditActionSignup, "user"
	case path == "/api/v1/auth/signin" && method == "POST":
		return domain.AuditActionSignin, "session"
	case path == "/api/v1/cards" && method == "POST":
		return domain.AuditActionCardCreate, "card"
	case path == "/api/v1/cards/transfers" && method == "PUT":
		return domain.AuditActionTransfer, "card"
	case path == "/api/v1/cards" && method == "DELETE":
		return domain.AuditActionCardDelete, "card"
	case path == "/api/v1/cards/status" && method == "PUT":
		return domain.AuditActionStatusChange, "card"
	}
	return "", ""
}
