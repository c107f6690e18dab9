package profile

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HandleSetup is the Gin handler for the GET setup route. It requires
// mode and verify_token query parameters; a missing parameter is a 404
// so the route stays invisible to probes, and a wrong token is a 403.
func (s *Setup) HandleSetup(c *gin.Context) {
	mode := c.Query("mode")
	token := c.Query("verify_token")

	if mode == "" || token == "" {
		c.Status(http.StatusNotFound)
		return
	}
	if token != s.verifyToken {
		s.log.Warn("Setup request with wrong verify token")
		c.String(http.StatusForbidden, "Verify token mismatch")
		return
	}

	switch mode {
	case ModeWebhook, ModeProfile, ModePersonas, ModeNLP, ModeDomains, ModeAll:
	default:
		c.String(http.StatusBadRequest, "Unknown mode: "+mode)
		return
	}

	lines, err := s.Run(c.Request.Context(), mode)
	if err != nil {
		body := strings.Join(append(lines, "❌ "+err.Error()), "\n")
		c.String(http.StatusInternalServerError, body)
		return
	}

	c.String(http.StatusOK, strings.Join(lines, "\n"))
}
