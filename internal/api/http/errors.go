package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/layout"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/message"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/navigation"
	"github.com/GriffinCanCode/AgentOS/shell/internal/domain/shell"
	"github.com/GriffinCanCode/AgentOS/shell/internal/shared/utils"
)

// StatusFor maps a domain error to an HTTP status
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shell.ErrInvalidInstallation),
		errors.Is(err, shell.ErrMissingField),
		errors.Is(err, shell.ErrUnknownEvent),
		errors.Is(err, message.ErrMalformed),
		errors.Is(err, message.ErrUnknownKind),
		errors.Is(err, layout.ErrInvalidBackground),
		errors.Is(err, utils.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, message.ErrOriginRejected):
		return http.StatusForbidden
	case errors.Is(err, message.ErrUnknownApp),
		errors.Is(err, navigation.ErrNotRunning):
		return http.StatusNotFound
	case errors.Is(err, message.ErrAmbiguousApp):
		return http.StatusConflict
	case errors.Is(err, navigation.ErrNoLaunchTarget):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(StatusFor(err), gin.H{"error": err.Error()})
}
