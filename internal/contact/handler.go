package contact

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/gym-portal/internal/apperr"
	"github.com/yourusername/gym-portal/internal/logging"
	"github.com/yourusername/gym-portal/internal/model"
)

const (
	msgInvalidInput = "Please fill in every contact field"
	msgSaveFailed   = "Unable to save item to the Database"
	msgReadBack     = "Unable to get last inserted ID"
)

// SubmitHandler は POST /contact のハンドラーを返します。
func SubmitHandler(svc *Service, logger logging.Logger) gin.HandlerFunc {
	logger = logger.With("component", "contact")
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		var in Input
		if err := c.ShouldBind(&in); err != nil {
			c.String(http.StatusBadRequest, msgInvalidInput)
			return
		}

		contact, err := svc.Submit(ctx, in)
		if err != nil {
			status := apperr.Status(err)
			switch {
			case errors.Is(err, apperr.ErrValidationFailed):
				logger.Warn(ctx, "contact rejected", "error", err)
				c.String(status, msgInvalidInput)
			case errors.Is(err, ErrReadBack):
				logger.Error(ctx, "contact read back failed", "error", err)
				c.String(status, msgReadBack)
			default:
				logger.Error(ctx, "contact save failed", "kind", apperr.Kind(err), "error", err)
				c.String(status, msgSaveFailed)
			}
			return
		}

		c.HTML(http.StatusOK, "submit.html", gin.H{
			"contactList": []*model.Contact{contact},
		})
	}
}
