package apperr

import (
	stderrors "errors"

	"github.com/gin-gonic/gin"
)

const internalMessage = "Internal server error"

// Respond writes err as {"error": message, "code": kind} and aborts the chain.
// Internal errors never expose their cause.
func Respond(c *gin.Context, err error) {
	kind := KindOf(err)
	message := internalMessage

	var appErr *Error
	if stderrors.As(err, &appErr) && kind != KindInternal {
		message = appErr.Message
	} else if kind != KindInternal {
		message = UserMessage(kind)
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(HTTPStatus(kind), gin.H{"error": message, "code": kind})
}

// Abort writes a kind and message without an underlying error.
func Abort(c *gin.Context, kind Kind, message string) {
	c.AbortWithStatusJSON(HTTPStatus(kind), gin.H{"error": message, "code": kind})
}
