package response

import (
	"github.com/gin-gonic/gin"
)

// The ledger wire contract is deliberately flat: successful calls return
// the payload object itself, failures return {"message": ...} with a
// non-2xx status. The gateway on the client side relies on that shape.

type messageBody struct {
	Message string `json:"message"`
}

// Message writes a {"message": ...} success body.
func Message(c *gin.Context, status int, msg string) {
	c.JSON(status, messageBody{Message: msg})
}

// Fail writes a {"message": ...} error body and aborts the handler chain.
func Fail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, messageBody{Message: msg})
}

// Invalid writes a 422 with per-field details alongside the message.
func Invalid(c *gin.Context, msg string, details map[string]string) {
	c.AbortWithStatusJSON(422, gin.H{"message": msg, "details": details})
}
