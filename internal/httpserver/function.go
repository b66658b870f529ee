package httpserver

import (
	"net/http"

	"operator-panel/internal/paymentfunc"

	"github.com/gin-gonic/gin"
)

// paymentFunctionHandler is the invocation boundary for the cc-ivr
// checkout decision. The platform posts the cart snapshot and available
// payment methods, and gets back the operations to perform.
func paymentFunctionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input paymentfunc.Input
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input"})
			return
		}
		c.JSON(http.StatusOK, paymentfunc.Run(input))
	}
}
