package handler

import (
	"nutscredit/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// callerID returns the authenticated caller's identity set by the auth
// middleware.
func callerID(c *gin.Context) string {
	id, _ := c.Get("callerID")
	s, _ := id.(string)
	return s
}

// callerName returns the authenticated caller's display name.
func callerName(c *gin.Context) string {
	name, _ := c.Get("callerName")
	s, _ := name.(string)
	return s
}

// parseOptionalAmount parses an optional decimal field; empty means zero.
func parseOptionalAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return service.ParseCredit(s)
}
