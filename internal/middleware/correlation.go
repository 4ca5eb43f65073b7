// Package middleware contains Gin middleware for the application.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mistcall/strangerchat/internal/logging"
)

// HeaderXCorrelationID is the header key for the correlation ID.
const HeaderXCorrelationID = "X-Correlation-ID"

// CorrelationID stamps every request with a correlation ID and, where the
// matched route carries one, this domain's own identifiers: room_id from a
// :room path param (GET /messages/:room) and session_id from a :id path
// param (GET /debug/user/:id). Those two are internal/logging's context
// keys, so logging.Info/Warn/Error on the request's context emit them as
// room_id and session_id fields. WebSocket handlers do not use these keys;
// their logHelper lines name the connection and room as conn_id and room.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(HeaderXCorrelationID)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}

		// Set in header for response
		c.Header(HeaderXCorrelationID, correlationID)

		// Set in context for logger
		c.Set(string(logging.CorrelationIDKey), correlationID)

		if room := c.Param("room"); room != "" {
			c.Set(string(logging.RoomIDKey), room)
		}
		if id := c.Param("id"); id != "" {
			c.Set(string(logging.SessionIDKey), id)
		}

		// Pass to next handlers
		c.Next()
	}
}

// RequestContext builds a context.Context carrying whatever correlation,
// room, and session identifiers CorrelationID stashed on c, for handlers
// that log through internal/logging instead of gin's own logger.
func RequestContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if v, ok := c.Get(string(logging.CorrelationIDKey)); ok {
		ctx = context.WithValue(ctx, logging.CorrelationIDKey, v)
	}
	if v, ok := c.Get(string(logging.RoomIDKey)); ok {
		ctx = context.WithValue(ctx, logging.RoomIDKey, v)
	}
	if v, ok := c.Get(string(logging.SessionIDKey)); ok {
		ctx = context.WithValue(ctx, logging.SessionIDKey, v)
	}
	return ctx
}
