// HTTP auxiliary surface (spec §6.4): conveniences over the same stores
// the Event Router drives, honoring the same invariants. Grounded on the
// teacher's gin handler style (plain c.JSON responses, no separate DTO
// package).
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mistcall/strangerchat/internal/chatstore"
	"github.com/mistcall/strangerchat/internal/logging"
	"github.com/mistcall/strangerchat/internal/middleware"
	"github.com/mistcall/strangerchat/internal/types"
)

const defaultMessageLimit = 50
const maxMessageLimit = 500

// StatsHandler reports aggregate counts across every core component.
func (r *Router) StatsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions":      r.sessions.Count(),
		"rooms":         len(r.rooms.Snapshot()),
		"pairs":         r.pairs.Count(),
		"calls_by_kind": r.calls.Count(),
		"queue_depths":  r.matcher.QueueDepths(),
		"connections":   r.hub.ConnectionCount(),
	})
}

// DebugHandler dumps a room-by-room membership snapshot.
func (r *Router) DebugHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms": r.rooms.Snapshot(),
	})
}

// DebugConnectionsHandler lists every live session record.
func (r *Router) DebugConnectionsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sessions": r.sessions.All(),
	})
}

// DebugUserHandler reports a single session's record and, if present, its
// stranger profile.
func (r *Router) DebugUserHandler(c *gin.Context) {
	id := types.ConnID(c.Param("id"))

	sess, ok := r.sessions.Get(id)
	if !ok {
		logging.Warn(middleware.RequestContext(c), "debug lookup for unknown session")
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	body := gin.H{"session": sess}
	if profile, ok := r.sessions.StrangerProfile(id); ok {
		body["stranger_profile"] = profile
	}
	c.JSON(http.StatusOK, body)
}

// MessagesHandler returns the most recent messages posted to a room.
// GET /messages/{room}?limit=N
func (r *Router) MessagesHandler(c *gin.Context) {
	room := types.RoomName(c.Param("room"))
	limit := chatstore.ParseLimit(c.Query("limit"), defaultMessageLimit, maxMessageLimit)

	recent := r.messages.Recent(room, limit)
	logging.Info(middleware.RequestContext(c), "messages queried")

	c.JSON(http.StatusOK, gin.H{
		"room":     room,
		"messages": recent,
	})
}

// httpEditRequest / httpDeleteRequest are the bodies for the edit/delete
// HTTP conveniences, mirroring the WebSocket event payload shapes.
type httpEditRequest struct {
	MessageID  string         `json:"message_id"`
	Username   types.Username `json:"username"`
	NewContent string         `json:"new_content"`
}

type httpDeleteRequest struct {
	MessageID string         `json:"message_id"`
	Username  types.Username `json:"username"`
}

// HTTPEditMessageHandler is the POST /messages/edit convenience over the
// Message Store, honoring the same author-only and non-file invariants as
// edit_message (spec §4.3, §6.4).
func (r *Router) HTTPEditMessageHandler(c *gin.Context) {
	var req httpEditRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MessageID == "" || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_id and username are required"})
		return
	}

	msg, err := r.messages.Edit(req.MessageID, req.Username, req.NewContent)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}

	r.broadcastRoom(msg.Room, types.EventMessageEdited, map[string]any{
		"message_id":  msg.ID,
		"new_content": msg.Content,
		"edited_at":   msg.EditedAt,
		"room":        msg.Room,
		"username":    msg.Username,
	}, "")
	c.JSON(http.StatusOK, msg)
}

// HTTPDeleteMessageHandler is the POST /messages/delete convenience.
func (r *Router) HTTPDeleteMessageHandler(c *gin.Context) {
	var req httpDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.MessageID == "" || req.Username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message_id and username are required"})
		return
	}

	msg, err := r.messages.Delete(req.MessageID, req.Username)
	if err != nil {
		c.JSON(httpStatusFor(err), gin.H{"error": err.Error()})
		return
	}

	r.broadcastRoom(msg.Room, types.EventMessageDeleted, map[string]any{
		"message_id": msg.ID,
		"room":       msg.Room,
		"username":   msg.Username,
	}, "")
	c.JSON(http.StatusOK, gin.H{"deleted": msg.ID})
}

// httpStatusFor maps the chatstore error taxonomy to the HTTP codes
// spec §7 calls for.
func httpStatusFor(err error) int {
	switch err {
	case chatstore.ErrNotFound:
		return http.StatusNotFound
	case chatstore.ErrNotAuthor, chatstore.ErrFileNotEditable:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
