package kds

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// originChecker accepts requests without an Origin header (non-browser
// clients), any origin when the list is empty or holds "*", and otherwise
// only the listed origins.
func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || len(allowed) == 0 || allowed[origin]
	}
}

// ServeWS upgrades an authenticated staff request to a websocket and keeps it
// registered until the client disconnects. Expects AuthMiddleware to have set
// "role". Browser upgrades are refused unless their Origin is allowed.
func ServeWS(hub *Hub, allowedOrigins ...string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return func(c *gin.Context) {
		role := c.GetString("role")
		if role == "" {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		if role != "staff" && role != "admin" {
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.log.Warnf("websocket upgrade failed: %v", err)
			return
		}
		hub.Register(ws, role)

		// drain reads so close frames are processed
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				break
			}
		}
		hub.Unregister(ws)
	}
}
