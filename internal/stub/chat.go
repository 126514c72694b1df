package stub

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type chatTurn struct {
	user, bot string
}

func (s *Server) chat(c *gin.Context) {
	var req struct {
		Message *string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ErrNoMessage.Error()})
		return
	}
	msg := strings.TrimSpace(*req.Message)
	if msg == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": ErrEmptyMsg.Error()})
		return
	}

	s.mu.Lock()
	reply := compose(msg, len(s.history))
	s.history = append(s.history, chatTurn{user: msg, bot: reply})
	turns := len(s.history)
	s.mu.Unlock()

	s.logger.Debug("chat reply", slog.Int("conversation_length", turns))
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"response":  reply,
		"timestamp": s.now().Format(time.RFC3339),
	})
}

func (s *Server) clearChat(c *gin.Context) {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Conversation history cleared"})
}

func (s *Server) chatHealth(c *gin.Context) {
	s.mu.Lock()
	turns := len(s.history)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"chatbot_loaded":      true,
		"model_name":          "reel-stub-chat",
		"conversation_length": turns,
	})
}

// compose builds a deterministic reply so clients can assert on it.
func compose(msg string, previous int) string {
	if previous == 0 {
		return fmt.Sprintf("Hello! You said: %q", msg)
	}
	return fmt.Sprintf("You said: %q (message %d in this conversation)", msg, previous+1)
}
