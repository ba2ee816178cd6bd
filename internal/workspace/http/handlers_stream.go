package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// streamMessages serves a run's live message stream over Server-Sent Events.
// The subscriber gets a connection ack, then a snapshot of all messages so
// far, then one append event per new message until it disconnects.
func (h *Handler) streamMessages(c *gin.Context) {
	runID, err := pathInt(c, "runId")
	if err != nil {
		respondError(c, err)
		return
	}
	if _, err := h.store.ListMessages(runID); err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "streaming unsupported"})
		return
	}

	fmt.Fprint(c.Writer, ":connected\n\n")
	flusher.Flush()

	// Register before fetching the snapshot: a message appended in between
	// shows up in the snapshot and possibly again as an append, instead of
	// slipping through unseen.
	sub := h.hub.Register(runID)
	defer sub.Close()
	messages, err := h.store.ListMessages(runID)
	if err != nil {
		return
	}
	h.hub.SendSnapshot(runID, messages, sub)

	ctx := c.Request.Context()
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case ev := <-sub.Events():
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
