package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/poiesic/courseforge/ai"
	"github.com/poiesic/courseforge/chat"
	"github.com/poiesic/courseforge/core"
	"github.com/poiesic/courseforge/stream"
)

// streamHandler relays chat deltas to the client as server-sent events.
// Everything after the first delta travels on the event stream, so failures
// are reported as a terminal error frame rather than an HTTP status.
func streamHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StreamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}
		if len(req.MessageList) == 0 {
			WriteError(w, http.StatusBadRequest, "messageList is required", "BAD_REQUEST")
			return
		}

		messages := make([]ai.ChatMessage, 0, len(req.MessageList))
		for _, m := range req.MessageList {
			messages = append(messages, ai.ChatMessage{Role: m.Role, Content: m.Message})
		}

		sw := stream.NewWriter(w)
		err := cfg.Chat.Stream(r.Context(), &chat.Request{
			CourseID: core.ID(req.CourseID),
			Messages: messages,
		}, sw.WriteDelta)

		if err != nil {
			// The client hung up; there is nobody left to write frames to.
			if r.Context().Err() != nil || errors.Is(err, context.Canceled) {
				return
			}
			cfg.Logger.Error("chat stream failed", "courseID", req.CourseID, "err", err)
			_ = sw.WriteError(err.Error())
			return
		}

		_ = sw.WriteSuccess()
	}
}
