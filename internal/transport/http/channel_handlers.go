package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirerelay/internal/proto"
	"github.com/vovakirdan/wirerelay/internal/store"
)

// ChannelHandlers provides HTTP handlers for channel listing and history.
type ChannelHandlers struct {
	store        store.Store
	historyLimit int
	log          *zerolog.Logger
}

// NewChannelHandlers creates a new channel handlers instance.
func NewChannelHandlers(st store.Store, historyLimit int, logger *zerolog.Logger) *ChannelHandlers {
	return &ChannelHandlers{
		store:        st,
		historyLimit: historyLimit,
		log:          logger,
	}
}

// ChannelResponse represents a channel in API responses.
type ChannelResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// ListChannels handles listing all channels.
// GET /api/channels
func (h *ChannelHandlers) ListChannels(c *gin.Context) {
	channels, err := h.store.ListChannels(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list channels")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]ChannelResponse, 0, len(channels))
	for _, ch := range channels {
		response = append(response, ChannelResponse{
			ID:        ch.ID,
			Name:      ch.Name,
			CreatedAt: ch.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	c.JSON(http.StatusOK, response)
}

// History returns the latest messages of a channel, oldest first, in the
// same shape as new_message events.
// GET /api/channels/:id/messages
func (h *ChannelHandlers) History(c *gin.Context) {
	channelID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || channelID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid channel id"})
		return
	}

	ctx := c.Request.Context()
	if _, err := h.store.GetChannelByID(ctx, channelID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "channel not found"})
			return
		}
		h.log.Error().Err(err).Int64("channel_id", channelID).Msg("failed to load channel")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	messages, err := h.store.ListMessages(ctx, channelID, h.historyLimit)
	if err != nil {
		h.log.Error().Err(err).Int64("channel_id", channelID).Msg("failed to load history")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	response := make([]proto.NewMessage, 0, len(messages))
	for _, msg := range messages {
		response = append(response, historyToProto(msg))
	}

	h.log.Debug().Int64("channel_id", channelID).Int("count", len(response)).Msg("history listed")
	c.JSON(http.StatusOK, response)
}
