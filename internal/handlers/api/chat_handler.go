package api

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sentrasec/sentra/internal/ollama"
	"github.com/sentrasec/sentra/internal/rag"
	"github.com/sentrasec/sentra/params"
)

type ChatHandler struct {
	chatService ChatService
}

func NewChatHandler(chatService ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

type chatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *ChatHandler) PostChat(ctx *fiber.Ctx) error {
	var req struct {
		Message  string     `json:"message"`
		ClientID *uint      `json:"clientId"`
		History  []chatTurn `json:"history"`
	}
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.ErrBadRequest
	}
	if strings.TrimSpace(req.Message) == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(
			NewErrorResponse(fiber.StatusBadRequest, "Message is required"),
		)
	}

	history := make([]ollama.Message, 0, len(req.History))
	for _, turn := range req.History {
		if turn.Role != ollama.RoleUser && turn.Role != ollama.RoleAssistant {
			continue
		}
		history = append(history, ollama.Message{Role: turn.Role, Content: turn.Content})
	}

	resp, err := h.chatService.Chat(ctx.Context(), rag.ChatRequest{
		Message:  req.Message,
		ClientID: scopedClientID(ctx, req.ClientID),
		History:  history,
	})
	if err != nil {
		// model backend failures surface as 502 with the fixed apology
		if errors.Is(err, ollama.ErrEmbeddingUnavailable) ||
			errors.Is(err, ollama.ErrInvalidEmbedding) ||
			errors.Is(err, ollama.ErrChatUnavailable) {
			slog.Error("Chat backend unavailable", "error", err)
			return ctx.Status(fiber.StatusBadGateway).JSON(
				NewErrorResponse(fiber.StatusBadGateway, params.ChatFallbackResponse),
			)
		}
		return failError(ctx, err)
	}
	return ctx.JSON(NewDataResponse(resp))
}
