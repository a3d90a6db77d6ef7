package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/theflipapp/intake/internal/parse"
)

// MessageParser is the classification entry point the handler exposes.
type MessageParser interface {
	Parse(ctx context.Context, msg parse.Message) (parse.Result, error)
}

// ParseHandler exposes one-shot message classification.
type ParseHandler struct {
	parser   MessageParser
	validate *validator.Validate
	logger   *slog.Logger
}

// NewParseHandler creates a ParseHandler.
func NewParseHandler(log *slog.Logger, parser MessageParser) *ParseHandler {
	return &ParseHandler{
		parser:   parser,
		validate: validator.New(),
		logger:   log.With(slog.String("handler", "parse")),
	}
}

// Register registers parse routes.
func (h *ParseHandler) Register(e *echo.Echo) {
	e.POST("/api/parse", h.Parse)
}

// ParseRequest is one message to classify.
type ParseRequest struct {
	Text       string `json:"text" validate:"required"`
	ReplyToURL string `json:"reply_to_url"`
}

// ParseResponse is the classification decision.
type ParseResponse struct {
	Verdict        string        `json:"verdict"`
	Asset          *AssetPayload `json:"asset,omitempty"`
	TicketID       *int64        `json:"ticket_id,omitempty"`
	PartsRequestID *int64        `json:"parts_request_id,omitempty"`
	Reason         string        `json:"reason"`
}

// AssetPayload identifies the attached asset.
type AssetPayload struct {
	Slug        string `json:"slug"`
	DisplayName string `json:"display_name"`
}

// Parse classifies one message.
func (h *ParseHandler) Parse(c echo.Context) error {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	requestID := uuid.NewString()
	result, err := h.parser.Parse(c.Request().Context(), parse.Message{
		Text:       req.Text,
		ReplyToURL: req.ReplyToURL,
	})
	if err != nil {
		h.logger.Error("parse failed",
			slog.String("request_id", requestID),
			slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusBadGateway, "classification lookup failed")
	}

	resp := ParseResponse{
		Verdict: result.Verdict.String(),
		Reason:  result.Reason,
	}
	if result.Asset != nil {
		resp.Asset = &AssetPayload{Slug: result.Asset.Slug, DisplayName: result.Asset.DisplayName}
	}
	if result.Ticket != nil {
		resp.TicketID = &result.Ticket.ID
	}
	if result.Request != nil {
		resp.PartsRequestID = &result.Request.ID
	}

	h.logger.Info("message classified",
		slog.String("request_id", requestID),
		slog.String("verdict", result.Verdict.String()),
		slog.String("reason", result.Reason))
	return c.JSON(http.StatusOK, resp)
}
