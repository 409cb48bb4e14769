package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/moonback/Esil-events-v1-sub001/internal/config"
	"github.com/moonback/Esil-events-v1-sub001/internal/logger"
	"github.com/moonback/Esil-events-v1-sub001/internal/models"
)

// RequestProcessor answers one storefront request.
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, request *models.AssistantRequest) (*models.AssistantResponse, error)
}

type NATSTransport struct {
	conn    *nats.Conn
	sub     *nats.Subscription
	config  *config.Config
	handler RequestProcessor
	log     *zap.Logger
}

// Connect opens the NATS connection shared by the transport, the event
// publisher and the cart sink.
func Connect(cfg *config.Config, log *zap.Logger) (*nats.Conn, error) {
	log = logger.OrNop(log)
	conn, err := nats.Connect(cfg.NatsURL,
		nats.Name(cfg.ServiceName),
		nats.Timeout(cfg.NatsTimeout),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1), // Infinite reconnects
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	log.Info("connected to NATS server", zap.String("url", cfg.NatsURL))
	return conn, nil
}

func NewNATSTransport(conn *nats.Conn, cfg *config.Config, handler RequestProcessor, log *zap.Logger) *NATSTransport {
	return &NATSTransport{
		conn:    conn,
		config:  cfg,
		handler: handler,
		log:     logger.OrNop(log).Named("nats"),
	}
}

func (nt *NATSTransport) Start() error {
	sub, err := nt.conn.Subscribe(nt.config.NatsRequestSubject, nt.handleRequest)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", nt.config.NatsRequestSubject, err)
	}
	nt.sub = sub

	nt.log.Info("subscribed", zap.String("subject", nt.config.NatsRequestSubject))
	return nil
}

func (nt *NATSTransport) handleRequest(msg *nats.Msg) {
	reply := nt.process(msg.Data)
	if err := msg.Respond(reply); err != nil {
		nt.log.Error("failed to send response", zap.Error(err))
	}
}

// process decodes one request and encodes its response.
func (nt *NATSTransport) process(data []byte) []byte {
	var request models.AssistantRequest
	if err := json.Unmarshal(data, &request); err != nil {
		nt.log.Warn("invalid request payload", zap.Error(err))
		return nt.encode(errorResponse(&request, models.ErrorBadRequest, "Invalid request format"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), nt.config.NatsTimeout)
	defer cancel()

	response, err := nt.handler.ProcessRequest(ctx, &request)
	if err != nil {
		nt.log.Error("failed to process request", zap.String("session_id", request.SessionID), zap.Error(err))
		return nt.encode(errorResponse(&request, models.ErrorInternal, err.Error()))
	}

	nt.log.Debug("request processed",
		zap.String("session_id", response.SessionID),
		zap.String("action", request.Action),
		zap.String("status", response.Status),
	)
	return nt.encode(response)
}

func (nt *NATSTransport) encode(response *models.AssistantResponse) []byte {
	data, err := json.Marshal(response)
	if err != nil {
		nt.log.Error("failed to marshal response", zap.Error(err))
		return []byte(`{"status":"ERROR","error_code":"INTERNAL_ERROR"}`)
	}
	return data
}

func errorResponse(request *models.AssistantRequest, errorCode, errorMessage string) *models.AssistantResponse {
	return &models.AssistantResponse{
		SessionID:    request.SessionID,
		Status:       models.StatusError,
		Answers:      []models.Answer{},
		UserMessage:  models.MessageRetry,
		ErrorCode:    &errorCode,
		ErrorMessage: &errorMessage,
	}
}

// Close drains the request subscription so in-flight requests are answered.
func (nt *NATSTransport) Close() error {
	if nt.sub != nil {
		if err := nt.sub.Drain(); err != nil {
			return fmt.Errorf("failed to drain subscription: %w", err)
		}
		nt.log.Info("NATS subscription drained")
	}
	return nil
}
