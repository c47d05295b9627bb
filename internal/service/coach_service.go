package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/verdantlab/ecoquest-api/internal/dto"
	"github.com/verdantlab/ecoquest-api/internal/models"
	"github.com/verdantlab/ecoquest-api/internal/observability"
	"github.com/verdantlab/ecoquest-api/internal/repository"
	"github.com/verdantlab/ecoquest-api/pkg/ai"
)

const (
	coachSendBufferSize = 32
	coachHistoryWindow  = 12
	coachReplyTimeout   = 45 * time.Second
)

// ErrCoachNotAuthorised indicates a student attempted to use another student's room.
var ErrCoachNotAuthorised = errors.New("sender not authorised for room")

// CoachConnectionOptions wraps metadata extracted during the HTTP upgrade.
type CoachConnectionOptions struct {
	UserID        string
	Role          string
	RoomID        string
	CorrelationID string
	Context       context.Context
}

// CoachService manages websocket coaching sessions and generated replies.
type CoachService interface {
	ServeConnection(conn *websocket.Conn, opts CoachConnectionOptions)
	History(ctx context.Context, query dto.CoachHistoryQuery) ([]dto.CoachMessageResponse, error)
	Start(ctx context.Context)
}

type coachService struct {
	repo        repository.CoachRepository
	coach       ai.Coach
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	validator   *validator.Validate
	logger      zerolog.Logger
	tracer      trace.Tracer
	sanitizer   *bluemonday.Policy
	hub         *coachHub
	nodeID      string
}

// coachHub keeps track of active websocket clients per room.
type coachHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*coachClient]struct{}
	log   zerolog.Logger
}

type coachClient struct {
	conn    *websocket.Conn
	send    chan dto.CoachMessageResponse
	options CoachConnectionOptions
	service *coachService
	closed  chan struct{}
	once    sync.Once
	baseCtx context.Context
}

type coachEvent struct {
	Source  string                   `json:"source"`
	Message dto.CoachMessageResponse `json:"message"`
	SentAt  time.Time                `json:"sent_at"`
}

// NewCoachService creates a websocket coaching service instance.
func NewCoachService(repo repository.CoachRepository, coach ai.Coach, redisClient *redis.Client, channelBase string, natsConn *nats.Conn, validate *validator.Validate, logger zerolog.Logger) CoachService {
	sanitizer := bluemonday.StrictPolicy()

	hub := &coachHub{
		rooms: make(map[string]map[*coachClient]struct{}),
		log:   logger.With().Str("component", "coach_hub").Logger(),
	}

	streamChannel := ""
	natsSubject := ""
	if channelBase != "" {
		streamChannel = channelBase + ":coach"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".coach"
	}

	return &coachService{
		repo:        repo,
		coach:       coach,
		redis:       redisClient,
		redisStream: streamChannel,
		nats:        natsConn,
		natsSubject: natsSubject,
		validator:   validate,
		logger:      logger.With().Str("component", "coach_service").Logger(),
		tracer:      otel.Tracer("github.com/verdantlab/ecoquest-api/internal/service/coach"),
		sanitizer:   sanitizer,
		hub:         hub,
		nodeID:      uuid.NewString(),
	}
}

func (s *coachService) Start(ctx context.Context) {
	if s.redis != nil && s.redisStream != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *coachService) ServeConnection(conn *websocket.Conn, opts CoachConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &coachClient{
		conn:    conn,
		send:    make(chan dto.CoachMessageResponse, coachSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
		baseCtx: baseCtx,
	}

	s.hub.register(client)
	observability.CoachConnections().Inc()

	go client.writer()
	client.reader()
}

func (s *coachService) History(ctx context.Context, query dto.CoachHistoryQuery) ([]dto.CoachMessageResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, err
	}

	before := time.Time{}
	if query.Before != nil {
		before = *query.Before
	}

	messages, err := s.repo.ListByRoom(ctx, query.RoomID, before, query.Limit)
	if err != nil {
		return nil, err
	}

	return dto.NewCoachMessageResponseSlice(messages), nil
}

func (s *coachService) processSend(ctx context.Context, client *coachClient, payload dto.CoachSendRequest) (dto.CoachMessageResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CoachMessageResponse{}, err
	}

	if err := s.authorise(client); err != nil {
		return dto.CoachMessageResponse{}, err
	}

	clean := strings.TrimSpace(s.sanitizer.Sanitize(payload.Content))
	if clean == "" {
		return dto.CoachMessageResponse{}, fmt.Errorf("message content empty after sanitization")
	}

	persona := payload.Persona
	if persona == "" {
		persona = models.PersonaEcoCoach
	}

	spanCtx, span := s.tracer.Start(ctx, "coach.exchange", trace.WithAttributes(
		attribute.String("coach.room_id", client.options.RoomID),
		attribute.String("coach.persona", persona),
	))
	defer span.End()

	question := models.CoachMessage{
		RoomID:   client.options.RoomID,
		SenderID: client.options.UserID,
		Role:     models.CoachRoleStudent,
		Persona:  persona,
		Content:  clean,
	}

	if err := s.repo.Save(spanCtx, &question); err != nil {
		span.RecordError(err)
		return dto.CoachMessageResponse{}, err
	}

	response := dto.NewCoachMessageResponse(question)
	s.broadcast(response)
	s.publish(spanCtx, response)
	observability.CoachMessages().WithLabelValues(persona).Inc()

	go s.generateReply(client.options, persona, clean)

	return response, nil
}

// generateReply asks the configured persona for an answer using the last few
// turns of the room as context. A failed generation degrades to an apology
// line so the student is never left waiting on a silent socket.
func (s *coachService) generateReply(opts CoachConnectionOptions, persona, question string) {
	if s.coach == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), coachReplyTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "coach.reply", trace.WithAttributes(
		attribute.String("coach.room_id", opts.RoomID),
		attribute.String("coach.persona", persona),
	))
	defer span.End()

	recent, err := s.repo.ListByRoom(ctx, opts.RoomID, time.Time{}, coachHistoryWindow)
	if err != nil {
		s.logger.Warn().Err(err).Str("room_id", opts.RoomID).Msg("failed to load coach history")
		recent = nil
	}

	history := make([]ai.ChatTurn, 0, len(recent))
	for _, message := range recent {
		role := "user"
		if message.Role == models.CoachRoleAssistant {
			role = "assistant"
		}
		history = append(history, ai.ChatTurn{Role: role, Content: message.Content})
	}

	answer, err := s.coach.Reply(ctx, persona, history, question)
	if err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("room_id", opts.RoomID).Msg("coach reply failed")
		answer = "Sorry, I could not come up with an answer just now. Please ask me again in a moment."
	}

	reply := models.CoachMessage{
		RoomID:   opts.RoomID,
		SenderID: persona,
		Role:     models.CoachRoleAssistant,
		Persona:  persona,
		Content:  answer,
	}

	if err := s.repo.Save(ctx, &reply); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Str("room_id", opts.RoomID).Msg("failed to persist coach reply")
		return
	}

	response := dto.NewCoachMessageResponse(reply)
	s.broadcast(response)
	s.publish(ctx, response)
	observability.CoachMessages().WithLabelValues(persona).Inc()
}

func (s *coachService) authorise(client *coachClient) error {
	role := strings.ToLower(client.options.Role)
	switch role {
	case models.RoleAdmin, models.RoleTeacher:
		return nil
	case models.RoleStudent:
		// Exact match only, so user "1" cannot enter "coach:12".
		if client.options.RoomID == "coach:"+client.options.UserID {
			return nil
		}
		return ErrCoachNotAuthorised
	default:
		return ErrCoachNotAuthorised
	}
}

func (s *coachService) broadcast(message dto.CoachMessageResponse) {
	s.hub.broadcast(message.RoomID, message)
}

func (s *coachService) publish(ctx context.Context, message dto.CoachMessageResponse) {
	event := coachEvent{
		Source:  s.nodeID,
		Message: message,
		SentAt:  time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal coach event")
		return
	}

	if s.redis != nil && s.redisStream != "" {
		if err := s.redis.Publish(ctx, s.redisStream, payload).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish coach event to redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			s.logger.Warn().Err(err).Msg("failed to publish coach event to nats")
		}
	}
}

func (s *coachService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisStream)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("coach redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *coachService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "ecoquest-coach", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats coach subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain coach nats subscription")
		}
	}()
}

func (s *coachService) handleEvent(data []byte) {
	var event coachEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid coach event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.broadcast(event.Message)
}

func (h *coachHub) register(client *coachClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.RoomID
	if room == "" {
		room = "coach:" + client.options.UserID
	}

	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*coachClient]struct{})
	}
	client.options.RoomID = room
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Str("room_id", room).Str("user_id", client.options.UserID).Msg("coach client connected")
}

func (h *coachHub) unregister(client *coachClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.RoomID
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Str("room_id", room).Str("user_id", client.options.UserID).Msg("coach client disconnected")
}

func (h *coachHub) broadcast(roomID string, message dto.CoachMessageResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.rooms[roomID]
	for client := range clients {
		select {
		case client.send <- message:
		default:
			h.log.Warn().Str("room_id", roomID).Str("user_id", client.options.UserID).Msg("dropping coach message for slow client")
		}
	}
}

func (c *coachClient) reader() {
	defer c.close()

	connCtx := c.baseCtx
	if connCtx == nil {
		connCtx = context.Background()
	}

	for {
		var payload dto.CoachSendRequest
		if err := c.conn.ReadJSON(&payload); err != nil {
			c.service.logger.Debug().Err(err).Msg("coach read loop ended")
			return
		}

		if _, err := c.service.processSend(connCtx, c, payload); err != nil {
			c.service.logger.Warn().Err(err).Msg("failed to process coach message")
			continue
		}
	}
}

func (c *coachClient) writer() {
	defer c.close()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.service.logger.Debug().Err(err).Msg("coach write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("coach ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *coachClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
