package chat

import (
	"context"
	"strings"
	"time"

	"sparkchat-api/internal/application/quota"
	"sparkchat-api/internal/domain/entity"
	"sparkchat-api/internal/domain/repository"
	"sparkchat-api/internal/domain/service"
	apperrors "sparkchat-api/pkg/errors"
	"sparkchat-api/pkg/logger"
	"sparkchat-api/pkg/metrics"
)

// SendMessageInput 发送消息的入参
type SendMessageInput struct {
	UserID         string
	Plan           entity.PlanTier
	ConversationID string
	Message        string
	PromptKey      string
}

// SendMessageOutput 发送消息的结果
type SendMessageOutput struct {
	UserMessage      *entity.Message    `json:"user_message"`
	AssistantMessage *entity.Message    `json:"assistant_message"`
	TokensUsed       int                `json:"tokens_used"`
	Model            string             `json:"model"`
	Title            string             `json:"title"`
	Quota            *quota.QuotaStatus `json:"quota"`
}

// Service 会话应用服务，编排配额检查、补全调用、消息落库与用量记账
type Service struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	txManager        repository.Transactor
	completion       service.CompletionClient
	contextBuilder   *ContextBuilder
	titler           *Titler
	checker          *quota.QuotaChecker
	ledger           *quota.UsageLedger
	model            string
	temperature      float64
	now              func() time.Time
}

func NewService(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	txManager repository.Transactor,
	completion service.CompletionClient,
	contextBuilder *ContextBuilder,
	titler *Titler,
	checker *quota.QuotaChecker,
	ledger *quota.UsageLedger,
	model string,
	temperature float64,
) *Service {
	return &Service{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		txManager:        txManager,
		completion:       completion,
		contextBuilder:   contextBuilder,
		titler:           titler,
		checker:          checker,
		ledger:           ledger,
		model:            model,
		temperature:      temperature,
		now:              time.Now,
	}
}

// SendMessage 处理一轮对话：
// 校验归属与配额，调用补全接口，成功后落库两条消息并记账，
// 首轮对话额外生成会话标题。补全失败时不产生任何持久化副作用。
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*SendMessageOutput, error) {
	start := s.now()
	log := logger.FromContext(ctx)

	content := strings.TrimSpace(in.Message)
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	conversation, err := s.ownedConversation(ctx, in.UserID, in.ConversationID)
	if err != nil {
		return nil, err
	}

	limits, err := entity.LimitsForPlan(in.Plan)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknownPlan, "unknown plan tier")
	}

	status, err := s.checker.Check(ctx, in.UserID, in.Plan)
	if err != nil {
		return nil, err
	}
	if !status.Allowed {
		metrics.ChatMessagesTotal.WithLabelValues(string(in.Plan), "quota_exceeded").Inc()
		return nil, apperrors.ErrQuotaExceeded
	}

	convCtx, err := s.contextBuilder.Build(ctx, conversation.ID, SystemPromptFor(in.PromptKey), content)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load conversation context")
	}

	resp, err := s.completion.ChatCompletion(ctx, service.CompletionRequest{
		Model:       s.model,
		Messages:    convCtx.Messages,
		Temperature: s.temperature,
		MaxTokens:   limits.MaxTokensPerRequest,
	})
	if err != nil {
		metrics.ChatMessagesTotal.WithLabelValues(string(in.Plan), "llm_failed").Inc()
		log.Error("completion call failed", "conversation_id", conversation.ID, "error", err)
		return nil, apperrors.ErrLLMCallFailed
	}

	reply := resp.FirstContent()
	if reply == "" {
		reply = "No response generated"
	}

	userMsg := entity.NewMessage(conversation.ID, entity.RoleUser, content, 0)
	assistantMsg := entity.NewMessage(conversation.ID, entity.RoleAssistant, reply, resp.Usage.TotalTokens)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.messageRepo.Create(txCtx, userMsg); err != nil {
			return err
		}
		return s.messageRepo.Create(txCtx, assistantMsg)
	})
	if err != nil {
		metrics.ChatMessagesTotal.WithLabelValues(string(in.Plan), "persist_failed").Inc()
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to persist messages")
	}

	// 记账失败只降级为日志与指标，不影响本轮结果
	s.ledger.Record(ctx, quota.RecordInput{
		UserID:      in.UserID,
		Tokens:      resp.Usage.TotalTokens,
		Model:       resp.Model,
		RequestType: entity.RequestTypeChat,
	})

	title := conversation.Title
	if convCtx.FirstExchange() {
		title = s.titler.GenerateTitle(ctx, content)
		if err := s.conversationRepo.UpdateTitle(ctx, conversation.ID, title); err != nil {
			log.Warn("failed to update conversation title", "conversation_id", conversation.ID, "error", err)
			title = conversation.Title
		}
	} else if err := s.conversationRepo.Touch(ctx, conversation.ID); err != nil {
		log.Warn("failed to touch conversation", "conversation_id", conversation.ID, "error", err)
	}

	model := resp.Model
	if model == "" {
		model = s.model
	}

	// token 用量指标由补全客户端统一累加，这里只记业务维度
	metrics.ChatMessagesTotal.WithLabelValues(string(in.Plan), "ok").Inc()
	metrics.ChatSendDuration.WithLabelValues(string(in.Plan)).Observe(s.now().Sub(start).Seconds())

	return &SendMessageOutput{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		TokensUsed:       resp.Usage.TotalTokens,
		Model:            model,
		Title:            title,
		Quota:            status,
	}, nil
}

// CreateConversation 创建会话，按套餐限制当日可创建的会话数。
// systemPrompt 非空时作为 system 消息随会话一并落库，覆盖该会话的默认提示词。
func (s *Service) CreateConversation(ctx context.Context, userID string, plan entity.PlanTier, title, systemPrompt string) (*entity.Conversation, error) {
	limits, err := entity.LimitsForPlan(plan)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUnknownPlan, "unknown plan tier")
	}

	created, err := s.conversationRepo.CountByUserSince(ctx, userID, quota.DayStart(s.now()))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to count conversations")
	}
	if created >= limits.ConversationsPerDay {
		return nil, apperrors.New(apperrors.CodeQuotaExceeded, "daily conversation limit reached, please upgrade your plan")
	}

	conversation := entity.NewConversation(userID, title, s.model)
	systemPrompt = strings.TrimSpace(systemPrompt)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.conversationRepo.Create(txCtx, conversation); err != nil {
			return err
		}
		if systemPrompt == "" {
			return nil
		}
		return s.messageRepo.Create(txCtx, entity.NewMessage(conversation.ID, entity.RoleSystem, systemPrompt, 0))
	})
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to create conversation")
	}

	metrics.ActiveConversations.Inc()
	return conversation, nil
}

// GetConversation 返回会话及其全部消息
func (s *Service) GetConversation(ctx context.Context, userID, conversationID string) (*entity.Conversation, []*entity.Message, error) {
	conversation, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return nil, nil, err
	}

	messages, err := s.messageRepo.ListByConversation(ctx, conversation.ID)
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list messages")
	}
	return conversation, messages, nil
}

// ListConversations 分页返回用户会话，按最近活跃排序
func (s *Service) ListConversations(ctx context.Context, userID string, pagination repository.Pagination) (*repository.PagedResult[*entity.Conversation], error) {
	result, err := s.conversationRepo.ListByUser(ctx, userID, pagination)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to list conversations")
	}
	return result, nil
}

// DeleteConversation 删除会话及其全部消息
func (s *Service) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	conversation, err := s.ownedConversation(ctx, userID, conversationID)
	if err != nil {
		return err
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.messageRepo.DeleteByConversation(txCtx, conversation.ID); err != nil {
			return err
		}
		return s.conversationRepo.Delete(txCtx, conversation.ID)
	})
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to delete conversation")
	}

	metrics.ActiveConversations.Dec()
	return nil
}

// ownedConversation 加载会话并校验归属。
// 不存在与不属于当前用户统一返回 not found，避免暴露他人会话的存在性。
func (s *Service) ownedConversation(ctx context.Context, userID, conversationID string) (*entity.Conversation, error) {
	conversation, err := s.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "failed to load conversation")
	}
	if conversation == nil || conversation.UserID != userID {
		return nil, apperrors.ErrConversationNotFound
	}
	return conversation, nil
}
