package service

import (
	"context"
	"strings"
	"time"

	"ruleflow/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type clientFinder interface {
	FindByName(ctx context.Context, name string) ([]*models.Client, error)
}

type ruleLister interface {
	ListAllRules(ctx context.Context, clientID int64, processType models.ProcessType, includeEmbeddings bool) ([]*models.Rule, error)
}

type fieldExtractor interface {
	ExtractFields(ctx context.Context, subject, content string) ([]models.ExtractedField, error)
}

type reconciler interface {
	Reconcile(ctx context.Context, response models.FinalResponse) (models.FinalResponse, error)
}

type committer interface {
	Commit(ctx context.Context, response models.FinalResponse, correlationID uuid.UUID) (models.FinalResponse, error)
}

type processLogWriter interface {
	Save(ctx context.Context, log *models.ProcessLog) error
}

// PipelineService sequences one notification through the strict
// forward-only state machine: subject validation, client verification,
// rule retrieval, field extraction, rule application, reconciliation,
// persistence. Every gate failure is terminal for the request.
type PipelineService struct {
	clients     clientFinder
	rules       ruleLister
	extractor   fieldExtractor
	engine      *RuleEngine
	reconciler  reconciler
	ledger      committer
	processLogs processLogWriter
	logger      *zap.Logger
}

func NewPipelineService(
	clients clientFinder,
	rules ruleLister,
	extractor fieldExtractor,
	engine *RuleEngine,
	reconcileService reconciler,
	ledger committer,
	processLogs processLogWriter,
	logger *zap.Logger,
) *PipelineService {
	return &PipelineService{
		clients:     clients,
		rules:       rules,
		extractor:   extractor,
		engine:      engine,
		reconciler:  reconcileService,
		ledger:      ledger,
		processLogs: processLogs,
		logger:      logger,
	}
}

// ValidateSubject derives the processing mode from the subject line.
func (s *PipelineService) ValidateSubject(subject string) (models.ProcessType, error) {
	lowered := strings.ToLower(strings.TrimSpace(subject))

	if strings.Contains(lowered, "placement") {
		return models.ProcessTypePlacement, nil
	}
	// TODO: the subject was lowercased above, so this mixed-case literal
	// never matches and transaction subjects fall through to the error.
	// Confirm the intended matching with the rule authors before fixing.
	if strings.Contains(lowered, "Transaction") {
		return models.ProcessTypeTransaction, nil
	}

	return 0, &PipelineError{Stage: StageSubjectValidation, Err: ErrProcessTypeNotIdentified}
}

// VerifyClient resolves the sending client by case-insensitive substring
// match; on multiple matches the lowest id wins and every match is
// returned as a candidate.
func (s *PipelineService) VerifyClient(ctx context.Context, name string) (*models.Client, []*models.Client, error) {
	candidates, err := s.clients.FindByName(ctx, name)
	if err != nil {
		return nil, nil, &PipelineError{Stage: StageClientVerification, Err: &RetrievalError{Err: err}}
	}
	if len(candidates) == 0 {
		return nil, nil, &PipelineError{Stage: StageClientVerification, Err: ErrClientNotFound}
	}

	// FindByName orders ascending by id, so the first row is the winner.
	return candidates[0], candidates, nil
}

// ProcessNotification runs one request end to end and returns the final
// annotated response. The correlation id tags all ledger writes for this
// request; callers retry with the same id.
func (s *PipelineService) ProcessNotification(ctx context.Context, subject, content string, correlationID uuid.UUID) (models.FinalResponse, error) {
	var response models.FinalResponse

	processType, err := s.ValidateSubject(subject)
	if err != nil {
		s.logOutcome(ctx, correlationID, subject, 0, 0, "failed", err.Error())
		return response, err
	}

	client, candidates, err := s.VerifyClient(ctx, firstDataLine(content))
	if err != nil {
		s.logOutcome(ctx, correlationID, subject, 0, int(processType), "failed", err.Error())
		return response, err
	}

	s.logger.Info("Client verified",
		zap.String("correlation_id", correlationID.String()),
		zap.Int64("client_id", client.ID),
		zap.Int("candidates", len(candidates)),
	)

	response = models.FinalResponse{
		ClientID:    client.ID,
		ClientName:  client.Name,
		ProcessType: processType,
	}

	// An empty rule set is not an error; fields simply receive no
	// audit entries.
	rules, err := s.rules.ListAllRules(ctx, client.ID, processType, false)
	if err != nil {
		err = &PipelineError{Stage: StageRuleRetrieval, Err: err}
		s.logOutcome(ctx, correlationID, subject, client.ID, int(processType), "failed", err.Error())
		return response, err
	}

	fields, err := s.extractor.ExtractFields(ctx, subject, content)
	if err != nil {
		err = &PipelineError{Stage: StageFieldExtraction, Err: err}
		s.logOutcome(ctx, correlationID, subject, client.ID, int(processType), "failed", err.Error())
		return response, err
	}

	response.ExtractedFields = make([]models.ExtractedField, 0, len(fields))
	for _, field := range fields {
		response.ExtractedFields = append(response.ExtractedFields, s.engine.ApplyRules(field, rules, client.Name))
	}

	response, err = s.reconciler.Reconcile(ctx, response)
	if err != nil {
		err = &PipelineError{Stage: StageReconciliation, Err: err}
		s.logOutcome(ctx, correlationID, subject, client.ID, int(processType), "failed", err.Error())
		return response, err
	}

	response, err = s.ledger.Commit(ctx, response, correlationID)
	if err != nil {
		err = &PipelineError{Stage: StagePersistence, Err: err}
		s.logOutcome(ctx, correlationID, subject, client.ID, int(processType), "failed", err.Error())
		return response, err
	}

	s.logOutcome(ctx, correlationID, subject, client.ID, int(processType), "done", "")

	s.logger.Info("Notification processed",
		zap.String("correlation_id", correlationID.String()),
		zap.Int64("client_id", client.ID),
		zap.Int("fields", len(response.ExtractedFields)),
	)

	return response, nil
}

// logOutcome records the run in the process log. Best effort: a logging
// failure never changes the request outcome.
func (s *PipelineService) logOutcome(ctx context.Context, correlationID uuid.UUID, subject string, clientID int64, processType int, status, message string) {
	if s.processLogs == nil {
		return
	}

	entry := &models.ProcessLog{
		CorrelationID: correlationID,
		Subject:       subject,
		ClientID:      clientID,
		ProcessType:   processType,
		Status:        status,
		Message:       message,
		CreatedAt:     time.Now(),
	}

	if err := s.processLogs.Save(ctx, entry); err != nil {
		s.logger.Warn("Failed to save process log", zap.Error(err))
	}
}

// firstDataLine returns the first non-empty line of the notification
// body; that line carries the client name.
func firstDataLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			return line
		}
	}
	return ""
}
