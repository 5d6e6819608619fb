// internal/stores/issues/issues.go

// Package issues owns post-order support issues. Submission is the one
// asynchronous action in the engine allowed to fail visibly: the store
// tracks an in-flight flag and the last submission error, and a cancelled
// context abandons the submission without recording an issue.
package issues

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/common/metrics"
	"delivery-engine/internal/events"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
	"delivery-engine/internal/stores"
)

// Domain is the persistence key suffix for this store.
const Domain = "issues"

var validate = validator.New()

// validIssueTransitions is the forward-only issue lifecycle.
var validIssueTransitions = map[models.IssueStatus][]models.IssueStatus{
	models.IssueReported:    {models.IssueUnderReview},
	models.IssueUnderReview: {models.IssueResolved, models.IssueRefunded},
}

func canTransition(from, to models.IssueStatus) bool {
	for _, next := range validIssueTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func isTerminal(status models.IssueStatus) bool {
	return status == models.IssueResolved || status == models.IssueRefunded
}

// SubmitInput is the user-entered report. Category must be one of the known
// issue categories and photos must be URLs.
type SubmitInput struct {
	OrderID         string               `validate:"required"`
	Category        models.IssueCategory `validate:"required,oneof=missing_items wrong_order food_quality late_delivery driver_issue payment_issue other"`
	Description     string               `validate:"required,max=2000"`
	PhotoURLs       []string             `validate:"omitempty,max=5,dive,url"`
	AffectedItemIDs []string             `validate:"omitempty,dive,required"`
}

// State is the persisted shape of the issue store. IsSubmitting and
// SubmissionError describe the submission currently in flight, if any.
type State struct {
	Issues          []models.Issue `json:"issues"`
	IsSubmitting    bool           `json:"isSubmitting"`
	SubmissionError string         `json:"submissionError,omitempty"`
}

// Store is the issue state container.
type Store struct {
	mu      sync.Mutex
	state   State
	kv      storage.KV
	gateway Gateway
	sink    events.Sink
	logger  logger.Logger
}

// NewStore creates an issue store submitting through the given gateway.
func NewStore(kv storage.KV, gateway Gateway, sink events.Sink, log logger.Logger) *Store {
	return &Store{
		kv:      kv,
		gateway: gateway,
		sink:    sink,
		logger: log.WithFields(map[string]interface{}{
			"store": Domain,
		}),
	}
}

func cloneIssue(issue models.Issue) models.Issue {
	out := issue
	if len(issue.PhotoURLs) > 0 {
		out.PhotoURLs = make([]string, len(issue.PhotoURLs))
		copy(out.PhotoURLs, issue.PhotoURLs)
	}
	if len(issue.AffectedItemIDs) > 0 {
		out.AffectedItemIDs = make([]string, len(issue.AffectedItemIDs))
		copy(out.AffectedItemIDs, issue.AffectedItemIDs)
	}
	if issue.ResolvedAt != nil {
		at := *issue.ResolvedAt
		out.ResolvedAt = &at
	}
	return out
}

func cloneState(state State) State {
	next := State{
		IsSubmitting:    state.IsSubmitting,
		SubmissionError: state.SubmissionError,
	}
	if len(state.Issues) > 0 {
		next.Issues = make([]models.Issue, len(state.Issues))
		for i, issue := range state.Issues {
			next.Issues[i] = cloneIssue(issue)
		}
	}
	return next
}

func (s *Store) apply(action string, next State) {
	s.state = next
	metrics.StoreMutations.WithLabelValues(Domain, action).Inc()
	s.logger.Debug("Issue state changed", map[string]interface{}{
		"action":        action,
		"issues":        len(next.Issues),
		"is_submitting": next.IsSubmitting,
	})
}

func (s *Store) publish(ctx context.Context, event events.Event) {
	if err := s.sink.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish issue event", map[string]interface{}{
			"event_type": event.Type,
			"event_key":  event.Key,
		})
	}
}

// ==========================
// Submission
// ==========================

// Submit validates the report, sends it through the support gateway and
// records the issue as reported. While the gateway call is in flight the
// store answers IsSubmitting; a gateway failure or a cancelled context leaves
// the issue list untouched and surfaces through SubmissionError. Only one
// submission may be in flight at a time.
func (s *Store) Submit(ctx context.Context, input SubmitInput) (models.Issue, error) {
	if err := validate.Struct(input); err != nil {
		metrics.IssueSubmissions.WithLabelValues("rejected").Inc()
		return models.Issue{}, stderrors.NewIssueValidationFailedError(err.Error())
	}

	s.mu.Lock()
	if s.state.IsSubmitting {
		s.mu.Unlock()
		return models.Issue{}, stderrors.NewBusinessRuleError(
			"issue submission already in progress",
			"wait for the current submission to finish before reporting again",
		)
	}
	begin := cloneState(s.state)
	begin.IsSubmitting = true
	begin.SubmissionError = ""
	s.apply("submit_begin", begin)
	s.mu.Unlock()

	now := time.Now().UTC()
	issue := models.Issue{
		ID:              uuid.New().String(),
		OrderID:         input.OrderID,
		Category:        input.Category,
		Description:     input.Description,
		PhotoURLs:       input.PhotoURLs,
		AffectedItemIDs: input.AffectedItemIDs,
		Status:          models.IssueReported,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	gatewayErr := s.gateway.Submit(ctx, issue)

	s.mu.Lock()
	next := cloneState(s.state)
	next.IsSubmitting = false

	if gatewayErr != nil {
		subErr := classifySubmissionError(gatewayErr)
		next.SubmissionError = subErr.Error()
		s.apply("submit_failed", next)
		s.mu.Unlock()

		outcome := "failed"
		if stderrors.CodeOf(subErr) == stderrors.ErrCodeIssueSubmissionCancelled {
			outcome = "cancelled"
		}
		metrics.IssueSubmissions.WithLabelValues(outcome).Inc()
		s.logger.WithError(gatewayErr).Warn("Issue submission did not complete", map[string]interface{}{
			"order_id": input.OrderID,
			"outcome":  outcome,
		})
		return models.Issue{}, subErr
	}

	next.SubmissionError = ""
	next.Issues = append(next.Issues, issue)
	s.apply("submit_succeeded", next)
	s.mu.Unlock()

	metrics.IssueSubmissions.WithLabelValues("submitted").Inc()
	s.logger.Info("Issue submitted", map[string]interface{}{
		"issue_id": issue.ID,
		"order_id": issue.OrderID,
		"category": string(issue.Category),
	})

	s.publish(ctx, events.New(events.TypeIssueSubmitted, issue.ID, map[string]interface{}{
		"issueId":  issue.ID,
		"orderId":  issue.OrderID,
		"category": string(issue.Category),
	}))

	return cloneIssue(issue), nil
}

// classifySubmissionError separates a user-initiated abort from a gateway
// failure.
func classifySubmissionError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return stderrors.NewIssueSubmissionCancelledError()
	}
	return stderrors.NewIssueSubmissionFailedError(err)
}

// ==========================
// Lifecycle
// ==========================

// UpdateStatus moves an issue forward through review. Entering a terminal
// status stamps ResolvedAt; no other transition touches it.
func (s *Store) UpdateStatus(ctx context.Context, issueID string, to models.IssueStatus) (models.Issue, error) {
	s.mu.Lock()
	idx := -1
	for i := range s.state.Issues {
		if s.state.Issues[i].ID == issueID {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return models.Issue{}, stderrors.NewRecordNotFoundError("issue", issueID)
	}

	from := s.state.Issues[idx].Status
	if !canTransition(from, to) {
		s.mu.Unlock()
		return models.Issue{}, stderrors.NewInvalidIssueTransitionError(string(from), string(to))
	}

	now := time.Now().UTC()
	next := cloneState(s.state)
	issue := &next.Issues[idx]
	issue.Status = to
	issue.UpdatedAt = now
	if isTerminal(to) {
		issue.ResolvedAt = &now
	}
	updated := cloneIssue(*issue)
	s.apply("update_status", next)
	s.mu.Unlock()

	s.publish(ctx, events.New(events.TypeIssueStatusChanged, issueID, map[string]interface{}{
		"issueId": issueID,
		"from":    string(from),
		"to":      string(to),
	}))

	return updated, nil
}

// ==========================
// Reads
// ==========================

// Issues returns copies of every recorded issue, oldest first.
func (s *Store) Issues() []models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state).Issues
}

// ForOrder returns copies of the issues reported against one order.
func (s *Store) ForOrder(orderID string) []models.Issue {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Issue
	for _, issue := range s.state.Issues {
		if issue.OrderID == orderID {
			out = append(out, cloneIssue(issue))
		}
	}
	return out
}

// Get returns a copy of one issue.
func (s *Store) Get(issueID string) (models.Issue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.state.Issues {
		if s.state.Issues[i].ID == issueID {
			return cloneIssue(s.state.Issues[i]), nil
		}
	}
	return models.Issue{}, stderrors.NewRecordNotFoundError("issue", issueID)
}

// IsSubmitting reports whether a submission is in flight.
func (s *Store) IsSubmitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.IsSubmitting
}

// SubmissionError returns the message of the last failed submission, or ""
// after a success.
func (s *Store) SubmissionError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.SubmissionError
}

// ==========================
// Persistence
// ==========================

// Save writes the current state to device storage. The in-memory state is
// already committed when Save runs; a failure is reported but changes nothing.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	snapshot := cloneState(s.state)
	s.mu.Unlock()

	return stores.Persist(ctx, s.kv, s.logger, Domain, snapshot)
}

// Load replaces the in-memory state with the persisted one. In-flight
// submission markers are transient and reset to idle on load.
func (s *Store) Load(ctx context.Context) error {
	var stored State
	found, err := storage.LoadJSON(ctx, s.kv, storage.StoreKey(Domain), &stored)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	stored.IsSubmitting = false
	stored.SubmissionError = ""

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = cloneState(stored)
	return nil
}
