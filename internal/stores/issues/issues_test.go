// internal/stores/issues/issues_test.go
package issues

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"delivery-engine/internal/common/config"
	stderrors "delivery-engine/internal/common/errors"
	"delivery-engine/internal/common/logger"
	"delivery-engine/internal/events"
	"delivery-engine/internal/models"
	"delivery-engine/internal/storage"
)

// ==========================
// Test Helper Functions
// ==========================

type captureSink struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *captureSink) Publish(ctx context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error { return nil }

func (c *captureSink) byType(eventType string) []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []events.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// blockingGateway holds every submission until release is closed.
type blockingGateway struct {
	release chan struct{}
}

func (g *blockingGateway) Submit(ctx context.Context, issue models.Issue) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-g.release:
		return nil
	}
}

// instantGateway submits immediately and never fails.
func instantGateway() Gateway {
	return NewSimulatedGateway(config.GatewayConfig{})
}

func createTestStore(t *testing.T, gateway Gateway) (*Store, *captureSink) {
	t.Helper()
	sink := &captureSink{}
	return NewStore(storage.NewMemory(), gateway, sink, logger.NewTestLogger(t)), sink
}

func validInput() SubmitInput {
	return SubmitInput{
		OrderID:     "o-100",
		Category:    models.IssueMissingItems,
		Description: "The spring rolls were missing from the bag",
	}
}

// ==========================
// Submission Tests
// ==========================

func TestStore_Submit(t *testing.T) {
	store, sink := createTestStore(t, instantGateway())

	input := validInput()
	input.PhotoURLs = []string{"https://cdn.example.com/photos/p1.jpg"}
	input.AffectedItemIDs = []string{"m-102"}

	issue, err := store.Submit(context.Background(), input)
	require.NoError(t, err)

	assert.NotEmpty(t, issue.ID)
	assert.Equal(t, "o-100", issue.OrderID)
	assert.Equal(t, models.IssueReported, issue.Status)
	assert.Nil(t, issue.ResolvedAt)

	assert.False(t, store.IsSubmitting())
	assert.Empty(t, store.SubmissionError())
	require.Len(t, store.Issues(), 1)

	submitted := sink.byType(events.TypeIssueSubmitted)
	require.Len(t, submitted, 1)
	assert.Equal(t, issue.ID, submitted[0].Key)
}

func TestStore_Submit_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(input *SubmitInput)
	}{
		{
			name:   "missing order id",
			mutate: func(input *SubmitInput) { input.OrderID = "" },
		},
		{
			name:   "unknown category",
			mutate: func(input *SubmitInput) { input.Category = "weather" },
		},
		{
			name:   "empty description",
			mutate: func(input *SubmitInput) { input.Description = "" },
		},
		{
			name:   "photo is not a url",
			mutate: func(input *SubmitInput) { input.PhotoURLs = []string{"not a url"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := createTestStore(t, instantGateway())
			input := validInput()
			tt.mutate(&input)

			_, err := store.Submit(context.Background(), input)

			require.Error(t, err)
			assert.Equal(t, stderrors.ErrCodeIssueValidationFailed, stderrors.CodeOf(err))
			assert.Empty(t, store.Issues())
		})
	}
}

func TestStore_Submit_GatewayFailure(t *testing.T) {
	store, _ := createTestStore(t, NewSimulatedGateway(config.GatewayConfig{FailureRate: 1.0}))

	_, err := store.Submit(context.Background(), validInput())

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeIssueSubmissionFailed, stderrors.CodeOf(err))
	assert.True(t, stderrors.IsRetryable(err))

	assert.Empty(t, store.Issues(), "failed submission records nothing")
	assert.False(t, store.IsSubmitting())
	assert.NotEmpty(t, store.SubmissionError())
}

func TestStore_Submit_CancelledContext(t *testing.T) {
	store, sink := createTestStore(t, instantGateway())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Submit(ctx, validInput())

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeIssueSubmissionCancelled, stderrors.CodeOf(err))
	assert.Empty(t, store.Issues(), "an abandoned submission records nothing")
	assert.False(t, store.IsSubmitting())
	assert.Empty(t, sink.byType(events.TypeIssueSubmitted))
}

func TestStore_Submit_TimeoutDuringGatewayWait(t *testing.T) {
	gateway := NewSimulatedGateway(config.GatewayConfig{MinLatencyMs: 500, MaxLatencyMs: 500})
	store, _ := createTestStore(t, gateway)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := store.Submit(ctx, validInput())

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeIssueSubmissionCancelled, stderrors.CodeOf(err))
	assert.NotEmpty(t, store.SubmissionError())
}

func TestStore_Submit_RejectsConcurrentSubmission(t *testing.T) {
	gateway := &blockingGateway{release: make(chan struct{})}
	store, _ := createTestStore(t, gateway)

	done := make(chan error, 1)
	go func() {
		_, err := store.Submit(context.Background(), validInput())
		done <- err
	}()

	require.Eventually(t, store.IsSubmitting, 2*time.Second, 5*time.Millisecond)

	_, err := store.Submit(context.Background(), validInput())
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrorCode("BUSINESS_RULE_VIOLATION"), stderrors.CodeOf(err))

	close(gateway.release)
	require.NoError(t, <-done)
	require.Len(t, store.Issues(), 1, "only the first submission lands")
}

// ==========================
// Lifecycle Tests
// ==========================

func submitTestIssue(t *testing.T, store *Store) models.Issue {
	t.Helper()
	issue, err := store.Submit(context.Background(), validInput())
	require.NoError(t, err)
	return issue
}

func TestStore_UpdateStatus_ResolutionPath(t *testing.T) {
	store, sink := createTestStore(t, instantGateway())
	issue := submitTestIssue(t, store)

	reviewed, err := store.UpdateStatus(context.Background(), issue.ID, models.IssueUnderReview)
	require.NoError(t, err)
	assert.Equal(t, models.IssueUnderReview, reviewed.Status)
	assert.Nil(t, reviewed.ResolvedAt, "review is not terminal")

	resolved, err := store.UpdateStatus(context.Background(), issue.ID, models.IssueResolved)
	require.NoError(t, err)
	assert.Equal(t, models.IssueResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt, "entering a terminal status stamps ResolvedAt")
	assert.WithinDuration(t, time.Now().UTC(), *resolved.ResolvedAt, 5*time.Second)

	assert.Len(t, sink.byType(events.TypeIssueStatusChanged), 2)
}

func TestStore_UpdateStatus_RefundPath(t *testing.T) {
	store, _ := createTestStore(t, instantGateway())
	issue := submitTestIssue(t, store)

	_, err := store.UpdateStatus(context.Background(), issue.ID, models.IssueUnderReview)
	require.NoError(t, err)
	refunded, err := store.UpdateStatus(context.Background(), issue.ID, models.IssueRefunded)
	require.NoError(t, err)

	assert.Equal(t, models.IssueRefunded, refunded.Status)
	assert.NotNil(t, refunded.ResolvedAt)
}

func TestStore_UpdateStatus_RejectsInvalidTransition(t *testing.T) {
	store, _ := createTestStore(t, instantGateway())
	issue := submitTestIssue(t, store)

	// Review cannot be skipped.
	_, err := store.UpdateStatus(context.Background(), issue.ID, models.IssueResolved)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidIssueTransition, stderrors.CodeOf(err))

	// Terminal statuses never move again.
	_, err = store.UpdateStatus(context.Background(), issue.ID, models.IssueUnderReview)
	require.NoError(t, err)
	_, err = store.UpdateStatus(context.Background(), issue.ID, models.IssueResolved)
	require.NoError(t, err)
	_, err = store.UpdateStatus(context.Background(), issue.ID, models.IssueRefunded)
	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeInvalidIssueTransition, stderrors.CodeOf(err))
}

func TestStore_UpdateStatus_UnknownIssue(t *testing.T) {
	store, _ := createTestStore(t, instantGateway())

	_, err := store.UpdateStatus(context.Background(), "i-missing", models.IssueUnderReview)

	require.Error(t, err)
	assert.Equal(t, stderrors.ErrCodeRecordNotFound, stderrors.CodeOf(err))
}

// ==========================
// Read Tests
// ==========================

func TestStore_ForOrder(t *testing.T) {
	store, _ := createTestStore(t, instantGateway())

	first := submitTestIssue(t, store)
	other := validInput()
	other.OrderID = "o-200"
	_, err := store.Submit(context.Background(), other)
	require.NoError(t, err)

	matches := store.ForOrder("o-100")
	require.Len(t, matches, 1)
	assert.Equal(t, first.ID, matches[0].ID)
	assert.Empty(t, store.ForOrder("o-999"))
}

// ==========================
// Persistence Tests
// ==========================

func TestStore_SaveAndLoad(t *testing.T) {
	kv := storage.NewMemory()
	store := NewStore(kv, instantGateway(), events.NopSink{}, logger.NewNoOpLogger())

	issue, err := store.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background()))

	restored := NewStore(kv, instantGateway(), events.NopSink{}, logger.NewNoOpLogger())
	require.NoError(t, restored.Load(context.Background()))

	loaded, err := restored.Get(issue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IssueReported, loaded.Status)
	assert.Equal(t, issue.Description, loaded.Description)
}

func TestStore_Load_ResetsInFlightMarkers(t *testing.T) {
	kv := storage.NewMemory()
	gateway := &blockingGateway{release: make(chan struct{})}
	store := NewStore(kv, gateway, events.NopSink{}, logger.NewNoOpLogger())

	done := make(chan error, 1)
	go func() {
		_, err := store.Submit(context.Background(), validInput())
		done <- err
	}()
	require.Eventually(t, store.IsSubmitting, 2*time.Second, 5*time.Millisecond)

	// Snapshot while the submission is in flight, as a crash mid-submission
	// would.
	require.NoError(t, store.Save(context.Background()))
	close(gateway.release)
	require.NoError(t, <-done)

	restored := NewStore(kv, gateway, events.NopSink{}, logger.NewNoOpLogger())
	require.NoError(t, restored.Load(context.Background()))

	assert.False(t, restored.IsSubmitting(), "in-flight markers do not survive a restart")
	assert.Empty(t, restored.SubmissionError())
}
