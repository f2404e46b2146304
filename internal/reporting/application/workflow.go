package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"salesflow/internal/audit"
	"salesflow/internal/auth"
	"salesflow/internal/observability/metrics"
	reporting "salesflow/internal/reporting/domain"
)

const (
	// DirectionForward labels a send/approve transition.
	DirectionForward = "forward"
	// DirectionBack labels a return transition.
	DirectionBack = "back"
)

const (
	msgNoSelection    = "No actionable records selected; nothing was sent."
	msgForwardDone    = "Selected records were sent to the next stage."
	msgBackDone       = "Selected records were returned to the previous stage."
	msgDeleteDone     = "Record deleted."
	msgGenericFailure = "The operation could not be completed. Please retry."
)

// Notifier is told when a forward transition finalizes records.
type Notifier interface {
	NotifyFinalized(ctx context.Context, companyID int64, recordIDs []int64) error
}

// TransitionOutcome is the result surfaced to the caller after a bulk
// transition attempt. Projection carries the refreshed grid; callers must
// not patch rows locally.
type TransitionOutcome struct {
	NoOp       bool                  `json:"noop,omitempty"`
	Rejected   bool                  `json:"rejected,omitempty"`
	Message    string                `json:"message"`
	Result     reporting.StoreResult `json:"result"`
	Projection Projection            `json:"projection"`
}

// WorkflowService drives bulk stage transitions and the grid pipeline.
type WorkflowService struct {
	store        reporting.ReportStore
	audit        audit.Logger
	notifier     Notifier
	logger       *log.Logger
	maxSelection int
}

// WorkflowOption configures the service.
type WorkflowOption func(*WorkflowService)

// WithAuditLogger wires an audit logger.
func WithAuditLogger(logger audit.Logger) WorkflowOption {
	return func(s *WorkflowService) { s.audit = logger }
}

// WithNotifier wires a finalization notifier.
func WithNotifier(notifier Notifier) WorkflowOption {
	return func(s *WorkflowService) { s.notifier = notifier }
}

// WithLogger wires a logger.
func WithLogger(logger *log.Logger) WorkflowOption {
	return func(s *WorkflowService) { s.logger = logger }
}

// WithMaxSelection caps how many records one transition may carry.
func WithMaxSelection(max int) WorkflowOption {
	return func(s *WorkflowService) { s.maxSelection = max }
}

// NewWorkflowService constructs a service.
func NewWorkflowService(store reporting.ReportStore, opts ...WorkflowOption) (*WorkflowService, error) {
	if store == nil {
		return nil, errors.New("workflow service: nil store")
	}
	service := &WorkflowService{store: store}
	for _, opt := range opts {
		opt(service)
	}
	return service, nil
}

// Grid fetches the raw row set for a filter and projects it with the
// caller's role.
func (s *WorkflowService) Grid(ctx context.Context, filter reporting.RowFilter) (Projection, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveGridFetch(result, time.Since(start))
	}()

	if filter.CompanyID == 0 {
		result = metrics.ResultError
		return Projection{}, reporting.ErrEmptyCompany
	}
	raw, err := s.store.FetchRows(ctx, filter)
	if err != nil {
		result = metrics.ResultError
		return Projection{}, err
	}
	return Project(raw, auth.RoleFromContext(ctx)), nil
}

// SendForward advances the selected records one stage and refreshes the
// grid. An empty selection is an informational no-op with no remote call.
func (s *WorkflowService) SendForward(ctx context.Context, filter reporting.RowFilter, ids []int64) (*TransitionOutcome, error) {
	return s.transition(ctx, DirectionForward, filter, "", ids)
}

// SendBack returns the selected records one stage, carrying the note, and
// refreshes the grid. An empty selection is an informational no-op.
func (s *WorkflowService) SendBack(ctx context.Context, filter reporting.RowFilter, notes string, ids []int64) (*TransitionOutcome, error) {
	return s.transition(ctx, DirectionBack, filter, notes, ids)
}

func (s *WorkflowService) transition(ctx context.Context, direction string, filter reporting.RowFilter, notes string, ids []int64) (*TransitionOutcome, error) {
	start := time.Now()
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveTransition(direction, result, time.Since(start))
	}()

	if filter.CompanyID == 0 {
		result = metrics.ResultError
		return nil, reporting.ErrEmptyCompany
	}
	if len(ids) == 0 {
		return &TransitionOutcome{NoOp: true, Message: msgNoSelection}, nil
	}
	if s.maxSelection > 0 && len(ids) > s.maxSelection {
		result = metrics.ResultError
		return nil, fmt.Errorf("selection of %d records exceeds the limit of %d", len(ids), s.maxSelection)
	}

	var (
		storeResult reporting.StoreResult
		err         error
	)
	if direction == DirectionForward {
		storeResult, err = s.store.SendForward(ctx, filter.CompanyID, ids)
	} else {
		storeResult, err = s.store.SendBack(ctx, filter.CompanyID, notes, ids)
	}
	if err != nil {
		// Transport failure: surface the generic message and re-throw so the
		// caller can finish its own handling. No refresh; nothing is known
		// to have changed.
		result = metrics.ResultError
		s.logf("transition %s failed: company=%d ids=%d err=%v", direction, filter.CompanyID, len(ids), err)
		return nil, fmt.Errorf("%s: %w", msgGenericFailure, err)
	}

	outcome := &TransitionOutcome{Result: storeResult}
	if storeResult.Rejected() {
		// Business rejection: terminal for this attempt, but state may have
		// partially changed, so the refresh below still runs.
		result = metrics.ResultRejected
		outcome.Rejected = true
		outcome.Message = storeResult.Message
	} else {
		metrics.AddTransitionRecords(direction, storeResult.Moved)
		outcome.Message = storeResult.Message
		if outcome.Message == "" {
			if direction == DirectionForward {
				outcome.Message = msgForwardDone
			} else {
				outcome.Message = msgBackDone
			}
		}
	}

	s.logAudit(ctx, direction, filter.CompanyID, notes, ids, storeResult)
	s.notifyFinalized(ctx, direction, filter.CompanyID, ids, storeResult)

	// Resynchronize unconditionally after any attempted mutation: the
	// refreshed projection is the only way callers observe the new stages.
	projection, err := s.Grid(ctx, filter)
	if err != nil {
		result = metrics.ResultError
		return nil, fmt.Errorf("refresh after %s transition: %w", direction, err)
	}
	outcome.Projection = projection
	return outcome, nil
}

// Delete soft-deletes a current-year record and refreshes the grid.
func (s *WorkflowService) Delete(ctx context.Context, filter reporting.RowFilter, id int64) (Projection, error) {
	result := metrics.ResultSuccess
	defer func() {
		metrics.ObserveDelete(result)
	}()

	if id == 0 {
		result = metrics.ResultError
		return Projection{}, reporting.ErrEmptyRecordID
	}
	if err := s.store.DeleteRow(ctx, id); err != nil {
		result = metrics.ResultError
		return Projection{}, err
	}
	if s.audit != nil {
		_ = s.audit.Log(ctx, audit.Entry{
			Actor:        auth.SubjectFromContext(ctx),
			Role:         string(auth.RoleFromContext(ctx)),
			Action:       "report.delete",
			ResourceType: "data_report",
			ResourceID:   strconv.FormatInt(id, 10),
			CompanyID:    filter.CompanyID,
		})
	}
	return s.Grid(ctx, filter)
}

func (s *WorkflowService) logAudit(ctx context.Context, direction string, companyID int64, notes string, ids []int64, storeResult reporting.StoreResult) {
	if s.audit == nil {
		return
	}
	action := "report.send_forward"
	if direction == DirectionBack {
		action = "report.send_back"
	}
	meta, _ := json.Marshal(map[string]any{
		"ids":   ids,
		"code":  storeResult.Code,
		"moved": storeResult.Moved,
		"notes": notes,
	})
	_ = s.audit.Log(ctx, audit.Entry{
		Actor:        auth.SubjectFromContext(ctx),
		Role:         string(auth.RoleFromContext(ctx)),
		Action:       action,
		ResourceType: "data_report",
		CompanyID:    companyID,
		Metadata:     meta,
	})
}

func (s *WorkflowService) notifyFinalized(ctx context.Context, direction string, companyID int64, ids []int64, storeResult reporting.StoreResult) {
	if s.notifier == nil || direction != DirectionForward || storeResult.Rejected() {
		return
	}
	// Only the Aprobación role's forward action produces Finalizado.
	if auth.RoleFromContext(ctx) != auth.RoleAprobacion {
		return
	}
	if err := s.notifier.NotifyFinalized(ctx, companyID, ids); err != nil {
		s.logf("finalization notify failed: company=%d err=%v", companyID, err)
	}
}

func (s *WorkflowService) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
