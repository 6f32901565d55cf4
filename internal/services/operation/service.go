// Package operation records lifecycle commands in the operation store
// and waits for them with the poller, so that an interrupted wait can be
// picked up again later.
package operation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
	"onmodulus/xervo/internal/opstore"
	"onmodulus/xervo/internal/poller"
)

// RetainFinished is how long finished operations are kept.
const RetainFinished = 7 * 24 * time.Hour

// Snapshot is the final state of the awaited resource. Exactly one of
// Project, Servo and Database is set, matching the operation's kind.
type Snapshot struct {
	Status   string
	Project  *domain.Project
	Servo    *domain.Servo
	Database *domain.Database
}

// Service tracks and awaits operations. A nil repository disables
// tracking without disabling waiting.
type Service struct {
	client *librarian.Client
	repo   opstore.Repository
	poller *poller.Poller
	logger *slog.Logger
}

// NewService returns a Service.
func NewService(client *librarian.Client, repo opstore.Repository, p *poller.Poller, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{client: client, repo: repo, poller: p, logger: logger}
}

// Close releases the repository.
func (s *Service) Close() error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Close()
}

// Track persists op as pending. Tracking is best effort: on failure the
// operation is logged and nil is returned so the command can go on.
func (s *Service) Track(ctx context.Context, op *opstore.Operation) *opstore.Operation {
	if s.repo == nil || op == nil {
		return nil
	}
	op.State = opstore.StatePending
	if err := s.repo.Save(ctx, op); err != nil {
		s.logger.Warn("could not record operation", "command", op.Command, "error", err)
		return nil
	}
	if n, err := s.repo.DeleteOlderThan(ctx, RetainFinished); err == nil && n > 0 {
		s.logger.Debug("pruned finished operations", "count", n)
	}
	return op
}

// Finalize records the outcome of a tracked operation.
func (s *Service) Finalize(ctx context.Context, op *opstore.Operation, lastStatus string, opErr error) {
	if s.repo == nil || op == nil {
		return
	}
	// A canceled wait stays pending so it can be resumed.
	if errors.Is(opErr, context.Canceled) {
		op.LastStatus = lastStatus
		_ = s.repo.Save(context.WithoutCancel(ctx), op)
		return
	}

	op.LastStatus = lastStatus
	if opErr != nil {
		op.State = opstore.StateFailed
		op.ErrorMessage = librarian.Message(opErr)
	} else {
		op.State = opstore.StateSucceeded
		op.ErrorMessage = ""
	}
	if err := s.repo.Save(context.WithoutCancel(ctx), op); err != nil {
		s.logger.Warn("could not update operation", "ref", op.Ref, "error", err)
	}
}

// ListPending returns operations that can be resumed.
func (s *Service) ListPending(ctx context.Context) ([]opstore.Operation, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("operations: store unavailable")
	}
	return s.repo.ListPending(ctx)
}

// ListRecent returns the n most recent operations.
func (s *Service) ListRecent(ctx context.Context, n int) ([]opstore.Operation, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("operations: store unavailable")
	}
	return s.repo.ListRecent(ctx, n)
}

// Prune removes finished operations older than maxAge.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	if s.repo == nil {
		return 0, fmt.Errorf("operations: store unavailable")
	}
	return s.repo.DeleteOlderThan(ctx, maxAge)
}

// Run tracks op, submits it, and waits for its resource to reach
// op.TargetStatus.
func (s *Service) Run(ctx context.Context, op *opstore.Operation, message string, submit func(context.Context) error) (*Snapshot, error) {
	tracked := s.Track(ctx, op)
	snap, err := s.wait(ctx, op, message, submit)
	s.Finalize(ctx, tracked, lastStatus(snap), err)
	return snap, err
}

// Resume waits again for a pending operation without resubmitting it.
func (s *Service) Resume(ctx context.Context, op *opstore.Operation) (*Snapshot, error) {
	if op == nil {
		return nil, fmt.Errorf("operations: nothing to resume")
	}
	message := fmt.Sprintf("Waiting for %s %s to be %s...", op.Kind, op.Label(), op.TargetStatus)
	snap, err := s.wait(ctx, op, message, nil)
	s.Finalize(ctx, op, lastStatus(snap), err)
	return snap, err
}

// Deploy tracks a deploy and runs it through the poller's deploy loops.
func (s *Service) Deploy(ctx context.Context, op *opstore.Operation, d poller.Deploy) (*domain.Project, error) {
	tracked := s.Track(ctx, op)
	project, err := s.poller.Deploy(ctx, s.client.Projects, d)
	status := ""
	if project != nil {
		status = project.Status
	}
	s.Finalize(ctx, tracked, status, err)
	return project, err
}

func (s *Service) wait(ctx context.Context, op *opstore.Operation, message string, submit func(context.Context) error) (*Snapshot, error) {
	fetch, err := s.fetcher(op)
	if err != nil {
		return nil, err
	}
	return poller.Run(ctx, s.poller, poller.Job[*Snapshot]{
		Resource: fmt.Sprintf("%s %q", op.Kind, op.Label()),
		Message:  message,
		Submit:   submit,
		Fetch:    fetch,
		Status:   func(snap *Snapshot) string { return snap.Status },
		Target:   op.TargetStatus,
		Initial:  op.LastStatus,
	})
}

// fetcher returns the status fetch for the operation's resource kind.
func (s *Service) fetcher(op *opstore.Operation) (func(context.Context) (*Snapshot, error), error) {
	id := op.ResourceID
	switch op.Kind {
	case opstore.KindProject:
		return func(ctx context.Context) (*Snapshot, error) {
			p, err := s.client.Projects.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &Snapshot{Status: p.Status, Project: p}, nil
		}, nil
	case opstore.KindServo:
		return func(ctx context.Context) (*Snapshot, error) {
			sv, err := s.client.Servos.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &Snapshot{Status: sv.Status, Servo: sv}, nil
		}, nil
	case opstore.KindDatabase:
		return func(ctx context.Context) (*Snapshot, error) {
			db, err := s.client.Databases.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			return &Snapshot{Status: db.Status, Database: db}, nil
		}, nil
	}
	return nil, fmt.Errorf("operations: unknown resource kind %q", op.Kind)
}

func lastStatus(snap *Snapshot) string {
	if snap == nil {
		return ""
	}
	return snap.Status
}
