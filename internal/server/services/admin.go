// Package services holds the application operations exposed to the HTTP
// API and the admin CLI.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/datingapp/internal/common"
	"github.com/dmitrijs2005/datingapp/internal/dbx"
	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/metrics"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
	"github.com/dmitrijs2005/datingapp/internal/server/repositories/repomanager"
)

// Deletion steps, in execution order.
const (
	StepBegin    = "begin"
	StepLikes    = "likes"
	StepMessages = "messages"
	StepPhotos   = "photos"
	StepLogins   = "logins"
	StepRoles    = "roles"
	StepIdentity = "identity"
	StepCommit   = "commit"
)

var errNothingFlushed = errors.New("staged changes affected no rows")

type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	metrics     metrics.Recorder
}

func NewAdminService(db *sql.DB, repomanager repomanager.RepositoryManager, logger logging.Logger, rec metrics.Recorder) *AdminService {
	if rec == nil {
		rec = metrics.Nop{}
	}
	return &AdminService{
		db:          db,
		repomanager: repomanager,
		logger:      logger.With("module", "admin"),
		metrics:     rec,
	}
}

// UsersWithRoles lists every user with their roles, ordered by username.
func (s *AdminService) UsersWithRoles(ctx context.Context) ([]*models.UserWithRoles, error) {
	return s.repomanager.Users(s.db).ListWithRoles(ctx)
}

// DeleteAccount removes the target user and everything they own in one
// transaction. Guardrails run first and never touch the store for writing.
//
// Photo objects are deleted from the blob store before their rows are
// flushed. Those deletes are not undone if a later step rolls back, so a
// failed deletion can leave photo rows whose objects are gone, and a
// failed object delete leaves an orphan in the store. Both are logged.
func (s *AdminService) DeleteAccount(ctx context.Context, requesterID int64, targetUsername string) error {
	log := s.logger.With("target", targetUsername, "requester_id", requesterID)

	target, err := s.checkDeletable(ctx, requesterID, targetUsername)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			s.metrics.RecordDeletion(metrics.OutcomeNotFound)
		case errors.Is(err, common.ErrForbidden):
			s.metrics.RecordDeletion(metrics.OutcomeForbidden)
		default:
			s.metrics.RecordDeletion(metrics.OutcomeFailed)
		}
		log.Info(ctx, "account deletion refused", "error", err.Error())
		return err
	}

	// Once started, deletion runs to commit or rollback.
	ctx = context.WithoutCancel(ctx)

	uow := dbx.NewUnitOfWork(s.db)
	if err := uow.Begin(ctx, nil); err != nil {
		s.metrics.RecordDeletion(metrics.OutcomeFailed)
		log.Error(ctx, "account deletion failed", "step", StepBegin, "error", err.Error())
		return &OperationFailedError{Step: StepBegin, Err: err}
	}

	if err := s.deleteAggregates(ctx, log, uow, target); err != nil {
		if rbErr := uow.Rollback(); rbErr != nil {
			log.Error(ctx, "rollback failed", "error", rbErr.Error())
		}
		s.metrics.RecordDeletion(metrics.OutcomeFailed)
		log.Error(ctx, "account deletion failed", "error", err.Error())
		return err
	}

	if err := uow.Commit(); err != nil {
		s.metrics.RecordDeletion(metrics.OutcomeFailed)
		log.Error(ctx, "account deletion failed", "step", StepCommit, "error", err.Error())
		return &OperationFailedError{Step: StepCommit, Err: err}
	}

	s.metrics.RecordDeletion(metrics.OutcomeDeleted)
	log.Info(ctx, "account deleted", "user_id", target.ID)
	return nil
}

func (s *AdminService) checkDeletable(ctx context.Context, requesterID int64, targetUsername string) (*models.User, error) {
	users := s.repomanager.Users(s.db)

	target, err := users.GetByUsername(ctx, targetUsername)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("user %q: %w", targetUsername, common.ErrorNotFound)
		}
		return nil, err
	}

	if target.ID == requesterID {
		return nil, &ForbiddenError{Reason: ReasonSelfDelete}
	}

	roles, err := users.GetRoles(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	if _, ok := models.ProtectedBy(roles); ok {
		return nil, &ForbiddenError{Reason: ReasonProtectedAccount}
	}

	return target, nil
}

func (s *AdminService) deleteAggregates(ctx context.Context, log logging.Logger, uow *dbx.UnitOfWork, target *models.User) error {
	if _, err := s.repomanager.Likes(uow).DeleteForUser(ctx, uow, target.ID); err != nil {
		return &OperationFailedError{Step: StepLikes, Err: err}
	}
	if err := flushStep(ctx, uow, StepLikes); err != nil {
		return err
	}

	if _, err := s.repomanager.Messages(uow).DeleteForUser(ctx, uow, target.ID); err != nil {
		return &OperationFailedError{Step: StepMessages, Err: err}
	}
	if err := flushStep(ctx, uow, StepMessages); err != nil {
		return err
	}

	report, err := s.repomanager.Photos(uow).DeleteForUser(ctx, uow, target.ID)
	if err != nil {
		return &OperationFailedError{Step: StepPhotos, Err: err}
	}
	for _, o := range report.Orphaned {
		s.metrics.RecordOrphanedBlob()
		log.Warn(ctx, "photo object not deleted", "photo_id", o.PhotoID, "public_id", o.PublicID, "error", o.Err.Error())
	}
	if err := flushStep(ctx, uow, StepPhotos); err != nil {
		return err
	}

	users := s.repomanager.Users(uow)

	logins, err := users.ListLogins(ctx, target.ID)
	if err != nil {
		return &OperationFailedError{Step: StepLogins, Err: err}
	}
	for _, l := range logins {
		if err := users.RemoveLogin(ctx, target.ID, l.Provider, l.ProviderKey); err != nil {
			return &OperationFailedError{Step: StepLogins, Err: err}
		}
	}

	roles, err := users.GetRoles(ctx, target.ID)
	if err != nil {
		return &OperationFailedError{Step: StepRoles, Err: err}
	}
	if err := users.RemoveRoles(ctx, target.ID, roles); err != nil {
		return &OperationFailedError{Step: StepRoles, Err: err}
	}

	if err := users.Delete(ctx, target.ID); err != nil {
		return &OperationFailedError{Step: StepIdentity, Err: err}
	}

	return nil
}

// flushStep treats a flush that touched no rows while changes were staged
// as a failed step.
func flushStep(ctx context.Context, uow *dbx.UnitOfWork, step string) error {
	if !uow.HasPendingChanges() {
		return nil
	}

	ok, err := uow.Flush(ctx)
	if err != nil {
		return &OperationFailedError{Step: step, Err: err}
	}
	if !ok {
		return &OperationFailedError{Step: step, Err: errNothingFlushed}
	}

	return nil
}

// EditRoles makes the target's role set exactly the comma separated roles.
// Role names match case-insensitively. The change is applied in one
// transaction and the final role set is returned.
func (s *AdminService) EditRoles(ctx context.Context, targetUsername string, roles string) ([]models.RoleName, error) {
	selected, err := parseRoleList(roles)
	if err != nil {
		return nil, err
	}

	var final []models.RoleName
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		users := s.repomanager.Users(tx)

		target, err := users.GetByUsername(ctx, targetUsername)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("user %q: %w", targetUsername, common.ErrorNotFound)
			}
			return err
		}

		current, err := users.GetRoles(ctx, target.ID)
		if err != nil {
			return err
		}

		if toAdd := difference(selected, current); len(toAdd) > 0 {
			if err := users.AddRoles(ctx, target.ID, toAdd); err != nil {
				return fmt.Errorf("failed to add roles: %w", err)
			}
		}
		if toRemove := difference(current, selected); len(toRemove) > 0 {
			if err := users.RemoveRoles(ctx, target.ID, toRemove); err != nil {
				return fmt.Errorf("failed to remove roles: %w", err)
			}
		}

		final, err = users.GetRoles(ctx, target.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "roles edited", "target", targetUsername, "roles", final)
	return final, nil
}

func parseRoleList(roles string) ([]models.RoleName, error) {
	var selected []models.RoleName
	seen := make(map[models.RoleName]struct{})

	for _, part := range strings.Split(roles, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		role, ok := models.ParseRoleName(part)
		if !ok {
			return nil, fmt.Errorf("%w: %s", common.ErrUnknownRole, part)
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		selected = append(selected, role)
	}

	if len(selected) == 0 {
		return nil, common.ErrEmptyRoleList
	}
	return selected, nil
}

// difference returns the roles of a that are not in b, keeping a's order.
func difference(a, b []models.RoleName) []models.RoleName {
	in := make(map[models.RoleName]struct{}, len(b))
	for _, r := range b {
		in[r] = struct{}{}
	}

	var out []models.RoleName
	for _, r := range a {
		if _, ok := in[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}
