// Package account handles role assignments and self-service profiles of gym
// accounts.
package account

import (
	"context"
	"errors"
	"log"
	"strings"

	"gym_booking/apperror"
	"gym_booking/constants"
	"gym_booking/database"
	"gym_booking/model"
	"gym_booking/policy"

	"github.com/go-playground/validator/v10"
)

type Service struct {
	store    *database.Store
	validate *validator.Validate
}

func NewService(store *database.Store) *Service {
	return &Service{store: store, validate: validator.New()}
}

func (s *Service) List(ctx context.Context, actor model.Actor, pagination model.Pagination) ([]model.Account, int64, error) {
	if err := policy.Authorize(actor, policy.ChangeRole); err != nil {
		return nil, 0, err
	}
	accounts, total, err := s.store.ListAccounts(ctx, pagination)
	if err != nil {
		return nil, 0, apperror.Infrastructure(err)
	}
	return accounts, total, nil
}

// Profile returns the actor's own account.
func (s *Service) Profile(ctx context.Context, actor model.Actor) (*model.Account, error) {
	account, err := s.store.GetAccount(ctx, actor.ID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.NotFound(constants.ACCOUNT_NOT_FOUND)
	}
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return account, nil
}

// UpdateProfile changes the actor's username and names.
func (s *Service) UpdateProfile(ctx context.Context, actor model.Actor, input model.UpdateProfileInput) (*model.Account, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}

	err := s.store.UpdateAccountProfile(ctx, actor.ID, input)
	switch {
	case errors.Is(err, database.ErrDuplicate):
		return nil, apperror.Validation(constants.USERNAME_TAKEN)
	case errors.Is(err, database.ErrNotFound):
		return nil, apperror.NotFound(constants.ACCOUNT_NOT_FOUND)
	case err != nil:
		return nil, apperror.Infrastructure(err)
	}
	return s.Profile(ctx, actor)
}

// ChangeRole assigns role to the target account. An admin can never take the
// admin role away from themselves.
func (s *Service) ChangeRole(ctx context.Context, actor model.Actor, targetID uint, role model.Role) (*model.Account, error) {
	if err := policy.AuthorizeRoleChange(actor, targetID, role); err != nil {
		return nil, err
	}

	var updated *model.Account
	err := s.store.Transaction(ctx, func(tx *database.Store) error {
		if err := tx.UpdateAccountRole(ctx, targetID, role); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return apperror.NotFound(constants.ACCOUNT_NOT_FOUND)
			}
			return apperror.Infrastructure(err)
		}
		var err error
		updated, err = tx.GetAccount(ctx, targetID)
		if err != nil {
			return apperror.Infrastructure(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("account %d role changed to %s by %d", targetID, role, actor.ID)
	return updated, nil
}
