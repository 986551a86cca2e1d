// Package trainer is the directory of trainers sessions can reference.
package trainer

import (
	"context"
	"errors"
	"strings"

	"gym_booking/apperror"
	"gym_booking/constants"
	"gym_booking/database"
	"gym_booking/model"
	"gym_booking/policy"

	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/copier"
)

type Directory struct {
	store    *database.Store
	validate *validator.Validate
}

func NewDirectory(store *database.Store) *Directory {
	return &Directory{store: store, validate: validator.New()}
}

func (d *Directory) List(ctx context.Context) ([]model.Trainer, error) {
	trainers, err := d.store.ListTrainers(ctx)
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return trainers, nil
}

func (d *Directory) Create(ctx context.Context, actor model.Actor, input model.CreateTrainerInput) (*model.Trainer, error) {
	if err := policy.Authorize(actor, policy.ManageTrainers); err != nil {
		return nil, err
	}
	if err := d.validate.Struct(input); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}
	var trainer model.Trainer
	if err := copier.Copy(&trainer, &input); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}
	if err := d.store.CreateTrainer(ctx, &trainer); err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return &trainer, nil
}

// Update applies the non-nil fields of input. The result must still pass the
// creation rules.
func (d *Directory) Update(ctx context.Context, actor model.Actor, id uint, input model.UpdateTrainerInput) (*model.Trainer, error) {
	if err := policy.Authorize(actor, policy.ManageTrainers); err != nil {
		return nil, err
	}
	if err := d.validate.Struct(input); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}

	trainer, err := d.store.GetTrainer(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, apperror.NotFound(constants.TRAINER_NOT_FOUND)
	}
	if err != nil {
		return nil, apperror.Infrastructure(err)
	}

	if input.Name != nil {
		trainer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Specialization != nil {
		trainer.Specialization = strings.TrimSpace(*input.Specialization)
	}
	if input.PhotoPath != nil {
		trainer.PhotoPath = input.PhotoPath
	}
	if err := d.validate.Struct(model.CreateTrainerInput{
		Name:           trainer.Name,
		Specialization: trainer.Specialization,
		PhotoPath:      trainer.PhotoPath,
	}); err != nil {
		return nil, apperror.Wrap(apperror.KindValidation, constants.ERROR_INPUT, err)
	}

	if err := d.store.SaveTrainer(ctx, trainer); err != nil {
		return nil, apperror.Infrastructure(err)
	}
	return trainer, nil
}

// Delete removes the trainer. Sessions taught by them stay, without a trainer.
func (d *Directory) Delete(ctx context.Context, actor model.Actor, id uint) error {
	if err := policy.Authorize(actor, policy.ManageTrainers); err != nil {
		return err
	}
	err := d.store.DeleteTrainer(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return apperror.NotFound(constants.TRAINER_NOT_FOUND)
	}
	if err != nil {
		return apperror.Infrastructure(err)
	}
	return nil
}
