package trainer

import (
	"context"
	"path/filepath"
	"testing"

	"gym_booking/apperror"
	"gym_booking/database"
	"gym_booking/model"
)

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "trainer.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewDirectory(database.NewStore(db))
}

func TestDirectory(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()
	admin := model.Actor{ID: 1, Role: model.RoleAdmin}
	coach := model.Actor{ID: 2, Role: model.RoleTrainer}

	if _, err := d.Create(ctx, coach, model.CreateTrainerInput{Name: "Ana", Specialization: "Yoga"}); !apperror.Is(err, apperror.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := d.Create(ctx, admin, model.CreateTrainerInput{Name: "A", Specialization: "Yoga"}); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for short name, got %v", err)
	}

	created, err := d.Create(ctx, admin, model.CreateTrainerInput{Name: "Ana", Specialization: "Yoga"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	list, err := d.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Ana" {
		t.Fatalf("list: %+v %v", list, err)
	}

	if err := d.Delete(ctx, admin, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := d.Delete(ctx, admin, created.ID); !apperror.Is(err, apperror.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDirectoryUpdate(t *testing.T) {
	d := newDirectory(t)
	ctx := context.Background()
	admin := model.Actor{ID: 1, Role: model.RoleAdmin}
	coach := model.Actor{ID: 2, Role: model.RoleTrainer}

	created, err := d.Create(ctx, admin, model.CreateTrainerInput{Name: "Ana", Specialization: "Yoga"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "  Ana Novak "
	tests := []struct {
		name  string
		actor model.Actor
		id    uint
		input model.UpdateTrainerInput
		want  apperror.Kind
	}{
		{name: "trainer not allowed", actor: coach, id: created.ID, input: model.UpdateTrainerInput{Name: &name}, want: apperror.KindForbidden},
		{name: "missing trainer", actor: admin, id: 999, input: model.UpdateTrainerInput{Name: &name}, want: apperror.KindNotFound},
		{name: "short specialization", actor: admin, id: created.ID, input: model.UpdateTrainerInput{Specialization: ptr("Yo")}, want: apperror.KindValidation},
		{name: "blank name after trim", actor: admin, id: created.ID, input: model.UpdateTrainerInput{Name: ptr("   ")}, want: apperror.KindValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := d.Update(ctx, tt.actor, tt.id, tt.input); !apperror.Is(err, tt.want) {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}

	updated, err := d.Update(ctx, admin, created.ID, model.UpdateTrainerInput{Name: &name})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Ana Novak" || updated.Specialization != "Yoga" {
		t.Fatalf("unexpected trainer after update: %+v", updated)
	}
	list, err := d.List(ctx)
	if err != nil || len(list) != 1 || list[0].Name != "Ana Novak" {
		t.Fatalf("update not stored: %+v %v", list, err)
	}
}

func ptr(s string) *string { return &s }
