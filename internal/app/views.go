package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/okian/skilltree/internal/adapters/repository"
	"github.com/okian/skilltree/internal/domain/filter"
	"github.com/okian/skilltree/internal/domain/model"
	"github.com/okian/skilltree/pkg/logger"
	"github.com/okian/skilltree/pkg/metrics"
)

// Views lists the caller's saved views plus every shared view.
func (s *Service) Views(ctx context.Context, caller model.Caller) ([]model.SavedView, error) {
	st, _, err := s.ready()
	if err != nil {
		return nil, err
	}
	return st.Views(ctx, caller.Email)
}

// CreateView stores v as a view owned by the caller. The name is required and
// the state must hold valid filter values.
func (s *Service) CreateView(ctx context.Context, caller model.Caller, v model.SavedView) (model.SavedView, error) {
	st, _, err := s.ready()
	if err != nil {
		return model.SavedView{}, err
	}
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return model.SavedView{}, fmt.Errorf("%w: name is required", ErrInvalidView)
	}
	if err := validState(v.State); err != nil {
		return model.SavedView{}, err
	}
	v.OwnerEmail = caller.Email

	created, err := st.CreateView(ctx, v)
	if err != nil {
		return model.SavedView{}, err
	}
	s.viewChanged(ctx, "create", created)
	return created, nil
}

// UpdateView applies p to view id. Only the owner may update a view.
func (s *Service) UpdateView(ctx context.Context, caller model.Caller, id int64, p model.ViewPatch) (model.SavedView, error) {
	st, err := s.ownedView(ctx, caller, id)
	if err != nil {
		return model.SavedView{}, err
	}
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return model.SavedView{}, fmt.Errorf("%w: name must not be empty", ErrInvalidView)
		}
		p.Name = &name
	}
	if p.State != nil {
		if err := validState(*p.State); err != nil {
			return model.SavedView{}, err
		}
	}

	updated, err := st.UpdateView(ctx, id, p)
	if err != nil {
		return model.SavedView{}, err
	}
	s.viewChanged(ctx, "update", updated)
	return updated, nil
}

// DeleteView removes view id. Only the owner may delete a view.
func (s *Service) DeleteView(ctx context.Context, caller model.Caller, id int64) error {
	st, err := s.ownedView(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := st.DeleteView(ctx, id); err != nil {
		return err
	}
	s.viewChanged(ctx, "delete", model.SavedView{ID: id, OwnerEmail: caller.Email})
	return nil
}

// ViewHierarchy builds the forest for a saved view's filters. Views the
// caller cannot read are reported as not found. The caller's own scope still
// applies, so a shared view never widens what a user may see.
func (s *Service) ViewHierarchy(ctx context.Context, caller model.Caller, id int64) ([]*model.HierarchyNode, error) {
	st, _, err := s.ready()
	if err != nil {
		return nil, err
	}
	v, err := st.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.VisibleTo(caller.Email) {
		return nil, fmt.Errorf("view %d: %w", id, repository.ErrNotFound)
	}
	return s.Hierarchy(ctx, filter.FromViewState(v.State), caller)
}

// Managers lists every active employee as a manager filter choice, ordered
// by name.
func (s *Service) Managers(ctx context.Context) ([]model.ManagerOption, error) {
	st, _, err := s.ready()
	if err != nil {
		return nil, err
	}
	employees, err := st.FetchActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("managers: %w", err)
	}
	out := make([]model.ManagerOption, 0, len(employees))
	for _, e := range employees {
		out = append(out, model.ManagerOption{
			ID:         e.ID,
			FullName:   e.FullName(),
			Title:      e.Title,
			Department: e.Department,
		})
	}
	return out, nil
}

func (s *Service) ownedView(ctx context.Context, caller model.Caller, id int64) (Store, error) {
	st, _, err := s.ready()
	if err != nil {
		return nil, err
	}
	v, err := st.View(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.OwnedBy(caller.Email) {
		return nil, ErrNotOwner
	}
	return st, nil
}

func validState(v model.ViewState) error {
	if err := filter.Validate(filter.FromViewState(v)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidView, err)
	}
	return nil
}

func (s *Service) viewChanged(ctx context.Context, action string, v model.SavedView) {
	metrics.RecordViewChange(action)
	s.logger.Info(ctx, "saved view "+action+"d",
		logger.Int64("id", v.ID),
		logger.String("owner", v.OwnerEmail),
		logger.Bool("shared", v.IsShared))
}
