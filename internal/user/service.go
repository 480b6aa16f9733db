// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/science-ai/backend/internal/core"
	"github.com/science-ai/backend/internal/usage"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// Provision records an account created by the identity service. Role and
// plan default to user and free.
func (s *Service) Provision(
	ctx context.Context,
	req ProvisionUserRequest,
) (*User, error) {
	id := strings.TrimSpace(req.ID)
	if id == "" {
		id = uuid.NewString()
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	plan := usage.PlanFree
	if req.Plan != "" {
		p, ok := usage.ParsePlan(req.Plan)
		if !ok {
			return nil, fmt.Errorf(
				"provision user: invalid plan %q: %w",
				req.Plan,
				core.ErrInvalidInput,
			)
		}
		plan = p
	}

	user := &User{
		ID:    id,
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Name:  strings.TrimSpace(req.Name),
		Role:  role,
		Plan:  plan,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user provisioned",
		"user_id", user.ID,
		"plan", user.Plan,
	)

	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Service) UpdateUser(
	ctx context.Context,
	id string,
	req UpdateUserRequest,
) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *Service) UpdateUserRole(
	ctx context.Context,
	id, role string,
) (*User, error) {
	if role != RoleUser && role != RoleAdmin {
		return nil, fmt.Errorf(
			"update role: invalid role %q: %w",
			role,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Role = role

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePlan is the only way a user's plan changes.
func (s *Service) ChangePlan(
	ctx context.Context,
	id, plan string,
) (*User, error) {
	p, ok := usage.ParsePlan(plan)
	if !ok {
		return nil, fmt.Errorf(
			"change plan: invalid plan %q: %w",
			plan,
			core.ErrInvalidInput,
		)
	}

	user, err := s.repo.UpdatePlan(ctx, id, p)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "plan changed",
		"user_id", id,
		"plan", p,
	)

	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.repo.SoftDelete(ctx, id)
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	if params.Plan != "" {
		if _, ok := usage.ParsePlan(params.Plan); !ok {
			return nil, 0, fmt.Errorf(
				"list users: invalid plan %q: %w",
				params.Plan,
				core.ErrInvalidInput,
			)
		}
	}
	return s.repo.List(ctx, params)
}

// CountByPlan reports active users per plan, including plans with none.
func (s *Service) CountByPlan(ctx context.Context) ([]PlanCount, error) {
	rows, err := s.repo.CountByPlan(ctx)
	if err != nil {
		return nil, err
	}

	byPlan := make(map[usage.Plan]int, len(rows))
	for _, row := range rows {
		p, _ := usage.ParsePlan(string(row.Plan))
		byPlan[p] += row.Users
	}

	out := make([]PlanCount, 0, len(byPlan))
	for _, p := range usage.Plans() {
		out = append(out, PlanCount{Plan: p, Users: byPlan[p]})
	}

	return out, nil
}

func (s *Service) GetMe(ctx context.Context, userID string) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("get me: %w", core.ErrUnauthorized)
	}

	return s.repo.GetByID(ctx, userID)
}

func (s *Service) UpdateMe(
	ctx context.Context,
	userID string,
	req UpdateUserRequest,
) (*User, error) {
	if userID == "" {
		return nil, fmt.Errorf("update me: %w", core.ErrUnauthorized)
	}

	return s.UpdateUser(ctx, userID, req)
}

func (s *Service) DeleteMe(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("delete me: %w", core.ErrUnauthorized)
	}

	return s.repo.SoftDelete(ctx, userID)
}

func (s *Service) CanDeleteUser(
	ctx context.Context,
	requesterID, targetID string,
) error {
	if requesterID == targetID {
		return nil
	}

	requester, err := s.repo.GetByID(ctx, requesterID)
	if err != nil {
		return err
	}

	if !requester.IsAdmin() {
		return fmt.Errorf("delete user: %w", core.ErrForbidden)
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	if target.IsAdmin() {
		return fmt.Errorf("cannot delete admin users: %w", core.ErrForbidden)
	}

	return nil
}
