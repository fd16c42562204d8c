package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	domain "github.com/aksi-clean/api/internal/domain"
	"github.com/aksi-clean/api/internal/repositories"
)

var (
	// ErrAuthInvalidInput indicates a malformed login request.
	ErrAuthInvalidInput = errors.New("auth: invalid input")
	// ErrAuthInvalidCredentials indicates the login/password pair does not
	// match an active operator. Lookup misses and password mismatches are
	// deliberately indistinguishable to callers.
	ErrAuthInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrAuthUnavailable indicates the operator backend failed.
	ErrAuthUnavailable = errors.New("auth: unavailable")
)

// TokenIssuer mints signed access tokens for authenticated operators.
type TokenIssuer interface {
	Issue(operatorID, name, branchID string, roles []string) (string, error)
}

// AuthServiceDeps bundles dependencies for NewAuthService.
type AuthServiceDeps struct {
	Repository repositories.OperatorRepository
	Tokens     TokenIssuer
	TokenTTL   time.Duration
	Clock      func() time.Time
	Logger     *zap.Logger
}

type authService struct {
	repo     repositories.OperatorRepository
	tokens   TokenIssuer
	tokenTTL time.Duration
	clock    func() time.Time
	logger   *zap.Logger
}

// NewAuthService wires an AuthService backed by the operator repository and
// the process token issuer.
func NewAuthService(deps AuthServiceDeps) (AuthService, error) {
	if deps.Repository == nil {
		return nil, errors.New("auth service requires operator repository")
	}
	if deps.Tokens == nil {
		return nil, errors.New("auth service requires token issuer")
	}
	if deps.TokenTTL <= 0 {
		return nil, errors.New("auth service requires positive token ttl")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		repo:     deps.Repository,
		tokens:   deps.Tokens,
		tokenTTL: deps.TokenTTL,
		clock:    clock,
		logger:   logger,
	}, nil
}

var _ AuthService = (*authService)(nil)

func (s *authService) Login(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	login := strings.ToLower(strings.TrimSpace(cmd.Login))
	if login == "" {
		return LoginResult{}, fmt.Errorf("%w: login is required", ErrAuthInvalidInput)
	}
	if cmd.Password == "" {
		return LoginResult{}, fmt.Errorf("%w: password is required", ErrAuthInvalidInput)
	}

	operator, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return LoginResult{}, ErrAuthInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}
	if !operator.Active {
		s.logger.Warn("login attempt for inactive operator", zap.String("operator_id", operator.ID))
		return LoginResult{}, ErrAuthInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(operator.PasswordHash), []byte(cmd.Password)); err != nil {
		return LoginResult{}, ErrAuthInvalidCredentials
	}

	token, err := s.tokens.Issue(operator.ID, operator.Name, operator.BranchID, operator.Roles)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrAuthUnavailable, err)
	}

	s.logger.Info("operator signed in",
		zap.String("operator_id", operator.ID),
		zap.String("branch_id", operator.BranchID),
	)
	result := LoginResult{
		Token:     token,
		ExpiresAt: s.clock().UTC().Add(s.tokenTTL),
		Operator:  sanitizeOperator(operator),
	}
	return result, nil
}

// sanitizeOperator strips the credential hash before the profile leaves the
// service layer.
func sanitizeOperator(operator domain.Operator) domain.Operator {
	operator.PasswordHash = ""
	return operator
}
