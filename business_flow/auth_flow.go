package businessflow

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/plexlink/plexlink/app/dto"
	"github.com/plexlink/plexlink/app/services"
	"github.com/plexlink/plexlink/models"
	"github.com/plexlink/plexlink/repository"
	"github.com/plexlink/plexlink/utils"
)

// AuthFlow defines session operations
type AuthFlow interface {
	Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error)
}

// AuthFlowImpl implements AuthFlow
type AuthFlowImpl struct {
	userRepo repository.UserRepository
	roleRepo repository.RoleGrantRepository
	tokenSvc services.TokenService
}

func NewAuthFlow(userRepo repository.UserRepository, roleRepo repository.RoleGrantRepository, tokenSvc services.TokenService) AuthFlow {
	return &AuthFlowImpl{userRepo: userRepo, roleRepo: roleRepo, tokenSvc: tokenSvc}
}

// Login verifies local credentials and issues a session. The admin flag
// baked into the token reflects the admin role grant at login time.
func (f *AuthFlowImpl) Login(ctx context.Context, req *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	user, err := f.userRepo.ByNetid(ctx, req.Netid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !utils.IsTrue(user.IsActive) {
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrIncorrectPassword
	}

	isAdmin, err := f.isAdmin(ctx, user.Netid)
	if err != nil {
		return nil, err
	}

	return f.issue(user.Netid, isAdmin)
}

// Refresh rotates the session tokens
func (f *AuthFlowImpl) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.LoginResponse, error) {
	claims, err := f.tokenSvc.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "refresh token is invalid or expired", err)
	}
	if claims.TokenType != "refresh" {
		return nil, NewBusinessError("INVALID_REFRESH_TOKEN", "token is not a refresh token", nil)
	}

	// Re-read the grant so revoked admins lose the flag on rotation
	isAdmin, err := f.isAdmin(ctx, claims.Netid)
	if err != nil {
		return nil, err
	}
	return f.issue(claims.Netid, isAdmin)
}

func (f *AuthFlowImpl) isAdmin(ctx context.Context, netid string) (bool, error) {
	grant, err := f.roleRepo.ByRoleAndEntity(ctx, models.RoleAdmin, netid)
	if err != nil {
		return false, err
	}
	return grant != nil, nil
}

func (f *AuthFlowImpl) issue(netid string, isAdmin bool) (*dto.LoginResponse, error) {
	access, refresh, err := f.tokenSvc.GenerateTokens(netid, isAdmin)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Netid:        netid,
		IsAdmin:      isAdmin,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int(f.tokenSvc.AccessTokenTTL() / time.Second),
	}, nil
}
