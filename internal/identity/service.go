package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qchem/gausscat/internal/conf"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/datastore/repository"
	"github.com/qchem/gausscat/internal/errors"
	"github.com/qchem/gausscat/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

// Field names used in validation errors.
const (
	FieldUserName        = "userName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldCurrentPassword = "currentPassword"
	FieldRoleName        = "name"
	FieldClaimType       = "claimType"
)

// Options tune password rules and lockout.
type Options struct {
	Policy     conf.PasswordPolicy
	Lockout    conf.LockoutSettings
	BcryptCost int // defaults to bcrypt.DefaultCost
}

// OptionsFromSettings builds Options from the security settings.
func OptionsFromSettings(s *conf.SecuritySettings) Options {
	return Options{Policy: s.Password, Lockout: s.Lockout}
}

// Service manages users, roles and claims and signs in users.
type Service struct {
	users  repository.UserRepository
	roles  repository.RoleRepository
	tokens *TokenIssuer
	opts   Options
	hasher hasher
	log    logger.Logger
	now    func() time.Time
}

// New creates a Service.
func New(users repository.UserRepository, roles repository.RoleRepository, tokens *TokenIssuer, opts Options, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewDiscard()
	}
	cost := opts.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:  users,
		roles:  roles,
		tokens: tokens,
		opts:   opts,
		hasher: hasher{cost: cost},
		log:    log,
		now:    time.Now,
	}
}

// CreateUser validates the password against the policy and stores a new user.
func (s *Service) CreateUser(ctx context.Context, userName, email, password string) (*entities.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, fieldError(FieldUserName, "The UserName field is required.")
	}
	if msgs := CheckPolicy(s.opts.Policy, password); len(msgs) > 0 {
		return nil, fieldError(FieldPassword, msgs...)
	}

	hash, err := s.hasher.hash(password)
	if err != nil {
		return nil, s.internal(err, "hash_password")
	}

	email = strings.TrimSpace(email)
	user := &entities.User{
		ID:                 uuid.NewString(),
		UserName:           userName,
		NormalizedUserName: Normalize(userName),
		Email:              email,
		NormalizedEmail:    Normalize(email),
		PasswordHash:       hash,
		SecurityStamp:      uuid.NewString(),
		LockoutEnabled:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user created", logger.String("user", userName), logger.String("user_id", user.ID))
	return s.users.GetByID(ctx, user.ID)
}

// FindUserByID returns repository.ErrNotFound for unknown ids.
func (s *Service) FindUserByID(ctx context.Context, id string) (*entities.User, error) {
	return s.users.GetByID(ctx, id)
}

// FindUserByName looks the user up by normalized name.
func (s *Service) FindUserByName(ctx context.Context, userName string) (*entities.User, error) {
	return s.users.GetByNormalizedName(ctx, Normalize(userName))
}

// ListUsers returns every user ordered by name.
func (s *Service) ListUsers(ctx context.Context) ([]entities.User, error) {
	return s.users.List(ctx)
}

// UpdateUser changes the name and email of a user.
func (s *Service) UpdateUser(ctx context.Context, id, userName, email string) (*entities.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, fieldError(FieldUserName, "The UserName field is required.")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	email = strings.TrimSpace(email)
	user.UserName = userName
	user.NormalizedUserName = Normalize(userName)
	user.Email = email
	user.NormalizedEmail = Normalize(email)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, id)
}

// DeleteUser removes the user with its role links and claims.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", logger.String("user_id", id))
	return nil
}

// ChangePassword replaces the password after verifying the current one.
// Existing tokens stop validating because the security stamp rotates.
func (s *Service) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !s.hasher.verify(user.PasswordHash, currentPassword) {
		return fieldError(FieldCurrentPassword, "Incorrect password.")
	}
	return s.setPassword(ctx, user, newPassword)
}

// ResetPassword replaces the password without the current one and clears any lockout.
func (s *Service) ResetPassword(ctx context.Context, id, newPassword string) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	user.AccessFailedCount = 0
	user.LockoutEnd = nil
	return s.setPassword(ctx, user, newPassword)
}

func (s *Service) setPassword(ctx context.Context, user *entities.User, password string) error {
	if msgs := CheckPolicy(s.opts.Policy, password); len(msgs) > 0 {
		return fieldError(FieldPassword, msgs...)
	}
	hash, err := s.hasher.hash(password)
	if err != nil {
		return s.internal(err, "hash_password")
	}
	user.PasswordHash = hash
	user.SecurityStamp = uuid.NewString()
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	s.log.Info("password changed", logger.String("user_id", user.ID))
	return nil
}

// IsLockedOut reports whether sign-in is currently blocked for the user.
func (s *Service) IsLockedOut(user *entities.User) bool {
	return user.LockoutEnabled && user.LockoutEnd != nil && user.LockoutEnd.After(s.now())
}

// CheckPassword verifies the password and maintains the failed access count.
// Reaching the configured maximum locks the account for the lockout duration.
func (s *Service) CheckPassword(ctx context.Context, user *entities.User, password string) error {
	if s.IsLockedOut(user) {
		return authError(ErrLockedOut, user.UserName)
	}

	if s.hasher.verify(user.PasswordHash, password) {
		if user.AccessFailedCount == 0 && user.LockoutEnd == nil {
			return nil
		}
		user.AccessFailedCount = 0
		user.LockoutEnd = nil
		return s.users.Update(ctx, user)
	}

	maxAttempts := s.opts.Lockout.MaxFailedAccessAttempts
	if user.LockoutEnabled && maxAttempts > 0 {
		user.AccessFailedCount++
		if user.AccessFailedCount >= maxAttempts {
			end := s.now().Add(s.opts.Lockout.Duration)
			user.LockoutEnd = &end
			user.AccessFailedCount = 0
			s.log.Warn("user locked out",
				logger.String("user", user.UserName),
				logger.Duration("duration", s.opts.Lockout.Duration))
		}
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		if user.LockoutEnd != nil {
			return authError(ErrLockedOut, user.UserName)
		}
	}
	return authError(ErrInvalidCredentials, user.UserName)
}

// Authenticate checks the credentials and issues an access token.
func (s *Service) Authenticate(ctx context.Context, userName, password string) (Token, error) {
	user, err := s.FindUserByName(ctx, userName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return Token{}, authError(ErrInvalidCredentials, userName)
		}
		return Token{}, err
	}
	if err := s.CheckPassword(ctx, user, password); err != nil {
		return Token{}, err
	}

	roles, err := s.GetRoles(ctx, user.ID)
	if err != nil {
		return Token{}, err
	}
	token, err := s.tokens.Issue(Principal{
		UserID:   user.ID,
		UserName: user.UserName,
		Roles:    roles,
		Stamp:    user.SecurityStamp,
	})
	if err != nil {
		return Token{}, err
	}

	s.log.Info("token issued", logger.String("user", user.UserName))
	return token, nil
}

// ValidateToken parses a bearer token and checks that the user still exists
// with the same security stamp. Roles are reloaded from the store, so role
// changes apply to tokens already issued.
func (s *Service) ValidateToken(ctx context.Context, raw string) (*Principal, error) {
	p, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, authError(ErrInvalidToken, p.UserName)
		}
		return nil, err
	}
	if user.SecurityStamp != p.Stamp {
		return nil, authError(ErrInvalidToken, p.UserName)
	}
	return s.PrincipalFor(ctx, user)
}

// PrincipalFor loads the current roles of a user, e.g. for a session login.
func (s *Service) PrincipalFor(ctx context.Context, user *entities.User) (*Principal, error) {
	roles, err := s.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Principal{UserID: user.ID, UserName: user.UserName, Roles: roles, Stamp: user.SecurityStamp}, nil
}

// GetRoles returns the role names of a user.
func (s *Service) GetRoles(ctx context.Context, userID string) ([]string, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	roles, err := s.users.GetRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for i := range roles {
		names = append(names, roles[i].Name)
	}
	return names, nil
}

// AddToRole puts the user in the named role.
func (s *Service) AddToRole(ctx context.Context, userID, roleName string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	role, err := s.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.users.AddRole(ctx, userID, role.ID)
}

// RemoveFromRole takes the user out of the named role.
func (s *Service) RemoveFromRole(ctx context.Context, userID, roleName string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	role, err := s.FindRoleByName(ctx, roleName)
	if err != nil {
		return err
	}
	return s.users.RemoveRole(ctx, userID, role.ID)
}

// GetUserClaims lists the claims of an existing user.
func (s *Service) GetUserClaims(ctx context.Context, userID string) ([]entities.UserClaim, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.GetClaims(ctx, userID)
}

// AddUserClaim attaches a claim to a user. ClaimType is required.
func (s *Service) AddUserClaim(ctx context.Context, userID, claimType, claimValue string) (*entities.UserClaim, error) {
	claimType = strings.TrimSpace(claimType)
	if claimType == "" {
		return nil, fieldError(FieldClaimType, "The ClaimType field is required.")
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	claim := &entities.UserClaim{UserID: userID, ClaimType: claimType, ClaimValue: claimValue}
	if err := s.users.AddClaim(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// RemoveUserClaim deletes the matching claim.
func (s *Service) RemoveUserClaim(ctx context.Context, userID, claimType, claimValue string) error {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	return s.users.RemoveClaim(ctx, userID, strings.TrimSpace(claimType), claimValue)
}

// CreateRole stores a new role. Returns a duplicate key error if the
// normalized name is taken.
func (s *Service) CreateRole(ctx context.Context, name string) (*entities.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError(FieldRoleName, "The Name field is required.")
	}
	role := &entities.Role{ID: uuid.NewString(), Name: name, NormalizedName: Normalize(name)}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	s.log.Info("role created", logger.String("role", name))
	return role, nil
}

// EnsureRole returns the named role, creating it when missing.
func (s *Service) EnsureRole(ctx context.Context, name string) (*entities.Role, error) {
	role, err := s.FindRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return s.CreateRole(ctx, name)
}

// FindRoleByID returns repository.ErrNotFound for unknown ids.
func (s *Service) FindRoleByID(ctx context.Context, id string) (*entities.Role, error) {
	return s.roles.GetByID(ctx, id)
}

// FindRoleByName looks the role up by normalized name.
func (s *Service) FindRoleByName(ctx context.Context, name string) (*entities.Role, error) {
	return s.roles.GetByNormalizedName(ctx, Normalize(name))
}

// ListRoles returns every role.
func (s *Service) ListRoles(ctx context.Context) ([]entities.Role, error) {
	return s.roles.List(ctx)
}

// UpdateRole renames a role.
func (s *Service) UpdateRole(ctx context.Context, id, name string) (*entities.Role, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fieldError(FieldRoleName, "The Name field is required.")
	}
	role := &entities.Role{ID: id, Name: name, NormalizedName: Normalize(name)}
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	return s.roles.GetByID(ctx, id)
}

// DeleteRole removes the role with its user links and claims. Tokens
// already issued lose the role on their next use.
func (s *Service) DeleteRole(ctx context.Context, id string) error {
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("role deleted", logger.String("role_id", id))
	return nil
}

// GetRoleClaims lists the claims of an existing role.
func (s *Service) GetRoleClaims(ctx context.Context, roleID string) ([]entities.RoleClaim, error) {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	return s.roles.GetClaims(ctx, roleID)
}

// AddRoleClaim attaches a claim to a role. ClaimType is required.
func (s *Service) AddRoleClaim(ctx context.Context, roleID, claimType, claimValue string) (*entities.RoleClaim, error) {
	claimType = strings.TrimSpace(claimType)
	if claimType == "" {
		return nil, fieldError(FieldClaimType, "The ClaimType field is required.")
	}
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return nil, err
	}
	claim := &entities.RoleClaim{RoleID: roleID, ClaimType: claimType, ClaimValue: claimValue}
	if err := s.roles.AddClaim(ctx, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// RemoveRoleClaim deletes the matching claim.
func (s *Service) RemoveRoleClaim(ctx context.Context, roleID, claimType, claimValue string) error {
	if _, err := s.roles.GetByID(ctx, roleID); err != nil {
		return err
	}
	return s.roles.RemoveClaim(ctx, roleID, strings.TrimSpace(claimType), claimValue)
}

func (s *Service) internal(err error, operation string) error {
	return errors.New(err).
		Component("identity").
		Category(errors.CategoryGeneric).
		Context("operation", operation).
		Build()
}
