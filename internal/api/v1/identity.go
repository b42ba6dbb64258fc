// internal/api/v1/identity.go
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/qchem/gausscat/internal/api/auth"
	"github.com/qchem/gausscat/internal/api/middleware"
	"github.com/qchem/gausscat/internal/datastore/entities"
	"github.com/qchem/gausscat/internal/logger"
)

// TokenRequest is the body of POST /Identity/Token.
type TokenRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

// UserRequest creates or updates a user. Password is only read on create.
type UserRequest struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PasswordRequest changes a password. An empty current password resets it.
type PasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// RoleRequest creates or renames a role, or names the role to add a user to.
type RoleRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClaimRequest adds or removes a claim.
type ClaimRequest struct {
	ClaimType  string `json:"claimType"`
	ClaimValue string `json:"claimValue"`
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                string     `json:"id"`
	UserName          string     `json:"userName"`
	Email             string     `json:"email"`
	LockoutEnabled    bool       `json:"lockoutEnabled"`
	LockoutEnd        *time.Time `json:"lockoutEnd"`
	AccessFailedCount int        `json:"accessFailedCount"`
	CreatedAt         time.Time  `json:"createdAt"`
}

// RoleResponse is the public view of a role.
type RoleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClaimResponse is a stored claim.
type ClaimResponse struct {
	ID         uint   `json:"id"`
	ClaimType  string `json:"claimType"`
	ClaimValue string `json:"claimValue"`
}

func newUserResponse(u *entities.User) UserResponse {
	return UserResponse{
		ID:                u.ID,
		UserName:          u.UserName,
		Email:             u.Email,
		LockoutEnabled:    u.LockoutEnabled,
		LockoutEnd:        u.LockoutEnd,
		AccessFailedCount: u.AccessFailedCount,
		CreatedAt:         u.CreatedAt,
	}
}

func newRoleResponse(r *entities.Role) RoleResponse {
	return RoleResponse{ID: r.ID, Name: r.Name}
}

func userClaims(claims []entities.UserClaim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, cl := range claims {
		out = append(out, ClaimResponse{ID: cl.ID, ClaimType: cl.ClaimType, ClaimValue: cl.ClaimValue})
	}
	return out
}

func roleClaims(claims []entities.RoleClaim) []ClaimResponse {
	out := make([]ClaimResponse, 0, len(claims))
	for _, cl := range claims {
		out = append(out, ClaimResponse{ID: cl.ID, ClaimType: cl.ClaimType, ClaimValue: cl.ClaimValue})
	}
	return out
}

func (c *Controller) initIdentityRoutes() {
	sec := c.Settings.Security
	g := c.Group.Group("/Identity")

	g.POST("/Token", c.IssueToken, middleware.NewRateLimiter(sec.LoginRateLimit, sec.LoginBurst))

	// AdministratorPolicy
	admin := g.Group("", c.auth.Authenticate, auth.RequireRole(sec.AdministratorRole))

	admin.GET("/Users", c.ListUsers)
	admin.POST("/Users", c.CreateUser)
	admin.GET("/Users/:id", c.GetUser)
	admin.PUT("/Users/:id", c.UpdateUser)
	admin.DELETE("/Users/:id", c.DeleteUser)
	admin.PUT("/Users/:id/Password", c.SetPassword)
	admin.GET("/Users/:id/Roles", c.GetUserRoles)
	admin.POST("/Users/:id/Roles", c.AddUserRole)
	admin.DELETE("/Users/:id/Roles/:role", c.RemoveUserRole)
	admin.GET("/Users/:id/Claims", c.GetUserClaims)
	admin.POST("/Users/:id/Claims", c.AddUserClaim)
	admin.DELETE("/Users/:id/Claims", c.RemoveUserClaim)

	admin.GET("/Roles", c.ListRoles)
	admin.POST("/Roles", c.CreateRole)
	admin.GET("/Roles/:id", c.GetRole)
	admin.PUT("/Roles/:id", c.UpdateRole)
	admin.DELETE("/Roles/:id", c.DeleteRole)
	admin.GET("/Roles/:id/Claims", c.GetRoleClaims)
	admin.POST("/Roles/:id/Claims", c.AddRoleClaim)
	admin.DELETE("/Roles/:id/Claims", c.RemoveRoleClaim)
}

// bindJSON decodes the request body. On failure the problem is already written.
func bindJSON(ctx echo.Context, dst any) (bool, error) {
	if err := (&echo.DefaultBinder{}).BindBody(ctx, dst); err != nil {
		return false, WriteValidationProblem(ctx, map[string][]string{"$": {"The request body is not valid JSON."}})
	}
	return true, nil
}

// IssueToken exchanges credentials for a bearer token.
func (c *Controller) IssueToken(ctx echo.Context) error {
	var req TokenRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}

	token, err := c.Identity.Authenticate(ctx.Request().Context(), req.UserName, req.Password)
	if err != nil {
		if c.metrics != nil {
			c.metrics.HTTP.RecordAuthOperation("password", "token", "failure")
		}
		c.log.Info("token request rejected",
			logger.String("user", req.UserName),
			logger.String("ip", ctx.RealIP()))
		return c.HandleError(ctx, err, "token request failed")
	}
	if c.metrics != nil {
		c.metrics.HTTP.RecordAuthOperation("password", "token", "success")
	}
	return ctx.JSON(http.StatusOK, token)
}

// ListUsers handles GET /Identity/Users.
func (c *Controller) ListUsers(ctx echo.Context) error {
	users, err := c.Identity.ListUsers(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "failed to list users")
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, newUserResponse(&users[i]))
	}
	return ctx.JSON(http.StatusOK, out)
}

// CreateUser handles POST /Identity/Users.
func (c *Controller) CreateUser(ctx echo.Context) error {
	var req UserRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	user, err := c.Identity.CreateUser(ctx.Request().Context(), req.UserName, req.Email, req.Password)
	if err != nil {
		return c.HandleError(ctx, err, "failed to create user")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, c.prefix+"/Identity/Users/"+user.ID)
	return ctx.JSON(http.StatusCreated, newUserResponse(user))
}

// GetUser handles GET /Identity/Users/:id.
func (c *Controller) GetUser(ctx echo.Context) error {
	user, err := c.Identity.FindUserByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "failed to get user")
	}
	return ctx.JSON(http.StatusOK, newUserResponse(user))
}

// UpdateUser handles PUT /Identity/Users/:id.
func (c *Controller) UpdateUser(ctx echo.Context) error {
	id := ctx.Param("id")
	var req UserRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	if req.ID != "" && req.ID != id {
		return ctx.String(http.StatusBadRequest, IDMismatchMessage)
	}
	user, err := c.Identity.UpdateUser(ctx.Request().Context(), id, req.UserName, req.Email)
	if err != nil {
		return c.HandleError(ctx, err, "failed to update user")
	}
	return ctx.JSON(http.StatusOK, newUserResponse(user))
}

// DeleteUser handles DELETE /Identity/Users/:id and answers with the deleted user.
func (c *Controller) DeleteUser(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id := ctx.Param("id")

	user, err := c.Identity.FindUserByID(reqCtx, id)
	if err != nil {
		return c.HandleError(ctx, err, "failed to delete user")
	}
	if p := auth.PrincipalFrom(ctx); p != nil && p.UserID == id {
		return WriteProblem(ctx, NewProblem(ctx, http.StatusConflict, "You cannot delete your own account."))
	}
	if err := c.Identity.DeleteUser(reqCtx, id); err != nil {
		return c.HandleError(ctx, err, "failed to delete user")
	}
	return ctx.JSON(http.StatusOK, newUserResponse(user))
}

// SetPassword handles PUT /Identity/Users/:id/Password.
func (c *Controller) SetPassword(ctx echo.Context) error {
	id := ctx.Param("id")
	var req PasswordRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}

	var err error
	if req.CurrentPassword == "" {
		err = c.Identity.ResetPassword(ctx.Request().Context(), id, req.NewPassword)
	} else {
		err = c.Identity.ChangePassword(ctx.Request().Context(), id, req.CurrentPassword, req.NewPassword)
	}
	if err != nil {
		return c.HandleError(ctx, err, "failed to set password")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) writeUserRoles(ctx echo.Context, id string, status int) error {
	roles, err := c.Identity.GetRoles(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "failed to get user roles")
	}
	return ctx.JSON(status, roles)
}

// GetUserRoles handles GET /Identity/Users/:id/Roles.
func (c *Controller) GetUserRoles(ctx echo.Context) error {
	return c.writeUserRoles(ctx, ctx.Param("id"), http.StatusOK)
}

// AddUserRole handles POST /Identity/Users/:id/Roles with {"name": role}.
func (c *Controller) AddUserRole(ctx echo.Context) error {
	id := ctx.Param("id")
	var req RoleRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	if req.Name == "" {
		return WriteValidationProblem(ctx, map[string][]string{"name": {"The Name field is required."}})
	}
	if err := c.Identity.AddToRole(ctx.Request().Context(), id, req.Name); err != nil {
		return c.HandleError(ctx, err, "failed to add user to role")
	}
	return c.writeUserRoles(ctx, id, http.StatusOK)
}

// RemoveUserRole handles DELETE /Identity/Users/:id/Roles/:role.
func (c *Controller) RemoveUserRole(ctx echo.Context) error {
	id := ctx.Param("id")
	if err := c.Identity.RemoveFromRole(ctx.Request().Context(), id, ctx.Param("role")); err != nil {
		return c.HandleError(ctx, err, "failed to remove user from role")
	}
	return c.writeUserRoles(ctx, id, http.StatusOK)
}

// GetUserClaims handles GET /Identity/Users/:id/Claims.
func (c *Controller) GetUserClaims(ctx echo.Context) error {
	claims, err := c.Identity.GetUserClaims(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "failed to get user claims")
	}
	return ctx.JSON(http.StatusOK, userClaims(claims))
}

// AddUserClaim handles POST /Identity/Users/:id/Claims.
func (c *Controller) AddUserClaim(ctx echo.Context) error {
	var req ClaimRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	claim, err := c.Identity.AddUserClaim(ctx.Request().Context(), ctx.Param("id"), req.ClaimType, req.ClaimValue)
	if err != nil {
		return c.HandleError(ctx, err, "failed to add user claim")
	}
	return ctx.JSON(http.StatusCreated, userClaims([]entities.UserClaim{*claim})[0])
}

// RemoveUserClaim handles DELETE /Identity/Users/:id/Claims with the claim in the body.
func (c *Controller) RemoveUserClaim(ctx echo.Context) error {
	id := ctx.Param("id")
	var req ClaimRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	if err := c.Identity.RemoveUserClaim(ctx.Request().Context(), id, req.ClaimType, req.ClaimValue); err != nil {
		return c.HandleError(ctx, err, "failed to remove user claim")
	}
	return c.GetUserClaims(ctx)
}

// ListRoles handles GET /Identity/Roles.
func (c *Controller) ListRoles(ctx echo.Context) error {
	roles, err := c.Identity.ListRoles(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "failed to list roles")
	}
	out := make([]RoleResponse, 0, len(roles))
	for i := range roles {
		out = append(out, newRoleResponse(&roles[i]))
	}
	return ctx.JSON(http.StatusOK, out)
}

// CreateRole handles POST /Identity/Roles.
func (c *Controller) CreateRole(ctx echo.Context) error {
	var req RoleRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	role, err := c.Identity.CreateRole(ctx.Request().Context(), req.Name)
	if err != nil {
		return c.HandleError(ctx, err, "failed to create role")
	}
	ctx.Response().Header().Set(echo.HeaderLocation, c.prefix+"/Identity/Roles/"+role.ID)
	return ctx.JSON(http.StatusCreated, newRoleResponse(role))
}

// GetRole handles GET /Identity/Roles/:id.
func (c *Controller) GetRole(ctx echo.Context) error {
	role, err := c.Identity.FindRoleByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "failed to get role")
	}
	return ctx.JSON(http.StatusOK, newRoleResponse(role))
}

// UpdateRole handles PUT /Identity/Roles/:id.
func (c *Controller) UpdateRole(ctx echo.Context) error {
	id := ctx.Param("id")
	var req RoleRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	if req.ID != "" && req.ID != id {
		return ctx.String(http.StatusBadRequest, IDMismatchMessage)
	}
	role, err := c.Identity.UpdateRole(ctx.Request().Context(), id, req.Name)
	if err != nil {
		return c.HandleError(ctx, err, "failed to update role")
	}
	return ctx.JSON(http.StatusOK, newRoleResponse(role))
}

// DeleteRole handles DELETE /Identity/Roles/:id and answers with the deleted role.
func (c *Controller) DeleteRole(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	id := ctx.Param("id")

	role, err := c.Identity.FindRoleByID(reqCtx, id)
	if err != nil {
		return c.HandleError(ctx, err, "failed to delete role")
	}
	if err := c.Identity.DeleteRole(reqCtx, id); err != nil {
		return c.HandleError(ctx, err, "failed to delete role")
	}
	return ctx.JSON(http.StatusOK, newRoleResponse(role))
}

// GetRoleClaims handles GET /Identity/Roles/:id/Claims.
func (c *Controller) GetRoleClaims(ctx echo.Context) error {
	claims, err := c.Identity.GetRoleClaims(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return c.HandleError(ctx, err, "failed to get role claims")
	}
	return ctx.JSON(http.StatusOK, roleClaims(claims))
}

// AddRoleClaim handles POST /Identity/Roles/:id/Claims.
func (c *Controller) AddRoleClaim(ctx echo.Context) error {
	var req ClaimRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	claim, err := c.Identity.AddRoleClaim(ctx.Request().Context(), ctx.Param("id"), req.ClaimType, req.ClaimValue)
	if err != nil {
		return c.HandleError(ctx, err, "failed to add role claim")
	}
	return ctx.JSON(http.StatusCreated, roleClaims([]entities.RoleClaim{*claim})[0])
}

// RemoveRoleClaim handles DELETE /Identity/Roles/:id/Claims with the claim in the body.
func (c *Controller) RemoveRoleClaim(ctx echo.Context) error {
	var req ClaimRequest
	if ok, err := bindJSON(ctx, &req); !ok {
		return err
	}
	if err := c.Identity.RemoveRoleClaim(ctx.Request().Context(), ctx.Param("id"), req.ClaimType, req.ClaimValue); err != nil {
		return c.HandleError(ctx, err, "failed to remove role claim")
	}
	return c.GetRoleClaims(ctx)
}
