package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/services"
)

// RegisterRequest is the sign-up payload.
type RegisterRequest struct {
	Username     string  `json:"username" binding:"required" example:"jane"`
	Email        string  `json:"email" binding:"required" example:"jane@example.com"`
	Password     string  `json:"password" binding:"required" example:"s3cret!"`
	Name         string  `json:"name" binding:"required" example:"Jane Doe"`
	Phone        *string `json:"phone,omitempty" example:"+212600000000"`
	IsSalonOwner bool    `json:"is_salon_owner"`
}

// LoginRequest accepts a username or an email as login.
type LoginRequest struct {
	Login    string `json:"login" binding:"required" example:"jane@example.com"`
	Password string `json:"password" binding:"required" example:"s3cret!"`
}

// UpdateProfileRequest is a partial profile update; omitted fields stay.
type UpdateProfileRequest struct {
	Username     *string `json:"username,omitempty"`
	Email        *string `json:"email,omitempty"`
	Password     *string `json:"password,omitempty"`
	Name         *string `json:"name,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	IsSalonOwner *bool   `json:"is_salon_owner,omitempty"`
}

// AuthResponse carries the account and a bearer token.
type AuthResponse struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.RegisterRequest  true  "Account"
// @Success     201   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse  "Username or email taken"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Register(c.Request.Context(), services.RegisterInput{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Phone:        req.Phone,
		IsSalonOwner: req.IsSalonOwner,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusCreated, u)
}

// Login godoc
// @ID          login
// @Summary     Exchange credentials for a token
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid credentials"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		failFromError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, u)
}

// Me godoc
// @ID          me
// @Summary     Current account
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse
// @Failure     404  {object}  handlers.ErrorResponse
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	u, err := h.users.Get(c.Request.Context(), cl.ID)
	if err != nil {
		failFromError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// UpdateMe godoc
// @ID          updateMe
// @Summary     Update the current account
// @Description Partial update. A changed owner flag is reflected in the returned token.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.UpdateProfileRequest  true  "Changes"
// @Success     200   {object}  handlers.AuthResponse
// @Failure     400   {object}  handlers.ErrorResponse
// @Failure     409   {object}  handlers.ErrorResponse
// @Router      /auth/me [patch]
func (h *Handlers) UpdateMe(c *gin.Context) {
	cl, found := caller(c)
	if !found {
		return
	}
	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), cl, services.UserPatch{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		Name:         req.Name,
		Phone:        req.Phone,
		IsSalonOwner: req.IsSalonOwner,
	})
	if err != nil {
		failFromError(c, err)
		return
	}
	h.respondWithToken(c, http.StatusOK, u)
}

func (h *Handlers) respondWithToken(c *gin.Context, status int, u *domain.User) {
	tok, err := h.tokens.Issue(u.ID, u.IsSalonOwner)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not issue token")
		return
	}
	ok(c, status, AuthResponse{User: u, Token: tok})
}
