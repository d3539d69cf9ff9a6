package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Idahel/js-project-api/internal/services"
	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

// UserHandler provides sign-up, sign-in and the protected demo endpoint.
type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

// UserRouter registers user routes on the given router.
func UserRouter(
	r chi.Router,
	userService *services.UserService,
	authMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) {
	handler := NewUserHandler(userService, logger)

	r.Post("/users", handler.SignUp)
	r.Post("/sessions", handler.SignIn)
	r.With(authMiddleware).Get("/secrets", withUser(handler.Secrets))
}

// SignUp creates an account and returns its access token.
func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req services.SignUpInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	user, err := h.userService.SignUp(r.Context(), req)
	if err != nil {
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, "Could not create user.", verr.Fields)
		case errors.Is(err, store.ErrConflict):
			writeError(w, http.StatusConflict, "That name or email is already taken.", nil)
		default:
			h.logger.ErrorContext(r.Context(), "failed to create user", "error", err)
			writeError(w, http.StatusInternalServerError, "Could not create user.", nil)
		}
		return
	}

	h.logger.InfoContext(r.Context(), "user signed up", "user_id", user.ID)
	writeSuccess(w, http.StatusCreated, SignUpResponse{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		AccessToken: user.AccessToken,
	}, "User created successfully.")
}

// SignIn verifies credentials and returns the user's existing token.
func (h *UserHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	user, err := h.userService.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid email or password.", nil)
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to sign in", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not sign in.", nil)
		return
	}

	writeSuccess(w, http.StatusOK, SignInResponse{
		ID:          user.ID,
		Name:        user.Name,
		AccessToken: user.AccessToken,
	}, "Signed in successfully.")
}

// Secrets greets the authenticated caller.
func (h *UserHandler) Secrets(w http.ResponseWriter, r *http.Request, user types.User) {
	greeting := fmt.Sprintf("Hello %s, this is a secret message only signed-in users can read.", user.Name)
	writeSuccess(w, http.StatusOK, SecretResponse{Secret: greeting}, "Access granted.")
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AccessToken string `json:"accessToken"`
}

type SignInResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"accessToken"`
}

type SecretResponse struct {
	Secret string `json:"secret"`
}
