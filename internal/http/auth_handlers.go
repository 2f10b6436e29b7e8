package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nix1947/statementTracker/internal/auth"
	"github.com/nix1947/statementTracker/internal/httperr"
	"github.com/nix1947/statementTracker/internal/mailer"
	"github.com/nix1947/statementTracker/internal/storage"
	"github.com/nix1947/statementTracker/internal/users"
	"github.com/nix1947/statementTracker/internal/validation"
)

const tokenTTL = 24 * time.Hour

// AuthHandler serves registration, login and the password flows. Everything
// identity-related that does not need an authenticated actor lives here.
type AuthHandler struct {
	Users     *users.Repo
	Service   *users.Service
	Mailer    mailer.Mailer
	JWTSecret []byte

	// ResetBaseURL is the front-end page the reset mail links to.
	ResetBaseURL string
}

type registerRequest struct {
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FullName  string  `json:"full_name"`
	Mobile    *string `json:"mobile"`
	Password  string  `json:"password"`
	Password2 string  `json:"password2"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var body registerRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	errs := validation.FieldErrors{}
	if len(body.Password) < 8 {
		errs.Add("password", "password must be at least 8 characters")
	}
	if body.Password != body.Password2 {
		errs.Add("password2", "passwords do not match")
	}
	if !errs.Empty() {
		return httperr.Write(c, errs)
	}

	u, err := users.New(body.Email, body.Username, body.FullName, body.Mobile, body.Password)
	if err != nil {
		return err
	}

	saved, err := h.Service.Create(c.UserContext(), u)
	if err != nil {
		return httperr.Write(c, err)
	}

	token, err := auth.GenerateToken(h.JWTSecret, saved.ID, tokenTTL)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(authResponse{Token: token})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var body loginRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := c.UserContext()
	u, err := h.Users.GetByEmail(ctx, validation.NormalizeEmail(body.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
		}
		return err
	}
	if !u.IsActive || !auth.CheckPassword(u.PasswordHash, body.Password) {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	if err := h.Users.TouchLastLogin(ctx, u.ID); err != nil {
		return err
	}

	token, err := auth.GenerateToken(h.JWTSecret, u.ID, tokenTTL)
	if err != nil {
		return err
	}
	return c.JSON(authResponse{Token: token})
}

type changePasswordRequest struct {
	OldPassword  string `json:"old_password"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

// ChangePassword requires the current password even though the caller is
// already authenticated.
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	actor := auth.ActorFromCtx(c)
	if actor == nil {
		return fiber.ErrUnauthorized
	}

	var body changePasswordRequest
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := c.UserContext()
	u, err := h.Users.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}

	errs := validation.FieldErrors{}
	if !auth.CheckPassword(u.PasswordHash, body.OldPassword) {
		errs.Add("old_password", "old password is incorrect")
	}
	if len(body.NewPassword) < 8 {
		errs.Add("new_password", "password must be at least 8 characters")
	}
	if body.NewPassword != body.NewPassword2 {
		errs.Add("new_password2", "passwords do not match")
	}
	if !errs.Empty() {
		return httperr.Write(c, errs)
	}

	hash, err := auth.HashPassword(body.NewPassword)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "password changed"})
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// RequestPasswordReset mails a reset link. The response is identical whether
// or not the address exists, so the endpoint cannot be used to probe for
// accounts.
func (h *AuthHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var body resetRequestBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	ctx := c.UserContext()
	accepted := func() error {
		return c.JSON(fiber.Map{"status": "if the account exists, a reset link has been sent"})
	}

	u, err := h.Users.GetByEmail(ctx, validation.NormalizeEmail(body.Email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return accepted()
		}
		return err
	}
	if !u.IsActive {
		return accepted()
	}

	token := auth.MakeResetToken(h.JWTSecret, u.ID, u.PasswordHash, time.Now())
	link := h.ResetBaseURL + "?uid=" + u.ID + "&token=" + token
	mail := "Use the link below to choose a new password. It expires in 2 hours.\n\n" + link
	if err := h.Mailer.Send(ctx, u.Email, "Password reset", mail); err != nil {
		return err
	}
	return accepted()
}

type resetConfirmBody struct {
	UserID       string `json:"uid"`
	Token        string `json:"token"`
	NewPassword  string `json:"new_password"`
	NewPassword2 string `json:"new_password2"`
}

// ConfirmPasswordReset exchanges a valid reset token for a new password.
// The token is bound to the current hash, so it dies the moment it is used.
func (h *AuthHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var body resetConfirmBody
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid body")
	}

	errs := validation.FieldErrors{}
	if len(body.NewPassword) < 8 {
		errs.Add("new_password", "password must be at least 8 characters")
	}
	if body.NewPassword != body.NewPassword2 {
		errs.Add("new_password2", "passwords do not match")
	}
	if !errs.Empty() {
		return httperr.Write(c, errs)
	}

	ctx := c.UserContext()
	u, err := h.Users.GetByID(ctx, body.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fiber.NewError(fiber.StatusBadRequest, "invalid reset token")
		}
		return err
	}

	if err := auth.CheckResetToken(h.JWTSecret, u.ID, u.PasswordHash, body.Token, time.Now()); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid reset token")
	}

	hash, err := auth.HashPassword(body.NewPassword)
	if err != nil {
		return err
	}
	if err := h.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"status": "password reset"})
}
