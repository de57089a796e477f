package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ptwell/clinic-scheduler/internal/config"
	"github.com/ptwell/clinic-scheduler/internal/repository"
	"github.com/ptwell/clinic-scheduler/internal/schedule"
	"github.com/ptwell/clinic-scheduler/internal/utils"
)

// AuthHandler bundles dependencies for the auth endpoints.
type AuthHandler struct {
	Cfg        config.Config
	Users      *repository.UserRepo
	Patients   *repository.PatientRepo
	Therapists *repository.TherapistRepo
	Tokens     *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, p *repository.PatientRepo,
	t *repository.TherapistRepo, tk *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Patients: p, Therapists: t, Tokens: tk}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	DOB      string `json:"dob"`
	Phone    string `json:"phone"`
	Username string `json:"username"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
type changePasswordReq struct {
	UserID          int64  `json:"userId"`
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}
type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	UserID                 int64   `json:"userId"`
	Username               string  `json:"username"`
	Role                   string  `json:"role"`
	PatientID              *int64  `json:"patientId"`
	StaffID                *int64  `json:"staffId"`
	PatientName            *string `json:"patientName"`
	TherapistName          *string `json:"therapistName"`
	NeedsPasswordReset     bool    `json:"needsPasswordReset"`
	NeedsProfileCompletion bool    `json:"needsProfileCompletion"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

// Signup registers a patient account. The patient row and its pending user
// are created in one transaction so neither exists without the other; the
// role stays "pending" until onboarding completes.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))

	var errs []string
	if req.Name == "" {
		errs = append(errs, "A name is required.")
	}
	if _, ok := schedule.ParseDate(req.DOB); !ok {
		errs = append(errs, "A valid date of birth is required.")
	}
	if req.Phone == "" {
		errs = append(errs, "A phone number is required.")
	}
	if len(req.Username) < 3 {
		errs = append(errs, "Username must be at least 3 characters.")
	}
	if len(req.Password) < 8 {
		errs = append(errs, "Password must be at least 8 characters.")
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Validation failed.", "errors": errs})
	}

	hash, salt, err := utils.CreatePasswordRecord(req.Password, h.Cfg.PBKDF2Iterations)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	tx, err := h.Users.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if taken, err := h.Users.UsernameExistsTx(ctx, tx, req.Username); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	} else if taken {
		return c.JSON(http.StatusConflict, echo.Map{"message": "That username is already taken."})
	}

	patientID, err := h.Patients.CreateTx(ctx, tx, req.Name, req.DOB, req.Phone)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	if _, err := h.Users.CreatePendingPatientTx(ctx, tx, req.Username, hash, salt, patientID); err != nil {
		if errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "That username is already taken."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create account."})
	}
	committed = true

	return c.JSON(http.StatusCreated, echo.Map{"patientId": patientID, "username": req.Username})
}

// Login verifies credentials and returns the user payload with a fresh
// access/refresh pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	req.Username = strings.ToLower(strings.TrimSpace(req.Username))
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Username and password are required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err == sql.ErrNoRows || (err == nil && !u.VerifyCredentials(req.Password, h.Cfg.PBKDF2Iterations)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid username or password."})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}

	user := userPart{
		UserID:                 u.UserID,
		Username:               u.Username,
		Role:                   u.Role,
		NeedsPasswordReset:     u.NeedsPasswordReset,
		NeedsProfileCompletion: u.Role == "pending",
	}
	if u.PatientID.Valid {
		id := u.PatientID.Int64
		user.PatientID = &id
		if name, err := h.Patients.GetName(ctx, id); err == nil {
			user.PatientName = &name
		}
	}
	if u.StaffID.Valid {
		id := u.StaffID.Int64
		user.StaffID = &id
		if name, err := h.Therapists.StaffName(ctx, id); err == nil {
			user.TherapistName = &name
		}
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uint64(u.UserID), u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.UserID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Login failed."})
	}

	return c.JSON(http.StatusOK, authResp{
		User:    user,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw goes back to the client
	})
}

// ChangePassword verifies the current password and stores a fresh credential
// record, clearing the reset flag.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body."})
	}
	if req.UserID <= 0 || req.CurrentPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "User id and current password are required."})
	}
	if len(req.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "New password must be at least 8 characters."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, req.UserID)
	if err == sql.ErrNoRows || (err == nil && !u.VerifyCredentials(req.CurrentPassword, h.Cfg.PBKDF2Iterations)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Current password is incorrect."})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}

	hash, salt, err := utils.CreatePasswordRecord(req.NewPassword, h.Cfg.PBKDF2Iterations)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}
	if err := h.Users.UpdatePassword(ctx, u.UserID, hash, salt); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not change password."})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// access/refresh pair is issued.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A refresh token is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	hashed := utils.HashRefreshRaw(req.RefreshToken)
	userID, err := h.Tokens.ValidateRefresh(ctx, hashed)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired refresh token."})
	}
	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid or expired refresh token."})
	}

	if err := h.Tokens.RevokeByHash(ctx, hashed); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not refresh session."})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, uint64(u.UserID), u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not refresh session."})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not refresh session."})
	}
	if err := h.Tokens.StoreRefresh(ctx, u.UserID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not refresh session."})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"access":  tokenPart{Token: access.Token, Expires: access.Exp},
		"refresh": tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// Logout revokes the presented refresh token. Idempotent.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "A refresh token is required."})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(req.RefreshToken)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not log out."})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
