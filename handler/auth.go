package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nileshkulkarniy/emotionsense/middleware"
	"github.com/nileshkulkarniy/emotionsense/model"
	"github.com/nileshkulkarniy/emotionsense/service"
	"github.com/nileshkulkarniy/emotionsense/utils"
	"go.uber.org/zap"
)

const (
	minPasswordLength = 6
	sessionCookie     = "session_id"
)

type AuthHandler struct {
	store    *service.UserStore
	tokens   *service.TokenService
	sessions *service.SessionService
}

func NewAuthHandler(store *service.UserStore, tokens *service.TokenService, sessions *service.SessionService) *AuthHandler {
	return &AuthHandler{
		store:    store,
		tokens:   tokens,
		sessions: sessions,
	}
}

// Register 注册新账号
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Username, email, and password are required",
		})
		return
	}

	if len(req.Password) < minPasswordLength {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Password must be at least 6 characters long",
		})
		return
	}

	user, err := h.store.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserExists) {
			c.JSON(http.StatusBadRequest, model.AuthResponse{
				Success: false,
				Message: "User already exists with this email or username",
			})
			return
		}
		utils.Logger.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.AuthResponse{
			Success: false,
			Message: "Error registering user: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, model.AuthResponse{
		Success: true,
		User:    user,
		Message: "User created successfully",
	})
}

// Login 登录并签发访问令牌
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Email and password are required",
		})
		return
	}

	user, err := h.store.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, model.AuthResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		if errors.Is(err, service.ErrInvalidPassword) {
			c.JSON(http.StatusUnauthorized, model.AuthResponse{
				Success: false,
				Message: "Invalid password",
			})
			return
		}
		utils.Logger.Error("failed to authenticate user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.AuthResponse{
			Success: false,
			Message: "Error logging in: " + err.Error(),
		})
		return
	}

	token, err := h.tokens.Generate(user.ID)
	if err != nil {
		utils.Logger.Error("failed to generate token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.AuthResponse{
			Success: false,
			Message: "Error logging in: " + err.Error(),
		})
		return
	}

	// 会话记录写入失败不影响登录
	if h.sessions != nil {
		session, err := h.sessions.Create(context.WithoutCancel(c.Request.Context()), user.ID)
		if err != nil {
			utils.Logger.Warn("failed to create session", zap.Error(err))
		} else {
			maxAge := int(time.Until(session.ExpiresAt).Seconds())
			c.SetCookie(sessionCookie, session.ID, maxAge, "/", "", false, true)
		}
	}

	c.JSON(http.StatusOK, model.AuthResponse{
		Success:     true,
		User:        user,
		Message:     "Authentication successful",
		AccessToken: token,
	})
}

// Logout 删除登录时写入的会话记录并清除会话Cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.sessions != nil {
		if sessionID, err := c.Cookie(sessionCookie); err == nil && sessionID != "" {
			ctx := context.WithoutCancel(c.Request.Context())
			session, err := h.sessions.Get(ctx, sessionID)
			if err != nil {
				utils.Logger.Warn("failed to look up session", zap.Error(err))
			}
			if session != nil {
				if err := h.sessions.Delete(ctx, session.ID); err != nil {
					utils.Logger.Warn("failed to delete session", zap.Error(err))
				}
			}
		}
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, model.AuthResponse{
		Success: true,
		Message: "Logged out successfully",
	})
}

// GetProfile 获取当前用户资料
func (h *AuthHandler) GetProfile(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	user, err := h.store.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, model.AuthResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		utils.Logger.Error("failed to get profile", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.AuthResponse{
			Success: false,
			Message: "Error retrieving profile: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{
		Success: true,
		User:    user,
	})
}

// UpdateProfile 更新当前用户资料；id 和 email 在这里剥离
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var updates map[string]any
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	// 身份字段不允许通过资料更新修改
	delete(updates, "id")
	delete(updates, "_id")
	delete(updates, "email")

	user, err := h.store.UpdateProfile(c.Request.Context(), userID, updates)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoChanges):
			c.JSON(http.StatusBadRequest, model.AuthResponse{
				Success: false,
				Message: "No changes made to profile",
			})
		case errors.Is(err, service.ErrUserExists):
			c.JSON(http.StatusBadRequest, model.AuthResponse{
				Success: false,
				Message: "Username already taken",
			})
		default:
			utils.Logger.Error("failed to update profile", zap.Error(err))
			c.JSON(http.StatusInternalServerError, model.AuthResponse{
				Success: false,
				Message: "Error updating profile: " + err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{
		Success: true,
		User:    user,
		Message: "Profile updated successfully",
	})
}

// ChangePassword 校验当前密码后重新散列新密码
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Invalid request body",
		})
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "Current password and new password are required",
		})
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		c.JSON(http.StatusBadRequest, model.AuthResponse{
			Success: false,
			Message: "New password must be at least 6 characters long",
		})
		return
	}

	if err := h.store.VerifyPassword(c.Request.Context(), userID, req.CurrentPassword); err != nil {
		c.JSON(http.StatusUnauthorized, model.AuthResponse{
			Success: false,
			Message: "Current password is incorrect",
		})
		return
	}

	if _, err := h.store.UpdateProfile(c.Request.Context(), userID, map[string]any{"password": req.NewPassword}); err != nil {
		utils.Logger.Error("failed to change password", zap.Error(err))
		c.JSON(http.StatusInternalServerError, model.AuthResponse{
			Success: false,
			Message: "Error changing password: " + err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, model.AuthResponse{
		Success: true,
		Message: "Password updated successfully",
	})
}
