package controller

import (
	"errors"

	"lms_backend/internal/service"
	"lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Auth *service.AuthService
}

func NewAuthController(auth *service.AuthService) *AuthController {
	return &AuthController{Auth: auth}
}

type sendOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// @Summary Send login OTP
// @Tags auth
// @Accept json
// @Produce json
// @Param body body sendOTPRequest true "Phone number"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Router /auth/otp/send [post]
func (c *AuthController) SendOTP(ctx *gin.Context) {
	var req sendOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "phone number is required")
		return
	}

	if err := c.Auth.SendOTP(ctx.Request.Context(), req.Phone); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"message": "OTP sent successfully"})
}

type verifyOTPRequest struct {
	Phone string `json:"phone" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

// @Summary Verify OTP and log in
// @Tags auth
// @Accept json
// @Produce json
// @Param body body verifyOTPRequest true "Phone and code"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response
// @Failure 401 {object} util.Response
// @Router /auth/otp/verify [post]
func (c *AuthController) VerifyOTP(ctx *gin.Context) {
	var req verifyOTPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "phone and otp are required")
		return
	}

	token, user, err := c.Auth.VerifyOTP(ctx.Request.Context(), req.Phone, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrOTPNotFound):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrOTPMismatch):
			util.Error(ctx, 401, err.Error())
		case errors.Is(err, util.ErrUserDisabled):
			util.Forbidden(ctx)
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"token": token, "user": user})
}
