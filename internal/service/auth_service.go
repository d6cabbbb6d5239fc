package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// OTPStore keeps one-time codes with expiry. Codes disappear on their own;
// there is no unbounded in-process map behind this.
type OTPStore interface {
	Put(ctx context.Context, phone, code string, ttl time.Duration) error
	Get(ctx context.Context, phone string) (string, error)
	Delete(ctx context.Context, phone string) error
}

const otpKeyPrefix = "otp:"

type RedisOTPStore struct {
	Client *redis.Client
}

func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{Client: client}
}

func (s *RedisOTPStore) Put(ctx context.Context, phone, code string, ttl time.Duration) error {
	return s.Client.Set(ctx, otpKeyPrefix+phone, code, ttl).Err()
}

func (s *RedisOTPStore) Get(ctx context.Context, phone string) (string, error) {
	code, err := s.Client.Get(ctx, otpKeyPrefix+phone).Result()
	if err == redis.Nil {
		return "", nil
	}
	return code, err
}

func (s *RedisOTPStore) Delete(ctx context.Context, phone string) error {
	return s.Client.Del(ctx, otpKeyPrefix+phone).Err()
}

// SMSSender delivers the code. The gateway is an external collaborator;
// the default implementation only logs.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

type LogSMSSender struct{}

func (LogSMSSender) Send(ctx context.Context, phone, message string) error {
	logger.Log.Info("sms (log sender)", zap.String("phone", phone), zap.String("message", message))
	return nil
}

type AuthService struct {
	Users  *repository.UserRepository
	Store  OTPStore
	Sender SMSSender
	Config *config.Config
}

func NewAuthService(users *repository.UserRepository, store OTPStore, sender SMSSender, cfg *config.Config) *AuthService {
	return &AuthService{
		Users:  users,
		Store:  store,
		Sender: sender,
		Config: cfg,
	}
}

func GenerateOTPCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		code[i] = byte('0' + n.Int64())
	}
	return string(code), nil
}

func (s *AuthService) SendOTP(ctx context.Context, phone string) error {
	code, err := GenerateOTPCode(s.Config.OTP.CodeLength)
	if err != nil {
		return err
	}

	ttl := time.Duration(s.Config.OTP.TTLMinutes) * time.Minute
	if err := s.Store.Put(ctx, phone, code, ttl); err != nil {
		return err
	}

	return s.Sender.Send(ctx, phone, fmt.Sprintf("Your login code is: %s", code))
}

// VerifyOTP checks the code, burns it, and issues a token for the phone's
// account, creating the account on first login.
func (s *AuthService) VerifyOTP(ctx context.Context, phone, code string) (string, *model.User, error) {
	stored, err := s.Store.Get(ctx, phone)
	if err != nil {
		return "", nil, err
	}
	if stored == "" {
		return "", nil, util.ErrOTPNotFound
	}
	if stored != code {
		return "", nil, util.ErrOTPMismatch
	}

	if err := s.Store.Delete(ctx, phone); err != nil {
		logger.Log.Warn("failed to burn used OTP", zap.String("phone", phone), zap.Error(err))
	}

	user, err := s.Users.FindOrCreateByPhone(phone)
	if err != nil {
		return "", nil, err
	}
	if user.Disabled {
		return "", nil, util.ErrUserDisabled
	}

	token, err := util.GenerateJWT(user, s.Config.JWT.Secret, s.Config.JWT.ExpireTime)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}
