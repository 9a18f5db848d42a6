package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"sync/atomic"
	"time"

	"masters-marketplace/config"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"
)

const (
	OTPKeyPrefix = "otp:"
	otpDigits    = 6
	smsTimeout   = 30 * time.Second
)

var ErrInvalidOTP = errors.New("invalid or expired otp code")

// SMSSender delivers a text message to a phone number.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// logSMSSender writes messages to the log instead of a carrier.
type logSMSSender struct {
	log *logrus.Logger
}

func NewLogSMSSender(log *logrus.Logger) SMSSender {
	return &logSMSSender{log: log}
}

func (s *logSMSSender) Send(ctx context.Context, phone, message string) error {
	s.log.WithField("phone_number", phone).Info(message)
	return nil
}

// OTPService issues one-time password reset codes stored in Redis.
type OTPService struct {
	redisClient *redis.Client
	log         *logrus.Logger
	sender      SMSSender
	ttl         time.Duration

	// tracks in-flight deliveries
	wg      conc.WaitGroup
	stopped atomic.Bool
}

func NewOTPService(redisClient *redis.Client, log *logrus.Logger, sender SMSSender, cfg config.OTPConfig) *OTPService {
	return &OTPService{
		redisClient: redisClient,
		log:         log,
		sender:      sender,
		ttl:         cfg.TTL,
	}
}

func OTPKey(phone string) string {
	return OTPKeyPrefix + phone
}

// Issue stores a fresh code for phone and sends it in the background.
// The caller does not wait for delivery.
func (s *OTPService) Issue(ctx context.Context, phone string) error {
	code, err := generateCode(otpDigits)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	if err := s.redisClient.Set(ctx, OTPKey(phone), code, s.ttl).Err(); err != nil {
		s.log.Warnf("Failed to store otp for %s: %+v", phone, err)
		return err
	}

	if s.stopped.Load() {
		s.log.Warnf("OTP service stopped, code for %s not sent", phone)
		return nil
	}

	s.wg.Go(func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), smsTimeout)
		defer cancel()

		message := fmt.Sprintf("Şifrə bərpası kodu: %s", code)
		if err := s.sender.Send(sendCtx, phone, message); err != nil {
			s.log.Warnf("Failed to send otp sms to %s: %+v", phone, err)
		}
	})
	return nil
}

// Verify compares code with the stored one without consuming it.
func (s *OTPService) Verify(ctx context.Context, phone, code string) error {
	stored, err := s.redisClient.Get(ctx, OTPKey(phone)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidOTP
		}
		s.log.Warnf("Failed to read otp for %s: %+v", phone, err)
		return err
	}

	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return ErrInvalidOTP
	}
	return nil
}

func (s *OTPService) Delete(ctx context.Context, phone string) error {
	return s.redisClient.Del(ctx, OTPKey(phone)).Err()
}

// Stop waits for pending deliveries.
func (s *OTPService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		s.wg.Wait()
		s.log.Info("OTPService stopped")
	}
}

func generateCode(digits int) (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", digits, n), nil
}
