package service

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"masters-marketplace/config"
	"masters-marketplace/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu       sync.Mutex
	messages map[string]string
}

func (s *recordingSender) Send(ctx context.Context, phone, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[phone] = message
	return nil
}

func newTestOTP(t *testing.T) (*OTPService, *miniredis.Miniredis, *recordingSender) {
	t.Helper()
	mr, client := testutil.NewRedis(t)
	sender := &recordingSender{messages: map[string]string{}}
	return NewOTPService(client, testutil.NewLogger(), sender, config.OTPConfig{TTL: 180 * time.Second}), mr, sender
}

func TestOTPIssueAndVerify(t *testing.T) {
	svc, mr, sender := newTestOTP(t)
	ctx := context.Background()
	phone := "+994501234567"

	require.NoError(t, svc.Issue(ctx, phone))
	svc.Stop()

	code, err := mr.Get(OTPKey(phone))
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9]{6}$`), code)
	assert.Equal(t, 180*time.Second, mr.TTL(OTPKey(phone)))
	assert.Contains(t, sender.messages[phone], code)

	assert.ErrorIs(t, svc.Verify(ctx, phone, "not-it"), ErrInvalidOTP)
	assert.NoError(t, svc.Verify(ctx, phone, code))

	require.NoError(t, svc.Delete(ctx, phone))
	assert.ErrorIs(t, svc.Verify(ctx, phone, code), ErrInvalidOTP)
}

func TestOTPExpires(t *testing.T) {
	svc, mr, _ := newTestOTP(t)
	ctx := context.Background()
	phone := "+994501234567"

	require.NoError(t, svc.Issue(ctx, phone))
	code, err := mr.Get(OTPKey(phone))
	require.NoError(t, err)

	mr.FastForward(181 * time.Second)
	assert.ErrorIs(t, svc.Verify(ctx, phone, code), ErrInvalidOTP)
	svc.Stop()
}

func TestGenerateCodeKeepsLeadingZeros(t *testing.T) {
	for i := 0; i < 50; i++ {
		code, err := generateCode(6)
		require.NoError(t, err)
		assert.Len(t, code, 6)
	}
}
