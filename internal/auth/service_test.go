package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/database"
	"kharcha/internal/store"
)

// fakeSender records dispatched messages and can be told to fail.
type fakeSender struct {
	sent []string // "to|body"
	fail bool
}

func (f *fakeSender) Send(to, body string) error {
	if f.fail {
		return fmt.Errorf("provider rejected send")
	}
	f.sent = append(f.sent, to+"|"+body)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeSender, *store.OTPStore, *store.CredentialStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { db.Close() })

	cs := store.NewCredentialStore(db)
	os := store.NewOTPStore(db)
	sender := &fakeSender{}
	svc := NewService(cs, os, sender, "+91", "test-secret", slog.Default())
	return svc, sender, os, cs
}

func TestGenerateCodeRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestRequestOTPStoresAndDispatches(t *testing.T) {
	svc, sender, otps, _ := newTestService(t)

	err := svc.RequestOTP(context.Background(), "9876543210")
	require.NoError(t, err)

	pending, err := otps.Get("9876543210")
	require.NoError(t, err)
	require.NotNil(t, pending, "pending code should be stored")

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "+919876543210|Your OTP is: "+pending.Code, sender.sent[0])
}

func TestRequestOTPInvalidPhone(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, phone := range []string{"", "12345", "98765432101", "98765abcde"} {
		err := svc.RequestOTP(context.Background(), phone)
		assert.ErrorIs(t, err, ErrInvalidPhone, "phone %q", phone)
	}
}

func TestRequestOTPDispatchFailureRollsBack(t *testing.T) {
	svc, sender, otps, _ := newTestService(t)
	sender.fail = true

	err := svc.RequestOTP(context.Background(), "9876543210")
	require.ErrorIs(t, err, ErrDispatch)

	pending, err := otps.Get("9876543210")
	require.NoError(t, err)
	assert.Nil(t, pending, "pending code must be rolled back when dispatch fails")
}

func TestVerifyAndRegisterHappyPath(t *testing.T) {
	svc, _, otps, creds := newTestService(t)

	require.NoError(t, svc.RequestOTP(context.Background(), "9876543210"))
	pending, err := otps.Get("9876543210")
	require.NoError(t, err)

	err = svc.VerifyAndRegister(context.Background(), "9876543210", pending.Code, "password123")
	require.NoError(t, err)

	cred, err := creds.GetByPhone("9876543210")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.NotEqual(t, "password123", cred.PasswordHash, "password must never be stored in plaintext")

	// The code is consumed; replaying it reads as invalid.
	err = svc.VerifyAndRegister(context.Background(), "9876543210", pending.Code, "password123")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyAndRegisterWrongCodeRetryable(t *testing.T) {
	svc, _, otps, _ := newTestService(t)

	require.NoError(t, svc.RequestOTP(context.Background(), "9876543210"))
	pending, err := otps.Get("9876543210")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == pending.Code {
		wrong = "000001"
	}
	err = svc.VerifyAndRegister(context.Background(), "9876543210", wrong, "password123")
	require.ErrorIs(t, err, ErrInvalidCode)

	// Mismatch leaves the pending code intact; the correct code works.
	err = svc.VerifyAndRegister(context.Background(), "9876543210", pending.Code, "password123")
	assert.NoError(t, err)
}

func TestVerifyAndRegisterNoPendingIndistinguishable(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	err := svc.VerifyAndRegister(context.Background(), "9876543210", "123456", "password123")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyAndRegisterExpired(t *testing.T) {
	svc, _, otps, _ := newTestService(t)

	_, err := otps.Put("9876543210", "482913", -OTPTTL)
	require.NoError(t, err)

	err = svc.VerifyAndRegister(context.Background(), "9876543210", "482913", "password123")
	assert.ErrorIs(t, err, ErrOTPExpired)
}

func TestVerifyAndRegisterEmptyPassword(t *testing.T) {
	svc, _, otps, _ := newTestService(t)

	require.NoError(t, svc.RequestOTP(context.Background(), "9876543210"))
	pending, err := otps.Get("9876543210")
	require.NoError(t, err)

	err = svc.VerifyAndRegister(context.Background(), "9876543210", pending.Code, "")
	assert.ErrorIs(t, err, ErrInvalidPassword)
	assert.NotErrorIs(t, err, ErrInvalidCredentials,
		"a missing password is a validation failure, not a login failure")

	// The code was not consumed by the rejected attempt.
	err = svc.VerifyAndRegister(context.Background(), "9876543210", pending.Code, "password123")
	assert.NoError(t, err)
}

func register(t *testing.T, svc *Service, otps *store.OTPStore, phone, password string) {
	t.Helper()
	require.NoError(t, svc.RequestOTP(context.Background(), phone))
	pending, err := otps.Get(phone)
	require.NoError(t, err)
	require.NoError(t, svc.VerifyAndRegister(context.Background(), phone, pending.Code, password))
}

func TestLogin(t *testing.T) {
	svc, _, otps, _ := newTestService(t)
	register(t, svc, otps, "9876543210", "password123")

	token, err := svc.Login(context.Background(), "9876543210", "password123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	phone, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", phone)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, otps, _ := newTestService(t)
	register(t, svc, otps, "9876543210", "password123")

	_, err := svc.Login(context.Background(), "9876543210", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownPhoneIndistinguishable(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Login(context.Background(), "0000000000", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials,
		"unknown phone must fail exactly like a wrong password")
}

func TestSetupPasskeyAndLogin(t *testing.T) {
	svc, _, otps, _ := newTestService(t)
	register(t, svc, otps, "9876543210", "password123")

	token, err := svc.SetupPasskey(context.Background(), "9876543210", "1234")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	got, err := svc.LoginWithPasskey(context.Background(), "9876543210", "1234")
	require.NoError(t, err)
	phone, err := svc.VerifyToken(got)
	require.NoError(t, err)
	assert.Equal(t, "9876543210", phone)

	_, err = svc.LoginWithPasskey(context.Background(), "9876543210", "9999")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSetupPasskeyValidation(t *testing.T) {
	svc, _, otps, _ := newTestService(t)
	register(t, svc, otps, "9876543210", "password123")

	for _, passkey := range []string{"", "123", "12345", "abcd"} {
		_, err := svc.SetupPasskey(context.Background(), "9876543210", passkey)
		assert.ErrorIs(t, err, ErrInvalidPasskey, "passkey %q", passkey)
	}

	// No credential yet for this phone.
	_, err := svc.SetupPasskey(context.Background(), "1111111111", "1234")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoginWithPasskeyNoneSet(t *testing.T) {
	svc, _, otps, _ := newTestService(t)
	register(t, svc, otps, "9876543210", "password123")

	_, err := svc.LoginWithPasskey(context.Background(), "9876543210", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	token, err := svc.IssueToken("9876543210")
	require.NoError(t, err)

	// Flip a character in the signature.
	tampered := token[:len(token)-2] + "xx"
	_, err = svc.VerifyToken(tampered)
	assert.Error(t, err)

	// A token signed with a different secret fails too.
	other := NewService(nil, nil, nil, "+91", "other-secret", slog.Default())
	foreign, err := other.IssueToken("9876543210")
	require.NoError(t, err)
	_, err = svc.VerifyToken(foreign)
	assert.Error(t, err)
}

func TestVerifyTokenGarbage(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := svc.VerifyToken(tok)
		assert.Error(t, err, "token %q", tok)
	}
}
