package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pascaldekloe/jwt"

	"github.com/oluseyi/kycflow/internal/config"
	"github.com/oluseyi/kycflow/internal/models"
)

const (
	UserActivityLogRegistrationDescription  = "User registration"
	UserActivityLogLoginDescription         = "Successful login"
	UserActivityLogFailedLoginDescription   = "Failed login attempt"
	UserActivityLogLockedAccountDescription = "Account locked after consecutive failed logins"

	KycActivityLogSubmittedDescription    = "KYC form submitted"
	KycActivityLogConfirmedDescription    = "KYC form confirmed"
	KycActivityLogRejectedDescription     = "KYC form rejected"
	KycActivityLogCreditIssuedDescription = "Welcome credit issued"
)

// Kafka topics for KYC lifecycle events. The notification workers subscribe
// to the decision topics and email the affected customer.
const (
	KycSubmittedTopic = "kyc.submitted"
	KycConfirmedTopic = "kyc.confirmed"
	KycRejectedTopic  = "kyc.rejected"
)

// KycEvent is the payload produced to the KYC topics.
type KycEvent struct {
	PhoneNumber string  `json:"phone_number"`
	FirstName   string  `json:"first_name"`
	Amount      float64 `json:"amount,omitempty"`
}

// HelperInterface is the slice of helper.HelperRepository the handlers use.
type HelperInterface interface {
	BackgroundTask(r *http.Request, fn func() error)
	NewEmailData() map[string]any
	FormatAmount(amount float64) string
}

// LoginAttemptStore counts consecutive failed logins per user. Backed by
// redis in production; the counter expires on its own after the window.
type LoginAttemptStore interface {
	Increment(key string, expiration time.Duration) (int64, error)
	Delete(key string) error
}

// generateAuthToken issues a signed, time-limited token for the user. Each
// token carries a unique jti so individual tokens are distinguishable.
func generateAuthToken(cfg *config.Config, user *models.User) (token string, expiry time.Time, err error) {
	var claims jwt.Claims
	claims.Subject = user.ID
	claims.ID = uuid.NewString()

	expiry = time.Now().Add(time.Duration(cfg.Jwt.ExpiryMinutes) * time.Minute)
	claims.Issued = jwt.NewNumericTime(time.Now())
	claims.NotBefore = jwt.NewNumericTime(time.Now())
	claims.Expires = jwt.NewNumericTime(expiry)

	claims.Issuer = cfg.BaseURL
	claims.Audiences = []string{cfg.BaseURL}

	claims.Set = map[string]any{
		"email":      user.Email,
		"first_name": user.FirstName,
		"role":       user.Role,
	}

	jwtBytes, err := claims.HMACSign(jwt.HS256, []byte(cfg.Jwt.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}

	return string(jwtBytes), expiry, nil
}
