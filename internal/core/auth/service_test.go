package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"snap2cook/internal/infrastructure/config"
	"snap2cook/internal/pkg/common"
	"snap2cook/internal/testhelpers"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) *Service {
	return NewService(testhelpers.SetupTestDB(t), config.AuthConfig{
		JWTSecret: testSecret,
		TokenTTL:  time.Hour,
	})
}

func TestSignupAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Signup(ctx, "alice", "s3cret", "vegan"))

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)

	username, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	profile, err := svc.Me(ctx, username)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "vegan", profile.DietPreference)
	assert.NotZero(t, profile.ID)
}

func TestSignup_DuplicateUsername(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	require.NoError(t, svc.Signup(ctx, "bob", "pw", ""))
	err := svc.Signup(ctx, "bob", "other", "")
	assert.True(t, errors.Is(err, common.ErrUsernameTaken))
}

func TestSignup_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	const workers = 4
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.Signup(ctx, "dup", "pw", "")
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.True(t, errors.Is(err, common.ErrUsernameTaken), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, created)
}

func TestSignup_RequiresFields(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, common.IsValidationError(svc.Signup(context.Background(), " ", "pw", "")))
	assert.True(t, common.IsValidationError(svc.Signup(context.Background(), "carol", "", "")))
}

func TestLogin_InvalidCredentials(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.Signup(ctx, "dave", "right", ""))

	_, err := svc.Login(ctx, "dave", "wrong")
	assert.True(t, errors.Is(err, common.ErrInvalidCredentials))

	_, err = svc.Login(ctx, "nobody", "right")
	assert.True(t, errors.Is(err, common.ErrInvalidCredentials))
}

func TestLogin_LongPasswordTruncated(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	long := strings.Repeat("p", 100)
	require.NoError(t, svc.Signup(ctx, "erin", long, ""))

	_, err := svc.Login(ctx, "erin", strings.Repeat("p", 72)+"different-tail")
	assert.NoError(t, err)
}

func TestValidateToken_Rejects(t *testing.T) {
	svc := newTestService(t)

	expired := newTestService(t)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expiredToken, err := expired.IssueToken("frank")
	require.NoError(t, err)

	otherSecret := NewService(nil, config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour})
	forged, err := otherSecret.IssueToken("frank")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "frank",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	emptySubject, err := svc.IssueToken("")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":       "not-a-token",
		"expired":       expiredToken,
		"wrong secret":  forged,
		"alg none":      noneToken,
		"empty subject": emptySubject,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			require.Error(t, err)
			ce, ok := common.AsCustomError(err)
			require.True(t, ok)
			assert.Equal(t, 401, ce.Status)
		})
	}
}

func TestMe_UserNotFound(t *testing.T) {
	svc := newTestService(t)
	token, err := svc.IssueToken("ghost")
	require.NoError(t, err)

	username, err := svc.ValidateToken(token)
	require.NoError(t, err)

	_, err = svc.Me(context.Background(), username)
	assert.True(t, errors.Is(err, common.ErrUserNotFound))
}

func TestUpdateDiet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	require.NoError(t, svc.Signup(ctx, "gina", "pw", ""))
	assert.Equal(t, "", svc.DietPreference(ctx, "gina"))

	profile, err := svc.UpdateDiet(ctx, "gina", " keto ")
	require.NoError(t, err)
	assert.Equal(t, "keto", profile.DietPreference)
	assert.Equal(t, "keto", svc.DietPreference(ctx, "gina"))
}
