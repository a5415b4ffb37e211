package businessflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webstar-labs/webstar/app/dto"
	"golang.org/x/crypto/bcrypt"
)

func TestSignupRejectsShortPassword(t *testing.T) {
	// Nil repositories prove the check runs before any persistence.
	flow := NewSignupFlow(nil, nil, nil, nil, PasswordPolicy{MinLength: 12}, nil)

	_, err := flow.Signup(context.Background(), &dto.SignupRequest{
		Email:    "new@example.com",
		Username: "newcomer",
		Password: "elevenchars",
	}, nil)

	require.Error(t, err)
	assert.True(t, IsPasswordTooShort(err))

	var bizErr *BusinessError
	require.ErrorAs(t, err, &bizErr)
	assert.Equal(t, "WEAK_PASSWORD", bizErr.Code)
}

func TestSignupHashesWithConfiguredCost(t *testing.T) {
	flow := NewSignupFlow(nil, nil, nil, nil, PasswordPolicy{BcryptCost: bcrypt.MinCost}, nil)
	impl := flow.(*SignupFlowImpl)

	hash, err := impl.hashPassword("SecurePass123!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("SecurePass123!")))
}

func TestPasswordPolicyDefaults(t *testing.T) {
	flow := NewSignupFlow(nil, nil, nil, nil, PasswordPolicy{}, nil)
	impl := flow.(*SignupFlowImpl)

	assert.Equal(t, bcrypt.DefaultCost, impl.policy.BcryptCost)
	assert.Equal(t, 8, impl.policy.MinLength)
}
