package app

import (
	"testing"

	"github.com/aussiebroadwan/gatehouse/internal/auth/guard"
	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"github.com/stretchr/testify/require"
)

func TestGuardSelection(t *testing.T) {
	otps := &service.OTPService{Policy: service.DefaultPolicy()}

	tests := []struct {
		mode        string
		wantLocker  guard.Locker
		wantLimiter bool
	}{
		{GuardNone, guard.NoopLocker{}, false},
		{"", guard.NoopLocker{}, false},
		{GuardMemory, &guard.MemoryLocker{}, true},
	}
	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			app := &Application{cfg: Config{SignInLock: tt.mode, OTPLimiter: tt.mode, MaxOTPAttempts: 5}}

			require.IsType(t, tt.wantLocker, app.signInLocker())
			if tt.wantLimiter {
				require.NotNil(t, app.otpLimiter(otps))
			} else {
				require.Nil(t, app.otpLimiter(otps))
			}
		})
	}
}
