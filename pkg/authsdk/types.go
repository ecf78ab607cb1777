package authsdk

// ============================================================================
// Envelope
// ============================================================================

// Envelope is the body of every service response.
type Envelope[T any] struct {
	Status  bool     `json:"status"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    T        `json:"data,omitempty"`
	Trace   any      `json:"trace,omitempty"`
}

// Concrete envelopes, named for the API docs.
type (
	MessageEnvelope  = Envelope[any]
	ErrorEnvelope    = Envelope[any]
	PasscodeEnvelope = Envelope[*PasscodeData]
	LoginEnvelope    = Envelope[LoginData]
	TokenEnvelope    = Envelope[TokenPair]
	AccountEnvelope  = Envelope[Account]
)

// ============================================================================
// Requests
// ============================================================================

type SignUpRequest struct {
	FirstName            string `json:"firstName" example:"Ada"`
	LastName             string `json:"lastName" example:"Lovelace"`
	Username             string `json:"username" example:"ada"`
	Email                string `json:"email" example:"ada@example.com"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

type SignInRequest struct {
	Username string `json:"username" example:"ada"`
	Password string `json:"password"`
}

// VerifyOTPRequest completes sign-up or sign-in.
type VerifyOTPRequest struct {
	Email string `json:"email" example:"ada@example.com"`
	OTP   string `json:"otp" example:"123456"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ============================================================================
// Responses
// ============================================================================

// PasscodeData is only returned when the service echoes passcodes (tests).
type PasscodeData struct {
	OTP string `json:"otp"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Account is the public view of an account.
type Account struct {
	ID                  string `json:"id"`
	FirstName           string `json:"firstName"`
	LastName            string `json:"lastName"`
	FullName            string `json:"fullName"`
	Initials            string `json:"initials"`
	Username            string `json:"username"`
	PhoneNumber         string `json:"phoneNumber"`
	ProfileImage        string `json:"profileImage"`
	Role                string `json:"role" enums:"USER,ADMIN"`
	ClearanceLevel      int    `json:"clearanceLevel"`
	Status              string `json:"status" enums:"ACTIVE,INACTIVE,SUSPENDED"`
	IsActive            bool   `json:"isActive"`
	LastLogin           string `json:"lastLogin,omitempty" example:"02.01.26 15:04"`
	LastLoginExpressive string `json:"lastLoginExpressive,omitempty"`
}

// LoginData is the account flattened together with its new tokens.
type LoginData struct {
	Account
	TokenPair
}

// ============================================================================
// Health
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}
