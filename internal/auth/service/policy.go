package service

import (
	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
)

// Suspension tier names, lowest first.
const (
	TierAlert     = "ALERT"
	TierWarn      = "WARN"
	TierMalicious = "MALICIOUS"
	TierAlarm     = "ALARM"
	TierDeadly    = "DEADLY"
)

// TierNames lists the tiers in escalation order.
var TierNames = []string{TierAlert, TierWarn, TierMalicious, TierAlarm, TierDeadly}

// Tier is one rung of the suspension ladder: reaching Threshold failed
// sign-ins suspends the account for Duration units.
type Tier struct {
	Name      string
	Threshold int
	Duration  int
}

// OTPDefault is the validity window used when a caller does not give one.
type OTPDefault struct {
	Duration int
	Unit     domain.TimeUnit
}

// Policy is the tunable part of account protection. Build it with
// DefaultPolicy, adjust, then call Validate before handing it to services.
type Policy struct {
	Tiers       []Tier
	Unit        domain.TimeUnit // unit for tier durations
	OTPDefaults map[domain.OTPPurpose]OTPDefault

	validated bool
}

func DefaultPolicy() *Policy {
	return &Policy{
		Tiers: []Tier{
			{Name: TierAlert, Threshold: 3, Duration: 5},
			{Name: TierWarn, Threshold: 5, Duration: 15},
			{Name: TierMalicious, Threshold: 10, Duration: 1440},
			{Name: TierAlarm, Threshold: 15, Duration: 10080},
			{Name: TierDeadly, Threshold: 20, Duration: 543240},
		},
		Unit: domain.UnitMinutes,
		OTPDefaults: map[domain.OTPPurpose]OTPDefault{
			domain.PurposeSignup: {Duration: 10, Unit: domain.UnitMinutes},
			domain.PurposeLogin:  {Duration: 10, Unit: domain.UnitMinutes},
		},
	}
}

// Validate checks that every named tier is present once, positive, and that
// thresholds strictly ascend. It returns a *ConfigurationError.
func (p *Policy) Validate() error {
	if len(p.Tiers) != len(TierNames) {
		return configErrorf("expected %d suspension tiers, got %d", len(TierNames), len(p.Tiers))
	}
	for i, name := range TierNames {
		t := p.Tiers[i]
		if t.Name != name {
			return configErrorf("tier %d must be %s, got %q", i, name, t.Name)
		}
		if t.Threshold <= 0 || t.Duration <= 0 {
			return configErrorf("tier %s must have a positive threshold and duration", name)
		}
		if i > 0 && t.Threshold <= p.Tiers[i-1].Threshold {
			return configErrorf("tier %s threshold %d must exceed %s threshold %d",
				name, t.Threshold, p.Tiers[i-1].Name, p.Tiers[i-1].Threshold)
		}
	}
	if !p.Unit.Valid() {
		return configErrorf("unknown suspension unit %q", p.Unit)
	}
	for purpose, d := range p.OTPDefaults {
		if purpose != domain.PurposeSignup && purpose != domain.PurposeLogin {
			return configErrorf("unknown passcode purpose %q", purpose)
		}
		if d.Duration <= 0 || !d.Unit.Valid() {
			return configErrorf("passcode default for %s must be a positive duration in a known unit", purpose)
		}
	}
	for _, purpose := range []domain.OTPPurpose{domain.PurposeSignup, domain.PurposeLogin} {
		if _, ok := p.OTPDefaults[purpose]; !ok {
			return configErrorf("missing passcode default for %s", purpose)
		}
	}
	p.validated = true
	return nil
}

func (p *Policy) mustBeValid() {
	if p == nil || !p.validated {
		panic("service: suspension policy used before Validate")
	}
}

// Alert is the lowest tier. Counts above its threshold make a suspension
// permanent until the password is reset.
func (p *Policy) Alert() Tier {
	p.mustBeValid()
	return p.Tiers[0]
}

// Deadly is the highest tier.
func (p *Policy) Deadly() Tier {
	p.mustBeValid()
	return p.Tiers[len(p.Tiers)-1]
}

// TierFor returns the highest tier whose threshold is at most count.
func (p *Policy) TierFor(count int) (Tier, bool) {
	p.mustBeValid()
	for i := len(p.Tiers) - 1; i >= 0; i-- {
		if count >= p.Tiers[i].Threshold {
			return p.Tiers[i], true
		}
	}
	return Tier{}, false
}

// AllowsPurpose reports whether the passcode purpose is allowed.
func (p *Policy) AllowsPurpose(purpose domain.OTPPurpose) bool {
	_, ok := p.OTPDefaults[purpose]
	return ok
}
