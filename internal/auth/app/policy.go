package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aussiebroadwan/gatehouse/internal/auth/domain"
	"github.com/aussiebroadwan/gatehouse/internal/auth/service"
	"gopkg.in/yaml.v3"
)

// policyFile is the YAML shape of AUTH_POLICY_FILE. Every field is optional;
// tiers are matched by name and only the given values replace the defaults.
//
//	unit: minutes
//	tiers:
//	  - name: ALERT
//	    threshold: 3
//	    duration: 5
//	otp:
//	  signup: {duration: 30, unit: minutes}
type policyFile struct {
	Unit  string `yaml:"unit"`
	Tiers []struct {
		Name      string `yaml:"name"`
		Threshold int    `yaml:"threshold"`
		Duration  int    `yaml:"duration"`
	} `yaml:"tiers"`
	OTP map[string]struct {
		Duration int    `yaml:"duration"`
		Unit     string `yaml:"unit"`
	} `yaml:"otp"`
}

// LoadPolicy returns the default policy with the overrides from path applied,
// validated. An empty path yields the validated defaults.
func LoadPolicy(path string) (*service.Policy, error) {
	policy := service.DefaultPolicy()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read policy file: %w", err)
		}
		if err := applyPolicy(policy, raw); err != nil {
			return nil, err
		}
	}

	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return policy, nil
}

func applyPolicy(policy *service.Policy, raw []byte) error {
	var f policyFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return &service.ConfigurationError{Reason: "policy file: " + err.Error()}
	}

	if f.Unit != "" {
		unit, err := domain.ParseTimeUnit(f.Unit)
		if err != nil {
			return &service.ConfigurationError{Reason: "policy file: " + err.Error()}
		}
		policy.Unit = unit
	}

	for _, o := range f.Tiers {
		i := tierIndex(policy, o.Name)
		if i < 0 {
			return &service.ConfigurationError{Reason: fmt.Sprintf("policy file: unknown tier %q", o.Name)}
		}
		if o.Threshold != 0 {
			policy.Tiers[i].Threshold = o.Threshold
		}
		if o.Duration != 0 {
			policy.Tiers[i].Duration = o.Duration
		}
	}

	for name, o := range f.OTP {
		purpose := purposeFor(name)
		d := policy.OTPDefaults[purpose]
		if o.Duration != 0 {
			d.Duration = o.Duration
		}
		if o.Unit != "" {
			unit, err := domain.ParseTimeUnit(o.Unit)
			if err != nil {
				return &service.ConfigurationError{Reason: "policy file: " + err.Error()}
			}
			d.Unit = unit
		}
		// Unknown purposes are kept so Validate rejects them.
		policy.OTPDefaults[purpose] = d
	}

	return nil
}

func tierIndex(policy *service.Policy, name string) int {
	for i, t := range policy.Tiers {
		if strings.EqualFold(t.Name, name) {
			return i
		}
	}
	return -1
}

func purposeFor(name string) domain.OTPPurpose {
	for _, p := range []domain.OTPPurpose{domain.PurposeSignup, domain.PurposeLogin} {
		if strings.EqualFold(string(p), name) {
			return p
		}
	}
	return domain.OTPPurpose(name)
}
