// Package config implements the fail-fast environment-variable bootstrap:
// a declarative table of {name, required, default, validator} evaluated in
// one pass, no reflection involved.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cryptoops/sentipipe/internal/apperrors"
)

func init() {
	// Best-effort: a missing .env file is normal in production deployments
	// where real env vars are injected by the process supervisor.
	_ = godotenv.Load()
}

// VarSpec declares one recognized environment variable.
type VarSpec struct {
	Name      string
	Required  bool
	Default   string
	Sensitive bool
	Validate  func(string) error
}

// Profile is a named group of VarSpecs a service requires at boot.
type Profile []VarSpec

// Values holds resolved values after a successful Load, keyed by Name.
type Values map[string]string

// Load resolves every VarSpec in the profile from the environment,
// validating as it goes. The first invalid or missing required variable is
// returned as a *apperrors.ConfigError — fail-fast, before any network
// connection is opened.
func (p Profile) Load() (Values, error) {
	out := make(Values, len(p))
	for _, spec := range p {
		raw, present := os.LookupEnv(spec.Name)
		if !present || raw == "" {
			if spec.Required {
				return nil, &apperrors.ConfigError{Var: spec.Name, Reason: "required but not set"}
			}
			raw = spec.Default
		}
		if spec.Validate != nil {
			if err := spec.Validate(raw); err != nil {
				return nil, &apperrors.ConfigError{Var: spec.Name, Reason: err.Error()}
			}
		}
		out[spec.Name] = raw
	}
	return out, nil
}

// Redacted returns a copy of v with sensitive fields masked, safe to log.
func (p Profile) Redacted(v Values) map[string]string {
	sensitive := make(map[string]bool, len(p))
	for _, spec := range p {
		sensitive[spec.Name] = spec.Sensitive
	}
	out := make(map[string]string, len(v))
	for k, val := range v {
		if sensitive[k] && val != "" {
			out[k] = "***redacted***"
		} else {
			out[k] = val
		}
	}
	return out
}

// LoadAll merges several profiles and fails fast on the first invalid
// variable across all of them — used by services that require more than one
// profile (e.g. the strategy join needs both CacheProfile and
// PipelineProfile).
func LoadAll(profiles ...Profile) (Values, error) {
	out := make(Values)
	for _, p := range profiles {
		v, err := p.Load()
		if err != nil {
			return nil, err
		}
		for k, val := range v {
			out[k] = val
		}
	}
	return out, nil
}

func (v Values) String(name string) string { return v[name] }

func (v Values) Int(name string) int {
	n, _ := strconv.Atoi(v[name])
	return n
}

func (v Values) Float(name string) float64 {
	f, _ := strconv.ParseFloat(v[name], 64)
	return f
}

func (v Values) Bool(name string) bool {
	b, _ := strconv.ParseBool(v[name])
	return b
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errEmpty
	}
	return nil
}

var errEmpty = errString("must not be empty")

type errString string

func (e errString) Error() string { return string(e) }
