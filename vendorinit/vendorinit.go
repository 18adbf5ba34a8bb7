// Package vendorinit applies the vendor radio properties of msm8996 devices at boot.
package vendorinit

import (
	"errors"
	"fmt"

	"github.com/edaniels/golog"
)

// PlatformProperty holds the board platform name.
const PlatformProperty = "ro.board.platform"

// DefaultTarget is the platform the properties apply to.
const DefaultTarget = "msm8996"

// SIMMode selects the radio property set.
type SIMMode string

const (
	// SIMAuto leaves the radio properties untouched.
	SIMAuto   SIMMode = "auto"
	SIMDual   SIMMode = "dual"
	SIMSingle SIMMode = "single"
)

// UnmarshalText implements encoding.TextUnmarshaler, so the mode can be used with
// flag.TextVar and YAML.
func (m *SIMMode) UnmarshalText(text []byte) error {
	switch mode := SIMMode(text); mode {
	case SIMAuto, SIMDual, SIMSingle:
		*m = mode
	case "":
		*m = SIMAuto
	default:
		return fmt.Errorf("unknown SIM mode %q", text)
	}

	return nil
}

func (m SIMMode) MarshalText() ([]byte, error) {
	return []byte(m), nil
}

// Config controls Init.
type Config struct {
	Target string  `yaml:"target"`
	SIM    SIMMode `yaml:"sim"`
}

// DefaultConfig targets msm8996 and leaves the SIM properties alone.
func DefaultConfig() Config {
	return Config{Target: DefaultTarget, SIM: SIMAuto}
}

type property struct {
	key, value string
}

var dualSIM = []property{
	{"persist.radio.force_get_pref", "1"},
	{"persist.radio.multisim.config", "dsds"},
	{"persist.radio.plmn_name_cmp", "1"},
	{"ro.telephony.ril.config", "simactivation"},
}

var singleSIM = []property{
	{"persist.radio.force_get_pref", ""},
	{"persist.radio.multisim.config", ""},
	{"persist.radio.plmn_name_cmp", ""},
	{"ro.telephony.ril.config", ""},
}

// Init checks that the board platform matches cfg.Target and applies the property set
// of cfg.SIM. On any other platform, or when the platform cannot be read, nothing is
// written. Failed writes are logged; the remaining properties are still set and the
// errors are returned joined.
func Init(props Properties, cfg Config, logger golog.Logger) error {
	if logger == nil {
		logger = golog.Global().Named("vendorinit")
	}

	if cfg.Target == "" {
		cfg.Target = DefaultTarget
	}

	platform, err := props.Get(PlatformProperty)
	if err != nil {
		logger.Warnw("failed to read platform", "property", PlatformProperty, "error", err)

		return nil
	}

	if platform == "" || platform != cfg.Target {
		logger.Debugw("platform does not match, skipping", "platform", platform, "target", cfg.Target)

		return nil
	}

	var set []property

	switch cfg.SIM {
	case SIMDual:
		set = dualSIM
	case SIMSingle:
		set = singleSIM
	case SIMAuto, "":
		logger.Debugw("no SIM configuration selected", "platform", platform)

		return nil
	default:
		return fmt.Errorf("unknown SIM mode %q", cfg.SIM)
	}

	var errs []error
	for _, p := range set {
		if err := props.Set(p.key, p.value); err != nil {
			logger.Errorw("failed to set property", "key", p.key, "error", err)
			errs = append(errs, err)

			continue
		}

		logger.Infow("property set", "key", p.key, "value", p.value)
	}

	return errors.Join(errs...)
}
