package vendorinit_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gen2brain/tfa/vendorinit"
)

var radioKeys = []string{
	"persist.radio.force_get_pref",
	"persist.radio.multisim.config",
	"persist.radio.plmn_name_cmp",
	"ro.telephony.ril.config",
}

func TestInitDualSIM(t *testing.T) {
	props := vendorinit.NewMapProperties(map[string]string{"ro.board.platform": "msm8996"})

	err := vendorinit.Init(props, vendorinit.Config{SIM: vendorinit.SIMDual}, golog.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"ro.board.platform":             "msm8996",
		"persist.radio.force_get_pref":  "1",
		"persist.radio.multisim.config": "dsds",
		"persist.radio.plmn_name_cmp":   "1",
		"ro.telephony.ril.config":       "simactivation",
	}, props.Snapshot())
}

func TestInitSingleSIM(t *testing.T) {
	initial := map[string]string{"ro.board.platform": "msm8996"}
	for _, k := range radioKeys {
		initial[k] = "stale"
	}

	props := vendorinit.NewMapProperties(initial)

	err := vendorinit.Init(props, vendorinit.Config{Target: "msm8996", SIM: vendorinit.SIMSingle}, golog.NewTestLogger(t))
	require.NoError(t, err)

	snapshot := props.Snapshot()
	for _, k := range radioKeys {
		assert.Equal(t, "", snapshot[k], k)
	}
}

func TestInitSkips(t *testing.T) {
	tests := map[string]map[string]string{
		"other platform": {"ro.board.platform": "msm8998"},
		"no platform":    {},
	}

	for name, initial := range tests {
		t.Run(name, func(t *testing.T) {
			props := vendorinit.NewMapProperties(initial)

			err := vendorinit.Init(props, vendorinit.Config{SIM: vendorinit.SIMDual}, golog.NewTestLogger(t))
			require.NoError(t, err)
			assert.Equal(t, initial, props.Snapshot(), "no property may be written")
		})
	}

	t.Run("auto", func(t *testing.T) {
		initial := map[string]string{"ro.board.platform": "msm8996"}
		props := vendorinit.NewMapProperties(initial)

		require.NoError(t, vendorinit.Init(props, vendorinit.DefaultConfig(), golog.NewTestLogger(t)))
		assert.Equal(t, initial, props.Snapshot())
	})
}

type brokenProperties struct {
	*vendorinit.MapProperties
	getErr error
	setErr error
	sets   int
}

func (p *brokenProperties) Get(key string) (string, error) {
	if p.getErr != nil {
		return "", p.getErr
	}

	return p.MapProperties.Get(key)
}

func (p *brokenProperties) Set(key, value string) error {
	p.sets++

	return p.setErr
}

func TestInitErrors(t *testing.T) {
	props := &brokenProperties{
		MapProperties: vendorinit.NewMapProperties(map[string]string{"ro.board.platform": "msm8996"}),
		setErr:        errors.New("permission denied"),
	}

	logger, logs := golog.NewObservedTestLogger(t)

	err := vendorinit.Init(props, vendorinit.Config{SIM: vendorinit.SIMDual}, logger)
	assert.ErrorContains(t, err, "permission denied")
	assert.Equal(t, len(radioKeys), props.sets, "a failed write does not stop the others")
	assert.Equal(t, len(radioKeys), logs.FilterMessage("failed to set property").Len())

	props.getErr = errors.New("no property service")
	props.sets = 0

	require.NoError(t, vendorinit.Init(props, vendorinit.Config{SIM: vendorinit.SIMDual}, logger))
	assert.Zero(t, props.sets)

	err = vendorinit.Init(vendorinit.NewMapProperties(map[string]string{"ro.board.platform": "msm8996"}),
		vendorinit.Config{SIM: "triple"}, logger)
	assert.Error(t, err)
}

func TestSIMModeText(t *testing.T) {
	var cfg vendorinit.Config
	require.NoError(t, yaml.Unmarshal([]byte("target: msm8996\nsim: single\n"), &cfg))
	assert.Equal(t, vendorinit.SIMSingle, cfg.SIM)

	assert.Error(t, yaml.Unmarshal([]byte("sim: triple\n"), &cfg))

	var mode vendorinit.SIMMode
	require.NoError(t, mode.UnmarshalText(nil))
	assert.Equal(t, vendorinit.SIMAuto, mode)
}

func TestAndroidProperties(t *testing.T) {
	dir := t.TempDir()

	getprop := filepath.Join(dir, "getprop")
	require.NoError(t, os.WriteFile(getprop, []byte("#!/bin/sh\necho \"value-of-$1\"\n"), 0o755))

	setprop := filepath.Join(dir, "setprop")
	logFile := filepath.Join(dir, "set.log")
	require.NoError(t, os.WriteFile(setprop, []byte("#!/bin/sh\necho \"$1=$2\" >> "+logFile+"\n"), 0o755))

	props := &vendorinit.AndroidProperties{Getprop: getprop, Setprop: setprop}

	v, err := props.Get("ro.board.platform")
	require.NoError(t, err)
	assert.Equal(t, "value-of-ro.board.platform", v)

	require.NoError(t, props.Set("persist.radio.plmn_name_cmp", "1"))
	require.NoError(t, props.Set("ro.telephony.ril.config", ""))

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Equal(t, "persist.radio.plmn_name_cmp=1\nro.telephony.ril.config=\n", string(data))

	props.Setprop = filepath.Join(dir, "missing")
	assert.Error(t, props.Set("a", "b"))
}
