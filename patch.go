package tfa

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
)

const patchTables = 4

// Patch is one opaque firmware blob, written to the control channel in a single write.
type Patch struct {
	Name string
	Data []byte
}

// PatchSet is an ordered list of patches.
type PatchSet []Patch

// Firmware holds the four patch tables uploaded during startup. Sets[0] goes to the
// DSP right after reset, Sets[1..3] to the memory banks selected with CF_DMEM 2, 3 and 1.
type Firmware struct {
	Sets [patchTables]PatchSet

	// DistinctBankTables makes the banked groups send Sets[1], Sets[2] and Sets[3].
	// When false, all three groups send the leading entries of Sets[1], using the
	// lengths of Sets[1], Sets[2] and Sets[3] as counts.
	DistinctBankTables bool
}

// LoadPatchSet reads every regular file of dir, in file name order, as one patch.
func LoadPatchSet(dir string) (PatchSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read patch directory %s: %w", dir, err)
	}

	var set PatchSet
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read patch %s: %w", e.Name(), err)
		}

		set = append(set, Patch{Name: e.Name(), Data: data})
	}

	return set, nil
}

// LoadFirmware loads the four patch tables named in cfg. An empty path gives an empty table.
func LoadFirmware(cfg FirmwareConfig) (*Firmware, error) {
	fw := &Firmware{DistinctBankTables: cfg.DistinctBankTables}
	if len(cfg.Sets) > patchTables {
		return nil, fmt.Errorf("too many patch tables: %d", len(cfg.Sets))
	}

	for i, dir := range cfg.Sets {
		if dir == "" {
			continue
		}

		set, err := LoadPatchSet(dir)
		if err != nil {
			return nil, fmt.Errorf("patch table %d: %w", i+1, err)
		}

		fw.Sets[i] = set
	}

	return fw, nil
}

// sendPatches writes the first count patches of set. Failed or empty writes are logged
// and the upload continues.
func (d *Device) sendPatches(set PatchSet, count int) {
	d.logger.Debugw("sending patches", "count", count)

	for i, p := range set[:count] {
		n, err := d.writePatch(p.Data)

		if d.tracer != nil {
			d.tracer.PatchWrite(i+1, p.Data, n, err)
		}

		if err != nil || n <= 0 {
			d.logger.Warnw(fmt.Sprintf("failed to send patch #%d", i+1), "name", p.Name, "error", err)
		}
	}
}

func (d *Device) writePatch(data []byte) (int, error) {
	if d.control == nil {
		return 0, os.ErrClosed
	}

	return d.control.Write(data)
}

// sendBankedPatches uploads the three DSP memory bank groups.
func (d *Device) sendBankedPatches(fw *Firmware) {
	banks := []struct {
		dmem  uint16
		table int
	}{
		{dmem: 2, table: 1},
		{dmem: 3, table: 2},
		{dmem: 1, table: 3},
	}

	if !fw.DistinctBankTables && (!isPrefix(fw.Sets[1], fw.Sets[2]) || !isPrefix(fw.Sets[1], fw.Sets[3])) {
		d.logger.Warnw("banked patch groups 3 and 4 are sent from table 2; their own contents are ignored",
			"table2", len(fw.Sets[1]), "table3", len(fw.Sets[2]), "table4", len(fw.Sets[3]))
	}

	for _, b := range banks {
		d.setBitfield(TFA98XX_BF_CF_DMEM, b.dmem)

		set, count := fw.Sets[b.table], len(fw.Sets[b.table])
		if !fw.DistinctBankTables {
			set = fw.Sets[1]
			if count > len(set) {
				d.logger.Warnw("patch count exceeds table 2, clamping", "table", b.table+1, "count", count, "available", len(set))
				count = len(set)
			}
		}

		d.sendPatches(set, count)
	}
}

// isPrefix reports whether other holds the same patch data as the leading entries of base.
func isPrefix(base, other PatchSet) bool {
	if len(other) > len(base) {
		return false
	}

	for i := range other {
		if !bytes.Equal(base[i].Data, other[i].Data) {
			return false
		}
	}

	return true
}
