package contractcmd

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-sitekit/internal/site"
)

const (
	buildContractMessageType = "sitekit.contract.build"
	checkPresetMessageType   = "sitekit.contract.check"
)

// ErrCheckFailed is returned by strict checks that found leftovers or
// content issues. The report is still delivered to the callback.
var ErrCheckFailed = errors.New("contractcmd: preset check failed")

// BuildContractCommand aggregates the content contract of a preset.
type BuildContractCommand struct {
	PresetID       string                     `json:"preset_id"`
	ResultCallback func(*site.ContractResult) `json:"-"`
}

// Type implements command.Message.
func (BuildContractCommand) Type() string { return buildContractMessageType }

func (m BuildContractCommand) Validate() error {
	if strings.TrimSpace(m.PresetID) == "" {
		return validation.Errors{
			"preset_id": validation.NewError("sitekit.contract.build.preset_id_required", "preset_id is required"),
		}
	}
	return nil
}

// CheckPresetCommand resolves every page of a preset and scans the output
// for leftover bindings. Strict turns an unclean report into ErrCheckFailed.
type CheckPresetCommand struct {
	PresetID       string                  `json:"preset_id"`
	Content        map[string]any          `json:"content,omitempty"`
	Strict         bool                    `json:"strict,omitempty"`
	ResultCallback func(*site.CheckReport) `json:"-"`
}

// Type implements command.Message.
func (CheckPresetCommand) Type() string { return checkPresetMessageType }

func (m CheckPresetCommand) Validate() error {
	if strings.TrimSpace(m.PresetID) == "" {
		return validation.Errors{
			"preset_id": validation.NewError("sitekit.contract.check.preset_id_required", "preset_id is required"),
		}
	}
	return nil
}
