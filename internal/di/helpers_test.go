package di_test

import (
	contractcmd "github.com/goliatone/go-sitekit/internal/commands/contract"
	"github.com/goliatone/go-sitekit/internal/site"
)

func contractCommand(presetID string, cb func(*site.ContractResult)) contractcmd.BuildContractCommand {
	return contractcmd.BuildContractCommand{PresetID: presetID, ResultCallback: cb}
}
