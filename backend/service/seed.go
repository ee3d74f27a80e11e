package service

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/AnTengye/contractdesk/backend/model"
	"github.com/AnTengye/contractdesk/backend/pipeline"
)

// SeedFile is the fixture layout: one record list per ledger
type SeedFile struct {
	Contracts []model.Contract `yaml:"contracts"`
	Lending   []model.Contract `yaml:"lending"`
}

// LoadSeed reads a seed fixture from path
func LoadSeed(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	warnMalformed(LedgerContracts, seed.Contracts)
	warnMalformed(LedgerLending, seed.Lending)
	return &seed, nil
}

// warnMalformed logs records whose dates could not be parsed. They are kept
// with their raw text and never match a date rule.
func warnMalformed(ledger string, records []model.Contract) {
	for i := range records {
		if cols := malformedColumns(&records[i]); len(cols) > 0 {
			slog.Warn("seed record has malformed dates",
				"ledger", ledger,
				"contract_no", records[i].ContractNumber,
				"columns", cols,
			)
		}
	}
}

func malformedColumns(c *model.Contract) []string {
	var cols []string
	for _, col := range pipeline.DateColumns {
		if col.Of(c).Malformed() {
			cols = append(cols, string(col))
		}
	}
	return cols
}

// Ledgers holds one store per ledger name
type Ledgers struct {
	Contracts *ContractStore
	Lending   *ContractStore
}

// NewLedgers builds both ledgers from seed; a nil seed yields empty ledgers
func NewLedgers(seed *SeedFile) (*Ledgers, error) {
	l := &Ledgers{
		Contracts: NewContractStore(LedgerContracts),
		Lending:   NewContractStore(LedgerLending),
	}
	if seed == nil {
		return l, nil
	}
	if err := l.Contracts.Seed(seed.Contracts); err != nil {
		return nil, fmt.Errorf("contracts ledger: %w", err)
	}
	if err := l.Lending.Seed(seed.Lending); err != nil {
		return nil, fmt.Errorf("lending ledger: %w", err)
	}
	return l, nil
}

// Get returns the ledger called name, or nil
func (l *Ledgers) Get(name string) *ContractStore {
	switch name {
	case LedgerContracts:
		return l.Contracts
	case LedgerLending:
		return l.Lending
	}
	return nil
}
