// Package signs resolves detected sign labels into human readable details.
package signs

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"roadwatch/internal/logger"
	"roadwatch/internal/models"
	"roadwatch/internal/repository"
)

const (
	DefaultDetails = "No details available"
	DefaultAction  = "No action available"
)

//go:embed signs.json
var bundled []byte

type entry struct {
	Details string `json:"details"`
	Action  string `json:"action"`
}

// Table is the static sign catalogue used when the store has no record.
type Table map[string]entry

// ParseTable decodes a catalogue in the {"<sign>": {"details", "action"}} layout.
func ParseTable(data []byte) (Table, error) {
	var t Table
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("invalid sign table: %w", err)
	}
	return t, nil
}

// LoadTable reads the catalogue from path, or the bundled one when path is empty.
func LoadTable(path string) (Table, error) {
	if path == "" {
		return ParseTable(bundled)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sign table: %w", err)
	}
	return ParseTable(data)
}

// Info returns the catalogue entry for sign, falling back to the defaults.
func (t Table) Info(sign string) models.SignInfo {
	e, ok := t[sign]
	if !ok {
		return models.SignInfo{Sign: sign, Details: DefaultDetails, Action: DefaultAction}
	}
	return models.SignInfo{Sign: sign, Details: e.Details, Action: e.Action}
}

// Signs lists the catalogue in name order.
func (t Table) Signs() []models.SignInfo {
	names := make([]string, 0, len(t))
	for name := range t {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]models.SignInfo, 0, len(names))
	for _, name := range names {
		out = append(out, t.Info(name))
	}
	return out
}

// Service looks signs up in the store first and remembers catalogue answers.
type Service struct {
	repo   repository.SignRepository
	table  Table
	logger *logger.Logger
}

func NewService(repo repository.SignRepository, table Table, logger *logger.Logger) *Service {
	return &Service{repo: repo, table: table, logger: logger}
}

// Lookup returns the stored record for sign. On a miss the catalogue entry,
// or the default text, is stored and returned.
func (s *Service) Lookup(sign string) (models.SignInfo, error) {
	stored, err := s.repo.FindBySign(sign)
	if err != nil {
		return models.SignInfo{}, err
	}
	if stored != nil {
		return *stored, nil
	}

	info := s.table.Info(sign)
	if err := s.repo.Insert(&info); err != nil {
		return models.SignInfo{}, err
	}
	s.logger.Info("Stored sign details for %q", sign)
	return info, nil
}

// Generate looks up every sign in order.
func (s *Service) Generate(signs []string) ([]models.SignInfo, error) {
	out := make([]models.SignInfo, 0, len(signs))
	for _, sign := range signs {
		info, err := s.Lookup(sign)
		if err != nil {
			return nil, err
		}
		out = append(out, info)
	}
	return out, nil
}

func (s *Service) All() ([]models.SignInfo, error) {
	return s.repo.GetAll()
}

// Seed stores every catalogue entry that is not stored yet and returns how
// many were added.
func (s *Service) Seed() (int, error) {
	added := 0
	for _, info := range s.table.Signs() {
		stored, err := s.repo.FindBySign(info.Sign)
		if err != nil {
			return added, err
		}
		if stored != nil {
			continue
		}
		if err := s.repo.Insert(&info); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
