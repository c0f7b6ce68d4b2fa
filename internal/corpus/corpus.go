// Package corpus loads the finite news collection and authoritative seed
// records handed to the core by the outer application.
package corpus

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/jacobterminal/earnings-terminal/internal/model"
)

// LoadNews reads a news corpus from a YAML or JSON file, keyed off the
// file extension.
func LoadNews(path string) ([]model.NewsItem, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: read %s", path)
	}

	var items []model.NewsItem
	if err := unmarshalByExt(path, raw, &items); err != nil {
		return nil, err
	}

	for i, item := range items {
		if item.ID == "" {
			return nil, eris.Errorf("corpus: item %d has no id", i)
		}
		if item.PublishedAt.IsZero() {
			return nil, eris.Errorf("corpus: item %s has no published_at", item.ID)
		}
	}
	return items, nil
}

// LoadSeedRecords reads authoritative or placeholder seed records from a
// YAML or JSON file for the bulk-upsert path.
func LoadSeedRecords(path string) ([]model.EarningsRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "corpus: read %s", path)
	}

	var recs []model.EarningsRecord
	if err := unmarshalByExt(path, raw, &recs); err != nil {
		return nil, err
	}

	for i, rec := range recs {
		if rec.Ticker == "" || rec.FiscalYear == 0 || !rec.Quarter.Valid() {
			return nil, eris.Errorf("corpus: seed record %d missing identity fields", i)
		}
	}
	return recs, nil
}

func unmarshalByExt(path string, raw []byte, out any) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, out); err != nil {
			return eris.Wrapf(err, "corpus: parse yaml %s", path)
		}
	case ".json":
		if err := json.Unmarshal(raw, out); err != nil {
			return eris.Wrapf(err, "corpus: parse json %s", path)
		}
	default:
		return eris.Errorf("corpus: unsupported file type %s", path)
	}
	return nil
}
