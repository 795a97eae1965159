package propertyrepo

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/parcelworks/dealfilter/internal/domain/property"
)

// LoadSeedFile reads a JSON array of property records from path and stores
// them in src. Existing records with the same ids are replaced. Returns the
// number of records loaded.
func LoadSeedFile(ctx context.Context, src Source, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var recs []*property.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return 0, fmt.Errorf("decode seed file %s: %w", path, err)
	}

	if err := src.PutMany(ctx, recs); err != nil {
		return 0, fmt.Errorf("seed properties: %w", err)
	}
	return len(recs), nil
}
