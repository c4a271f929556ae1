package databaseaccess

import (
	"fmt"
	"path/filepath"

	"github.com/ShellTrade/bridge-claimer/claimer/core"
	"github.com/ShellTrade/bridge-claimer/common"
)

func NewDatabase(filePath string) (core.ClaimRepository, error) {
	if err := common.CreateDirectoryIfNotExists(filepath.Dir(filePath), 0770); err != nil {
		return nil, fmt.Errorf("failed to create directory for claimer database: %w", err)
	}

	db := &BBoltDatabase{}
	if err := db.Init(filePath); err != nil {
		return nil, err
	}

	return db, nil
}
