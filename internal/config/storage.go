package config

import (
	"fmt"
)

const (
	StorageTypeLevelDB = "leveldb"
	StorageTypeMongo   = "mongo"
)

// StorageConfig selects where the versioned state blob is kept between restarts.
type StorageConfig struct {
	Type string `mapstructure:"type"`
	// Path is the leveldb directory, ignored for mongo.
	Path string `mapstructure:"path"`
}

func (cfg *StorageConfig) Validate() error {
	if cfg.Type == "" {
		cfg.Type = StorageTypeLevelDB
	}

	switch cfg.Type {
	case StorageTypeLevelDB:
		if cfg.Path == "" {
			return fmt.Errorf("storage path is required for %s storage", StorageTypeLevelDB)
		}
	case StorageTypeMongo:
	default:
		return fmt.Errorf("unsupported storage type %q", cfg.Type)
	}

	return nil
}

type DbConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"db-name"`
	Address  string `mapstructure:"address"`
}

func (cfg *DbConfig) Validate() error {
	if cfg.Username == "" {
		return fmt.Errorf("missing db username")
	}

	if cfg.Password == "" {
		return fmt.Errorf("missing db password")
	}

	if cfg.Address == "" {
		return fmt.Errorf("missing db address")
	}

	if cfg.DbName == "" {
		return fmt.Errorf("missing db name")
	}

	return nil
}
