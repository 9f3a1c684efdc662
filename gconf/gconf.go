package gconf

import (
	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
)

// ReadStore is the part of weave.ReadOnlyKVStore used by Load.
type ReadStore interface {
	Get([]byte) ([]byte, error)
}

// Store is the part of weave.KVStore used by Save.
type Store interface {
	ReadStore
	Set([]byte, []byte) error
}

// ValidMarshaler is a protobuf message with a Validate method.
type ValidMarshaler interface {
	Marshal() ([]byte, error)
	Validate() error
}

// Unmarshaler is implemented by every protobuf message.
type Unmarshaler interface {
	Unmarshal([]byte) error
}

// Configuration is a serializable, self validating settings object.
type Configuration interface {
	ValidMarshaler
	Unmarshaler
}

// configKey is the singleton key holding the configuration of pkg.
func configKey(pkg string) []byte {
	return []byte("_c:" + pkg)
}

// Save validates src and stores it as the configuration of pkg.
func Save(db Store, pkg string, src ValidMarshaler) error {
	key := configKey(pkg)
	if err := src.Validate(); err != nil {
		return errors.Wrapf(err, "validation: key %q", key)
	}
	raw, err := src.Marshal()
	if err != nil {
		return errors.Wrapf(err, "marshal: key %q", key)
	}
	return db.Set(key, raw)
}

// Load reads the configuration of pkg into dst. ErrNotFound is returned
// if it was never saved.
func Load(db ReadStore, pkg string, dst Unmarshaler) error {
	key := configKey(pkg)
	raw, err := db.Get(key)
	switch {
	case err != nil:
		return err
	case raw == nil:
		return errors.Wrapf(errors.ErrNotFound, "key %q", key)
	}
	return errors.Wrapf(dst.Unmarshal(raw), "unmarshal: key %q", key)
}

// InitConfig saves the genesis section conf.<pkg> as the configuration
// of pkg. A missing section is ErrNotFound.
func InitConfig(db Store, opts weave.Options, pkg string, conf Configuration) error {
	var sections weave.Options
	if err := opts.ReadOptions("conf", &sections); err != nil {
		return errors.Wrap(err, "read conf")
	}
	if sections[pkg] == nil {
		return errors.Wrapf(errors.ErrNotFound, "no configuration in genesis for %q package", pkg)
	}
	if err := sections.ReadOptions(pkg, conf); err != nil {
		return errors.Wrapf(err, "read configuration for %s", pkg)
	}
	return errors.Wrapf(Save(db, pkg, conf), "save configuration for %s", pkg)
}
