package gconf

import (
	"reflect"

	"github.com/iov-one/tradeweave/errors"
	"github.com/iov-one/tradeweave/weave"
	"github.com/iov-one/tradeweave/x"
)

// OwnedConfig is a configuration that can be changed only with the
// signature of its current owner.
type OwnedConfig interface {
	Configuration
	GetOwner() weave.Address
}

// UpdateConfigurationHandler applies the configuration carried in the
// "Patch" field of a message. Non zero fields of the patch replace the
// stored values, zero fields are ignored.
type UpdateConfigurationHandler struct {
	pkg    string
	config OwnedConfig
	auth   x.Authenticator
}

var _ weave.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler for the configuration of
// pkg. config is used as the load target and must be of the same type as the
// message patch. The configuration must exist before it can be updated.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{pkg: pkg, config: config, auth: auth}
}

func (h UpdateConfigurationHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	if err := h.update(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) update(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	if err := Load(db, h.pkg, h.config); err != nil {
		return errors.Wrap(err, "load configuration")
	}
	owner := h.config.GetOwner()
	if owner == nil || !h.auth.HasAddress(ctx, owner) {
		return errors.Wrap(errors.ErrUnauthorized, "configuration owner must sign")
	}

	msg, err := tx.GetMsg()
	if err != nil {
		return err
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	patch, err := patchOf(msg)
	if err != nil {
		return err
	}
	if err := applyPatch(h.config, patch); err != nil {
		return err
	}
	return Save(db, h.pkg, h.config)
}

// patchOf extracts the "Patch" field of a message struct.
func patchOf(msg weave.Msg) (OwnedConfig, error) {
	ptr := reflect.ValueOf(msg)
	if ptr.Kind() != reflect.Ptr || ptr.Elem().Kind() != reflect.Struct {
		return nil, errors.Wrapf(errors.ErrInput, "%T is not a struct pointer", msg)
	}
	field := ptr.Elem().FieldByName("Patch")
	if !field.IsValid() || field.Kind() != reflect.Ptr {
		return nil, errors.Wrapf(errors.ErrInput, "%T has no Patch field", msg)
	}
	if field.IsNil() {
		return nil, errors.Wrap(errors.ErrEmpty, "patch")
	}
	patch, ok := field.Interface().(OwnedConfig)
	if !ok {
		return nil, errors.Wrapf(errors.ErrInput, "patch of type %s", field.Type())
	}
	return patch, nil
}

func applyPatch(config, patch OwnedConfig) error {
	if reflect.TypeOf(config) != reflect.TypeOf(patch) {
		return errors.Wrapf(errors.ErrMsg, "patch %T cannot update %T", patch, config)
	}
	dst := reflect.ValueOf(config).Elem()
	src := reflect.ValueOf(patch).Elem()
	for i := 0; i < src.NumField(); i++ {
		f := src.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		dst.Field(i).Set(f)
	}
	return nil
}
