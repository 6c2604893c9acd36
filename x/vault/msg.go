package vault

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
)

func init() {
	codec.RegisterMsg(&DepositMsg{}, "vault/deposit")
	codec.RegisterMsg(&WithdrawMsg{}, "vault/withdraw")
	codec.RegisterMsg(&EmergencyWithdrawMsg{}, "vault/emergency_withdraw")
	codec.RegisterMsg(&AddSupportedAssetMsg{}, "vault/add_supported_asset")
}

func validateVault(name string) error {
	if !validName(name) {
		return errors.Wrapf(errors.ErrInput, "vault name %q", name)
	}
	return nil
}

// DepositMsg locks an asset of the signer in a vault.
type DepositMsg struct {
	Vault      string
	Asset      coin.Coin
	LockPeriod LockPeriod
}

var _ arabica.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string { return "vault/deposit" }

func (m *DepositMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *DepositMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Vault", validateVault(m.Vault))
	errs = errors.AppendField(errs, "Asset", m.Asset.Validate())
	if !m.Asset.IsPositive() {
		errs = errors.AppendField(errs, "Asset", errors.ErrAmount)
	}
	errs = errors.AppendField(errs, "LockPeriod", m.LockPeriod.Validate())
	return errs
}

// WithdrawMsg releases the deposit of the signer after the lock expired.
type WithdrawMsg struct {
	Vault string
}

var _ arabica.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string { return "vault/withdraw" }

func (m *WithdrawMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *WithdrawMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *WithdrawMsg) Validate() error {
	return errors.AppendField(nil, "Vault", validateVault(m.Vault))
}

// EmergencyWithdrawMsg releases the deposit of a user before the lock
// expired, minus a fee. Administrator only.
type EmergencyWithdrawMsg struct {
	Vault string
	User  arabica.Address
}

var _ arabica.Msg = (*EmergencyWithdrawMsg)(nil)

func (EmergencyWithdrawMsg) Path() string { return "vault/emergency_withdraw" }

func (m *EmergencyWithdrawMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *EmergencyWithdrawMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *EmergencyWithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Vault", validateVault(m.Vault))
	errs = errors.AppendField(errs, "User", m.User.Validate())
	return errs
}

// AddSupportedAssetMsg makes a priced vault accept another asset.
type AddSupportedAssetMsg struct {
	Vault  string
	Ticker string
}

var _ arabica.Msg = (*AddSupportedAssetMsg)(nil)

func (AddSupportedAssetMsg) Path() string { return "vault/add_supported_asset" }

func (m *AddSupportedAssetMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *AddSupportedAssetMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *AddSupportedAssetMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Vault", validateVault(m.Vault))
	if !coin.IsTicker(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	return errs
}
