package collateral

import (
	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
)

func init() {
	codec.RegisterMsg(&CreateAssetMsg{}, "collateral/create_asset")
	codec.RegisterMsg(&RegisterCollateralMsg{}, "collateral/register")
	codec.RegisterMsg(&LiquidateMsg{}, "collateral/liquidate")
	codec.RegisterMsg(&UpdateValuationMsg{}, "collateral/update_valuation")
	codec.RegisterMsg(&MarkExpiredMsg{}, "collateral/mark_expired")
}

// CreateAssetMsg registers a coffee batch owned by the signer.
type CreateAssetMsg struct {
	BatchID      string
	QualityGrade uint32
	QuantityKg   uint64
	Value        coin.Amount
	FarmLocation string
	HarvestDate  arabica.UnixTime
}

var _ arabica.Msg = (*CreateAssetMsg)(nil)

func (CreateAssetMsg) Path() string { return "collateral/create_asset" }

func (m *CreateAssetMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *CreateAssetMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *CreateAssetMsg) Validate() error {
	errs := validateDetails(m.BatchID, m.QualityGrade, m.QuantityKg, m.Value, m.FarmLocation)
	return errors.AppendField(errs, "HarvestDate", m.HarvestDate.Validate())
}

// RegisterCollateralMsg links an asset to the loan it secures.
type RegisterCollateralMsg struct {
	AssetID    []byte
	LoanID     []byte
	LoanAmount coin.Amount
}

var _ arabica.Msg = (*RegisterCollateralMsg)(nil)

func (RegisterCollateralMsg) Path() string { return "collateral/register" }

func (m *RegisterCollateralMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *RegisterCollateralMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *RegisterCollateralMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "AssetID", validateID(m.AssetID))
	if len(m.LoanID) == 0 {
		errs = errors.AppendField(errs, "LoanID", errors.ErrEmpty)
	}
	if m.LoanAmount.IsZero() {
		errs = errors.AppendField(errs, "LoanAmount", errors.ErrAmount)
	}
	return errs
}

// LiquidateMsg marks an asset as liquidated. Moving the seized asset is
// not part of the registry.
type LiquidateMsg struct {
	AssetID []byte
}

var _ arabica.Msg = (*LiquidateMsg)(nil)

func (LiquidateMsg) Path() string { return "collateral/liquidate" }

func (m *LiquidateMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *LiquidateMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *LiquidateMsg) Validate() error {
	return errors.AppendField(nil, "AssetID", validateID(m.AssetID))
}

// UpdateValuationMsg sets a new value of an active asset.
type UpdateValuationMsg struct {
	AssetID []byte
	Value   coin.Amount
}

var _ arabica.Msg = (*UpdateValuationMsg)(nil)

func (UpdateValuationMsg) Path() string { return "collateral/update_valuation" }

func (m *UpdateValuationMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *UpdateValuationMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *UpdateValuationMsg) Validate() error {
	errs := errors.AppendField(nil, "AssetID", validateID(m.AssetID))
	if m.Value.IsZero() {
		errs = errors.AppendField(errs, "Value", errors.ErrAmount)
	}
	return errs
}

// MarkExpiredMsg marks an asset as expired.
type MarkExpiredMsg struct {
	AssetID []byte
}

var _ arabica.Msg = (*MarkExpiredMsg)(nil)

func (MarkExpiredMsg) Path() string { return "collateral/mark_expired" }

func (m *MarkExpiredMsg) Marshal() ([]byte, error) { return codec.Marshal(m) }
func (m *MarkExpiredMsg) Unmarshal(b []byte) error { return codec.Unmarshal(b, m) }

func (m *MarkExpiredMsg) Validate() error {
	return errors.AppendField(nil, "AssetID", validateID(m.AssetID))
}

func validateID(id []byte) error {
	if len(id) != 8 {
		return errors.Wrapf(errors.ErrInput, "id length %d", len(id))
	}
	return nil
}
