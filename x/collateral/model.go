package collateral

import (
	"fmt"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/orm"
)

// Status is the lifecycle state of an asset.
type Status uint32

const (
	Active Status = iota + 1
	Liquidated
	Expired
)

func (s Status) String() string {
	switch s {
	case Active:
		return "active"
	case Liquidated:
		return "liquidated"
	case Expired:
		return "expired"
	default:
		return fmt.Sprintf("status(%d)", uint32(s))
	}
}

// Validate returns an error for unknown states.
func (s Status) Validate() error {
	if s < Active || s > Expired {
		return errors.Wrapf(errors.ErrState, "unknown status %d", uint32(s))
	}
	return nil
}

const (
	minQualityGrade = 1
	maxQualityGrade = 100
	maxBatchIDSize  = 64
	maxLocationSize = 128
)

// Asset is a registered coffee batch.
type Asset struct {
	Owner        arabica.Address
	BatchID      string
	QualityGrade uint32
	QuantityKg   uint64
	Value        coin.Amount
	FarmLocation string
	HarvestDate  arabica.UnixTime
	CreatedAt    arabica.UnixTime
	// LoanID is empty until the asset secures a loan.
	LoanID []byte
	Status Status
}

var _ orm.Model = (*Asset)(nil)

func (a *Asset) Marshal() ([]byte, error) { return codec.Marshal(a) }
func (a *Asset) Unmarshal(b []byte) error { return codec.Unmarshal(b, a) }

func (a *Asset) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Owner", a.Owner.Validate())
	errs = errors.AppendField(errs, "Details", validateDetails(a.BatchID, a.QualityGrade, a.QuantityKg, a.Value, a.FarmLocation))
	errs = errors.AppendField(errs, "HarvestDate", a.HarvestDate.Validate())
	errs = errors.AppendField(errs, "CreatedAt", a.CreatedAt.Validate())
	errs = errors.AppendField(errs, "Status", a.Status.Validate())
	return errs
}

func validateDetails(batchID string, grade uint32, kg uint64, value coin.Amount, location string) error {
	var errs error
	if batchID == "" || len(batchID) > maxBatchIDSize {
		errs = errors.AppendField(errs, "BatchID", errors.ErrInput)
	}
	if grade < minQualityGrade || grade > maxQualityGrade {
		errs = errors.AppendField(errs, "QualityGrade", errors.ErrInput)
	}
	if kg == 0 {
		errs = errors.AppendField(errs, "QuantityKg", errors.ErrAmount)
	}
	if value.IsZero() {
		errs = errors.AppendField(errs, "Value", errors.ErrAmount)
	}
	if location == "" || len(location) > maxLocationSize {
		errs = errors.AppendField(errs, "FarmLocation", errors.ErrInput)
	}
	return errs
}

// Configuration of the registry.
type Configuration struct {
	Admin arabica.Address `json:"admin"`
}

func (c *Configuration) Marshal() ([]byte, error) { return codec.Marshal(c) }
func (c *Configuration) Unmarshal(b []byte) error { return codec.Unmarshal(b, c) }

func (c *Configuration) Validate() error {
	return errors.AppendField(nil, "Admin", c.Admin.Validate())
}

// NewAssetBucket returns the bucket storing assets under a sequence id.
func NewAssetBucket() orm.ModelBucket {
	return orm.NewModelBucket("assets", &Asset{},
		orm.WithIDSequence(orm.NewSequence("assets", "id")))
}
