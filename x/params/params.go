package params

import (
	"fmt"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/codec"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/gconf"
)

const pkg = "params"

// Parameter identifies a single protocol parameter.
type Parameter uint32

const (
	MinimumLockPeriod Parameter = iota
	MaximumYieldRate
	CollateralRatio
	ProtocolFeeRate
	EmergencyWithdrawFee
)

var parameterNames = map[Parameter]string{
	MinimumLockPeriod:    "minimum_lock_period",
	MaximumYieldRate:     "maximum_yield_rate",
	CollateralRatio:      "collateral_ratio",
	ProtocolFeeRate:      "protocol_fee_rate",
	EmergencyWithdrawFee: "emergency_withdraw_fee",
}

func (p Parameter) String() string {
	if n, ok := parameterNames[p]; ok {
		return n
	}
	return fmt.Sprintf("parameter(%d)", uint32(p))
}

// Validate returns an error for unknown parameters.
func (p Parameter) Validate() error {
	if _, ok := parameterNames[p]; !ok {
		return errors.Wrapf(errors.ErrInput, "unknown parameter %d", uint32(p))
	}
	return nil
}

// Params are the current values of all protocol parameters. Rates and fees
// are in basis points, the lock period is in seconds.
type Params struct {
	MinimumLockPeriod    uint64 `json:"minimum_lock_period"`
	MaximumYieldRate     uint64 `json:"maximum_yield_rate"`
	CollateralRatio      uint64 `json:"collateral_ratio"`
	ProtocolFeeRate      uint64 `json:"protocol_fee_rate"`
	EmergencyWithdrawFee uint64 `json:"emergency_withdraw_fee"`
}

// DefaultParams are used until governance changes them.
func DefaultParams() Params {
	return Params{
		MinimumLockPeriod:    uint64(90 * arabica.Day.Seconds()),
		MaximumYieldRate:     2000,
		CollateralRatio:      15000,
		ProtocolFeeRate:      2000,
		EmergencyWithdrawFee: 1000,
	}
}

func (p *Params) Marshal() ([]byte, error) { return codec.Marshal(p) }
func (p *Params) Unmarshal(b []byte) error { return codec.Unmarshal(b, p) }

func (p *Params) Validate() error {
	var errs error
	if p.MaximumYieldRate == 0 || p.MaximumYieldRate > coin.BasisPoints {
		errs = errors.AppendField(errs, "MaximumYieldRate", errors.ErrInput)
	}
	if p.CollateralRatio < coin.BasisPoints {
		errs = errors.AppendField(errs, "CollateralRatio", errors.ErrInput)
	}
	if p.ProtocolFeeRate > coin.BasisPoints {
		errs = errors.AppendField(errs, "ProtocolFeeRate", errors.ErrInput)
	}
	if p.EmergencyWithdrawFee > coin.BasisPoints {
		errs = errors.AppendField(errs, "EmergencyWithdrawFee", errors.ErrInput)
	}
	return errs
}

// With returns a copy of the parameters with a single value changed. The
// result is not validated.
func (p Params) With(param Parameter, value coin.Amount) (Params, error) {
	v, ok := value.Uint64()
	if !ok {
		return p, errors.Wrapf(errors.ErrOverflow, "%s value %s", param, value)
	}
	switch param {
	case MinimumLockPeriod:
		p.MinimumLockPeriod = v
	case MaximumYieldRate:
		p.MaximumYieldRate = v
	case CollateralRatio:
		p.CollateralRatio = v
	case ProtocolFeeRate:
		p.ProtocolFeeRate = v
	case EmergencyWithdrawFee:
		p.EmergencyWithdrawFee = v
	default:
		return p, param.Validate()
	}
	return p, nil
}

// Controller gives access to the protocol parameters.
type Controller interface {
	Params(db arabica.ReadOnlyKVStore) (Params, error)
	Set(db arabica.KVStore, param Parameter, value coin.Amount) error
}

// BaseController stores the parameters as a configuration record.
type BaseController struct{}

var _ Controller = BaseController{}

// NewController returns the default Controller.
func NewController() BaseController {
	return BaseController{}
}

// Params returns the current parameters, or the defaults if none were
// stored.
func (BaseController) Params(db arabica.ReadOnlyKVStore) (Params, error) {
	var p Params
	switch err := gconf.Load(db, pkg, &p); {
	case errors.ErrNotFound.Is(err):
		return DefaultParams(), nil
	case err != nil:
		return Params{}, err
	}
	return p, nil
}

// Set changes a single parameter. The result must be valid.
func (c BaseController) Set(db arabica.KVStore, param Parameter, value coin.Amount) error {
	p, err := c.Params(db)
	if err != nil {
		return err
	}
	if p, err = p.With(param, value); err != nil {
		return err
	}
	return gconf.Save(db, pkg, &p)
}

// Initializer stores the genesis parameters. It is optional, the defaults
// apply when the genesis file does not configure any.
type Initializer struct{}

var _ arabica.Initializer = Initializer{}

func (Initializer) FromGenesis(opts arabica.Options, db arabica.KVStore) error {
	var conf arabica.Options
	if err := opts.ReadOptions("conf", &conf); err != nil {
		return err
	}
	if conf[pkg] == nil {
		return nil
	}
	p := DefaultParams()
	return gconf.InitConfig(db, opts, pkg, &p)
}
