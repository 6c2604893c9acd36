package arabicad

import (
	"crypto/rand"
	"encoding/json"
	"io"
	"io/ioutil"
	"path/filepath"

	"github.com/arabica-labs/arabica"
	"github.com/arabica-labs/arabica/coin"
	"github.com/arabica-labs/arabica/errors"
	"github.com/arabica-labs/arabica/x/cash"
	"github.com/arabica-labs/arabica/x/collateral"
	"github.com/arabica-labs/arabica/x/consensus"
	"github.com/arabica-labs/arabica/x/ledger"
	"github.com/arabica-labs/arabica/x/oracle"
	"github.com/arabica-labs/arabica/x/params"
	"github.com/arabica-labs/arabica/x/sigs"
	"github.com/arabica-labs/arabica/x/vault"
	"github.com/prometheus/client_golang/prometheus"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

// DevnetKeys are the keys controlling a freshly initialized chain.
type DevnetKeys struct {
	Admin     ed25519.PrivateKey   `json:"admin"`
	Committee []ed25519.PrivateKey `json:"committee"`
}

// GenerateKeys creates the admin key and a full committee.
func GenerateKeys(rand io.Reader) (*DevnetKeys, error) {
	_, admin, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	keys := &DevnetKeys{Admin: admin}
	for i := 0; i < consensus.CommitteeSize; i++ {
		_, k, err := ed25519.GenerateKey(rand)
		if err != nil {
			return nil, errors.Wrap(errors.ErrInput, err.Error())
		}
		keys.Committee = append(keys.Committee, k)
	}
	return keys, nil
}

// KeyAddress returns the address authorized by signatures of the key.
func KeyAddress(key ed25519.PrivateKey) arabica.Address {
	pub := key.Public().(ed25519.PublicKey)
	return sigs.PubkeyCondition(pub).Address()
}

// LoadKeys reads the keys written by SaveKeys.
func LoadKeys(path string) (*DevnetKeys, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read %s: %s", path, err)
	}
	var keys DevnetKeys
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode %s: %s", path, err)
	}
	return &keys, nil
}

// SaveKeys writes the keys readable only by the owner.
func SaveKeys(path string, keys *DevnetKeys) error {
	raw, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(path, raw, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "write %s: %s", path, err)
	}
	return nil
}

// Tickers of the devnet assets.
const (
	StableTicker = "USDC"
	GoldTicker   = "PAXG"
)

// appState is the app_state section of the genesis file.
type appState struct {
	Conf   map[string]interface{} `json:"conf"`
	Cash   []cash.GenesisAccount  `json:"cash"`
	Oracle []oracle.GenesisPrice  `json:"oracle"`
	Vault  []vault.GenesisVault   `json:"vault"`
}

// GenInitOptions creates the app_state of a devnet. The admin key
// configures every module and posts prices. It also holds the initial
// stablecoin and gold supply, a part of the stablecoins is reserved in
// custody of the stable vault.
func GenInitOptions(keys *DevnetKeys) (json.RawMessage, error) {
	if len(keys.Committee) != consensus.CommitteeSize {
		return nil, errors.Wrapf(errors.ErrInput, "committee must have %d keys", consensus.CommitteeSize)
	}
	admin := KeyAddress(keys.Admin)
	expertise := []consensus.Expertise{
		consensus.CoffeeIndustry,
		consensus.RiskManagement,
		consensus.Trading,
		consensus.Agriculture,
		consensus.CoffeeIndustry,
	}
	members := make([]consensus.Member, len(keys.Committee))
	for i, k := range keys.Committee {
		members[i] = consensus.Member{
			Address:    KeyAddress(k),
			Expertise:  expertise[i%len(expertise)],
			VoteWeight: 1,
		}
	}

	const unit = 1000000
	state := appState{
		Conf: map[string]interface{}{
			"oracle":     oracle.Configuration{Oracle: admin},
			"params":     params.DefaultParams(),
			"collateral": collateral.Configuration{Admin: admin},
			"vault":      vault.Configuration{Admin: admin},
			"ledger": ledger.Configuration{
				Admin:    admin,
				Minters:  []arabica.Address{vault.CustodyAddress("usd"), vault.CustodyAddress("gold")},
				Name:     "Coffee Yield Token",
				Symbol:   "CYT",
				BaseRate: ledger.DefaultBaseRate,
			},
			"consensus": consensus.Configuration{
				Admin:            admin,
				Committee:        members,
				MinProposalPower: coin.NewAmount(1000 * unit),
			},
		},
		Cash: []cash.GenesisAccount{
			{
				Address: admin,
				Coins: coin.Coins{
					coin.NewCoin(100*unit, GoldTicker),
					coin.NewCoin(1000000*unit, StableTicker),
				},
			},
			{
				Address: vault.CustodyAddress("usd"),
				Coins:   coin.Coins{coin.NewCoin(100000*unit, StableTicker)},
			},
		},
		Oracle: []oracle.GenesisPrice{
			{Ticker: GoldTicker, Price: coin.NewAmount(oracle.MockPrice)},
		},
		Vault: []vault.GenesisVault{
			{Name: "usd", Kind: vault.Stable, Assets: []string{StableTicker}},
			{Name: "gold", Kind: vault.Priced, Assets: []string{GoldTicker}},
		},
	}
	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	return raw, nil
}

// KeysFile is the name of the devnet keys file under the config directory.
const KeysFile = "devnet_keys.json"

// GenInitFiles generates the devnet keys, stores them next to the genesis
// file and returns the matching app_state.
func GenInitFiles(home string) (json.RawMessage, error) {
	keys, err := GenerateKeys(rand.Reader)
	if err != nil {
		return nil, err
	}
	if err := SaveKeys(filepath.Join(home, "config", KeysFile), keys); err != nil {
		return nil, err
	}
	return GenInitOptions(keys)
}

// GenerateApp is used to create a stub for server/start.go command.
func GenerateApp(home string, logger log.Logger, debug bool, reg prometheus.Registerer) (abci.Application, error) {
	// db goes in a subdir, but "" stays "" to use memdb
	var dbPath string
	if home != "" {
		dbPath = filepath.Join(home, "arabica.db")
	}

	application, err := Application(dbPath, reg, debug)
	if err != nil {
		return nil, err
	}
	application.WithLogger(logger)
	return application, nil
}
