package server

import (
	"encoding/json"
	"flag"
	"io/ioutil"
	"path/filepath"

	"github.com/arabica-labs/arabica/errors"
	"github.com/tendermint/tendermint/libs/log"
)

const (
	flagIgnore = "i"
)

// GenOptions creates the app_state section of the genesis file. It may
// store additional files, such as keys, under home.
type GenOptions func(home string) (json.RawMessage, error)

// InitCmd adds the app_state to the genesis file created by tendermint
// init. An existing app_state is kept, unless -i is given.
func InitCmd(gen GenOptions, logger log.Logger, home string, args []string) error {
	var overwrite bool
	initFlags := flag.NewFlagSet("init", flag.ExitOnError)
	initFlags.BoolVar(&overwrite, flagIgnore, false, "overwrite an existing app_state")
	if err := initFlags.Parse(args); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	genFile := filepath.Join(home, "config", "genesis.json")
	doc, err := readGenesis(genFile)
	if err != nil {
		return err
	}
	if state, ok := doc["app_state"]; ok && len(state) > 0 && string(state) != "null" && !overwrite {
		return errors.Wrapf(errors.ErrState, "app_state already set in %s, use -i to overwrite", genFile)
	}

	options, err := gen(home)
	if err != nil {
		return err
	}
	doc["app_state"] = options
	if err := writeGenesis(genFile, doc); err != nil {
		return err
	}
	logger.Info("app_state written", "path", genFile)
	return nil
}

// GenesisDoc involves some tendermint-specific structures we don't
// want to parse, so we just grab it into a raw object format,
// so we can add one line.
type GenesisDoc map[string]json.RawMessage

func readGenesis(filename string) (GenesisDoc, error) {
	bz, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "read genesis, run tendermint init first: %s", err)
	}
	var doc GenesisDoc
	if err := json.Unmarshal(bz, &doc); err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "decode %s: %s", filename, err)
	}
	return doc, nil
}

func writeGenesis(filename string, doc GenesisDoc) error {
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	if err := ioutil.WriteFile(filename, out, 0600); err != nil {
		return errors.Wrapf(errors.ErrInput, "write %s: %s", filename, err)
	}
	return nil
}
