package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/arabica-labs/arabica"
	arabicad "github.com/arabica-labs/arabica/cmd/arabicad/app"
	"github.com/arabica-labs/arabica/commands/server"
	"github.com/tendermint/tendermint/libs/log"
	"golang.org/x/crypto/ed25519"
)

var (
	flagHome     = "home"
	flagLogLevel = "log-level"
	varHome      *string
	varLogLevel  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".arabica")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")
	varLogLevel = flag.String(flagLogLevel, "info", "minimal level of logged messages: debug, info, error or none")

	flag.CommandLine.Usage = helpMessage
}

func helpMessage() {
	fmt.Println("arabicad")
	fmt.Println("          Arabica savings and lending node")
	fmt.Println("")
	fmt.Println("help      Print this message")
	fmt.Println("init      Initialize app options in genesis file")
	fmt.Println("start     Run the abci server")
	fmt.Println("keys      Generate a new signing key")
	fmt.Println("version   Print the app version")
	fmt.Println(`
  -home string
        directory to store files under (default "$HOME/.arabica")
  -log-level string
        minimal level of logged messages (default "info")`)
}

func main() {
	flag.Parse()

	level, err := log.AllowLevel(*varLogLevel)
	if err != nil {
		fmt.Printf("Error: %s\n\n", err)
		helpMessage()
		os.Exit(1)
	}
	logger := log.NewFilter(log.NewTMLogger(log.NewSyncWriter(os.Stdout)), level).
		With("module", "arabica")

	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage()
		os.Exit(1)
	}

	cmd := flag.Arg(0)
	rest := flag.Args()[1:]

	switch cmd {
	case "help":
		helpMessage()
	case "init":
		err = server.InitCmd(arabicad.GenInitFiles, logger, *varHome, rest)
	case "start":
		err = server.StartCmd(arabicad.GenerateApp, logger, *varHome, rest)
	case "keys":
		err = keysCmd()
	case "version":
		fmt.Println(arabica.Version())
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage()
		os.Exit(1)
	}
}

func keysCmd() error {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return err
	}
	addr := arabicad.KeyAddress(key)
	b32, err := addr.Bech32()
	if err != nil {
		return err
	}
	fmt.Printf("address: %s\n", addr)
	fmt.Printf("bech32:  %s\n", b32)
	fmt.Printf("private: %s\n", hex.EncodeToString(key))
	return nil
}
