package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/LedgerDB/common"
	"github.com/Fantom-foundation/LedgerDB/state"
)

var (
	addressFlag = cli.StringFlag{
		Name:     "address",
		Usage:    "the hex encoded account address",
		Required: true,
	}
)

var getAccountCommand = cli.Command{
	Action: getAccount,
	Name:   "account",
	Usage:  "prints the state of a single account",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
		&addressFlag,
	},
}

func getAccount(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	address := common.HexToAddress(ctx.String(addressFlag.Name))

	db, err := state.NewDatabase(state.Config{Directory: dir})
	if err != nil {
		return err
	}
	defer func() {
		if closeError := db.Close(); closeError != nil {
			if err == nil {
				err = closeError
			} else {
				log.Printf("Failure closing DB: %v", closeError)
			}
		}
	}()

	account, err := db.ReadHandle().GetAccountByAddress(address)
	if err != nil {
		return fmt.Errorf("looking up %v: %w", address, err)
	}
	fmt.Printf("Address:      %v\n", address)
	fmt.Printf("Nonce:        %d\n", account.Nonce)
	fmt.Printf("Balance:      %v\n", account.Balance)
	fmt.Printf("Storage root: %v\n", account.StorageRoot)
	return nil
}
