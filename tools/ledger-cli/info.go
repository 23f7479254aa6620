package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"

	"github.com/Fantom-foundation/LedgerDB/state"
)

var (
	dbDirectoryFlag = cli.StringFlag{
		Name:     "dir",
		Usage:    "the targeted backup directory",
		Required: true,
	}
)

var getInfoCommand = cli.Command{
	Action: getInfo,
	Name:   "info",
	Usage:  "prints summary information about a ledger DB backup directory",
	Flags: []cli.Flag{
		&dbDirectoryFlag,
	},
}

func getInfo(ctx *cli.Context) (err error) {
	dir := ctx.String(dbDirectoryFlag.Name)
	log.Printf("Opening ledger DB in %v ...", dir)
	db, err := state.NewDatabase(state.Config{Directory: dir})
	if err != nil {
		return err
	}
	defer func() {
		log.Printf("Closing ledger DB in %v ...", dir)
		if closeError := db.Close(); closeError != nil {
			if err == nil {
				err = closeError
			} else {
				log.Printf("Failure closing DB: %v", closeError)
			}
		}
	}()

	handle := db.ReadHandle()
	stateHandle := handle.StateHandle()
	txnHandle := handle.TransactionHandle()
	claimHandle := handle.ClaimHandle()

	fmt.Printf("State root:        %v (%d accounts)\n", stateHandle.RootHash(), stateHandle.Len())
	fmt.Printf("Transactions root: %v (%d records)\n", txnHandle.RootHash(), txnHandle.Len())
	fmt.Printf("Claims root:       %v (%d claims)\n", claimHandle.RootHash(), claimHandle.Len())

	return nil
}
