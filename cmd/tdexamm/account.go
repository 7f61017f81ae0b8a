package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var (
	accountCmd = cli.Command{
		Name:  "account",
		Usage: "manage the balances of external accounts",
		Subcommands: []*cli.Command{
			accountFundCmd, accountBalanceCmd,
		},
	}

	accountFundCmd = &cli.Command{
		Name:  "fund",
		Usage: "credit an account with an amount of asset",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "the account to credit",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "asset",
				Usage:    "the hash of the asset",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "amount",
				Usage: "the amount to credit, ie. 1.5",
			},
		},
		Action: fundAction,
	}
	accountBalanceCmd = &cli.Command{
		Name:  "balance",
		Usage: "get the balances of an account, pool shares included",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "account",
				Usage:    "the account to inspect",
				Required: true,
			},
		},
		Action: balanceAction,
	}
)

func fundAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx, "amount")
	if err != nil {
		return err
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	return svc.gateway.Fund(
		context.Background(), ctx.String("account"), ctx.String("asset"), amount,
	)
}

func balanceAction(ctx *cli.Context) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	balances, err := svc.gateway.Store().GetBalances(
		context.Background(), ctx.String("account"),
	)
	if err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, balances)
}
