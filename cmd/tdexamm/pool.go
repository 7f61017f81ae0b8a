package main

import (
	"context"

	"github.com/urfave/cli/v2"
)

var (
	poolIDFlag = &cli.StringFlag{
		Name:     "pool",
		Usage:    "the id of the pool",
		Required: true,
	}
	callerFlag = &cli.StringFlag{
		Name:     "caller",
		Usage:    "the account performing the operation",
		Required: true,
	}
)

var (
	poolCmd = cli.Command{
		Name:  "pool",
		Usage: "manage liquidity pools",
		Subcommands: []*cli.Command{
			poolNewCmd, poolListCmd, poolInfoCmd, poolDepositCmd, poolWithdrawCmd,
			poolSharesCmd, poolUpdateSlippageCmd,
		},
	}

	poolNewCmd = &cli.Command{
		Name:  "new",
		Usage: "create a new pool for a pair and fee tier, or get the existing one",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "asset_a",
				Usage:    "the hash of one of the assets of the pair",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "asset_b",
				Usage:    "the hash of the other asset of the pair",
				Required: true,
			},
			&cli.Uint64Flag{
				Name:     "fee",
				Usage:    "the fee tier, as percentage numerator over 100",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "treasury",
				Usage: "the account fees are credited to, defaults to the configured one",
			},
		},
		Action: newPoolAction,
	}
	poolListCmd = &cli.Command{
		Name:   "list",
		Usage:  "list all pools in creation order",
		Action: listPoolsAction,
	}
	poolInfoCmd = &cli.Command{
		Name:   "info",
		Usage:  "get info about a pool",
		Flags:  []cli.Flag{poolIDFlag},
		Action: poolInfoAction,
	}
	poolDepositCmd = &cli.Command{
		Name:  "deposit",
		Usage: "add liquidity to a pool and receive shares",
		Flags: []cli.Flag{
			poolIDFlag,
			callerFlag,
			&cli.StringFlag{
				Name:  "amount_a",
				Usage: "the amount of asset A to deposit, ie. 1.5",
			},
			&cli.StringFlag{
				Name:  "amount_b",
				Usage: "the amount of asset B to deposit, ie. 1.5",
			},
		},
		Action: depositAction,
	}
	poolWithdrawCmd = &cli.Command{
		Name:  "withdraw",
		Usage: "burn shares and receive the pro-rata amounts of both reserves",
		Flags: []cli.Flag{
			poolIDFlag,
			callerFlag,
			&cli.StringFlag{
				Name:  "shares",
				Usage: "the amount of shares to burn, ie. 1.5",
			},
		},
		Action: withdrawAction,
	}
	poolSharesCmd = &cli.Command{
		Name:  "shares",
		Usage: "get the share balance of an account",
		Flags: []cli.Flag{
			poolIDFlag,
			&cli.StringFlag{
				Name:     "holder",
				Usage:    "the account holding the shares",
				Required: true,
			},
		},
		Action: sharesAction,
	}
	poolUpdateSlippageCmd = &cli.Command{
		Name:  "updateslippage",
		Usage: "update the default slippage tolerance of a pool",
		Flags: []cli.Flag{
			poolIDFlag,
			callerFlag,
			&cli.StringFlag{
				Name:     "slippage",
				Usage:    "the new tolerance as a percentage, ie. 2.5",
				Required: true,
			},
		},
		Action: updateSlippageAction,
	}
)

func newPoolAction(ctx *cli.Context) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	pool, err := svc.poolSvc.CreatePool(
		context.Background(),
		ctx.String("asset_a"), ctx.String("asset_b"), ctx.String("treasury"),
		ctx.Uint64("fee"),
	)
	if err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, pool)
}

func listPoolsAction(ctx *cli.Context) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	pools, err := svc.poolSvc.ListPools(context.Background())
	if err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, pools)
}

func poolInfoAction(ctx *cli.Context) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	pool, err := svc.poolSvc.GetPool(context.Background(), ctx.String("pool"))
	if err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, pool)
}

func depositAction(ctx *cli.Context) error {
	amountA, err := parseAmount(ctx, "amount_a")
	if err != nil {
		return err
	}
	amountB, err := parseAmount(ctx, "amount_b")
	if err != nil {
		return err
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	shares, err := svc.poolSvc.AddLiquidity(
		context.Background(), ctx.String("pool"), ctx.String("caller"),
		amountA, amountB,
	)
	if err := checkPersisted(err); err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, map[string]uint64{"shares": shares})
}

func withdrawAction(ctx *cli.Context) error {
	shares, err := parseAmount(ctx, "shares")
	if err != nil {
		return err
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	amountA, amountB, err := svc.poolSvc.RemoveLiquidity(
		context.Background(), ctx.String("pool"), ctx.String("caller"), shares,
	)
	if err := checkPersisted(err); err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, map[string]uint64{
		"amount_a": amountA,
		"amount_b": amountB,
	})
}

func sharesAction(ctx *cli.Context) error {
	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	shares, err := svc.poolSvc.GetShareBalance(
		context.Background(), ctx.String("pool"), ctx.String("holder"),
	)
	if err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, map[string]uint64{"shares": shares})
}

func updateSlippageAction(ctx *cli.Context) error {
	slippage, err := parseSlippage(ctx, "slippage")
	if err != nil {
		return err
	}
	if slippage == nil {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	return checkPersisted(svc.poolSvc.SetSlippage(
		context.Background(), ctx.String("pool"), ctx.String("caller"), *slippage,
	))
}
