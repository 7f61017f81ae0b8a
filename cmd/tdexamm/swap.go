package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v2"
)

var errNoPoolForSwap = errors.New("no pool can serve the requested swap")

var swapCmd = cli.Command{
	Name:  "swap",
	Usage: "sell an amount of one asset of a pool in exchange for the other",
	Flags: []cli.Flag{
		poolIDFlag,
		callerFlag,
		&cli.StringFlag{
			Name:     "asset_in",
			Usage:    "the hash of the asset to sell",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "amount_in",
			Usage: "the amount to sell, ie. 1.5",
		},
		&cli.StringFlag{
			Name:  "slippage",
			Usage: "the tolerance as a percentage (ie. 2.5), defaults to the pool one",
		},
	},
	Action: swapAction,
}

var previewCmd = cli.Command{
	Name:  "preview",
	Usage: "preview a swap without executing it",
	Flags: []cli.Flag{
		poolIDFlag,
		&cli.StringFlag{
			Name:     "asset",
			Usage:    "the hash of the asset to sell, or to buy if --buy is set",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "amount",
			Usage: "the amount to sell, or to buy if --buy is set, ie. 1.5",
		},
		&cli.BoolFlag{
			Name:  "buy",
			Usage: "compute the amount to sell to receive the given amount",
		},
	},
	Action: previewAction,
}

var recommendCmd = cli.Command{
	Name:  "recommend",
	Usage: "find the pool giving the best output for a swap across fee tiers",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "asset_in",
			Usage:    "the hash of the asset to sell",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "asset_out",
			Usage:    "the hash of the asset to buy",
			Required: true,
		},
		&cli.StringFlag{
			Name:  "amount_in",
			Usage: "the amount to sell, ie. 1.5",
		},
	},
	Action: recommendAction,
}

func swapAction(ctx *cli.Context) error {
	amountIn, err := parseAmount(ctx, "amount_in")
	if err != nil {
		return err
	}
	slippage, err := parseSlippage(ctx, "slippage")
	if err != nil {
		return err
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	receipt, err := svc.poolSvc.Swap(
		context.Background(), ctx.String("pool"), ctx.String("caller"),
		ctx.String("asset_in"), amountIn, slippage,
	)
	if err := checkPersisted(err); err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, receipt)
}

func previewAction(ctx *cli.Context) error {
	amount, err := parseAmount(ctx, "amount")
	if err != nil {
		return err
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	poolID, asset := ctx.String("pool"), ctx.String("asset")
	preview := svc.poolSvc.PreviewSwapOut
	if ctx.Bool("buy") {
		preview = svc.poolSvc.PreviewSwapIn
	}

	resp, err := preview(context.Background(), poolID, asset, amount)
	if err != nil {
		return err
	}

	return printRespJSON(ctx.App.Writer, resp)
}

func recommendAction(ctx *cli.Context) error {
	amountIn, err := parseAmount(ctx, "amount_in")
	if err != nil {
		return err
	}

	svc, err := getServices()
	if err != nil {
		return err
	}
	defer svc.close()

	recommendation, err := svc.poolSvc.RecommendPool(
		context.Background(), ctx.String("asset_in"), ctx.String("asset_out"),
		amountIn,
	)
	if err != nil {
		return err
	}
	if !recommendation.Found() {
		return errNoPoolForSwap
	}

	return printRespJSON(ctx.App.Writer, recommendation)
}
