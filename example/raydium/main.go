package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/solanatrades-go/fetch"
	"github.com/franco-bianco/solanatrades-go/parse"
	"github.com/franco-bianco/solanatrades-go/trades"
)

func main() {
	endpoint := os.Getenv("SOLANA_RPC_URL")
	if endpoint == "" {
		endpoint = rpc.MainNetBeta.RPC
	}
	client := fetch.NewClient(fetch.ClientConfig{Endpoint: endpoint, MaxRetries: 3})
	txSig := solana.MustSignatureFromBase58("3eX1BY3v8shJXVv7f8Y632SM6ErbfXJ4M8usSsDSeU85LysVSrPY2ABg9RU4hRw71NxPaUbiGMgLD1U8teRa2irx")

	tx, err := client.GetTransaction(context.TODO(), txSig)
	if err != nil {
		log.Fatalf("error getting tx: %s", err)
	}

	all, err := trades.NewProcessor(nil).ProcessResult(tx)
	if err != nil {
		log.Fatalf("error parsing raydium tx: %s", err)
	}

	raydiumPrograms := map[string]bool{
		parse.RAYDIUM_V4_PROGRAM_ID.String():                     true,
		parse.RAYDIUM_CPMM_PROGRAM_ID.String():                   true,
		parse.RAYDIUM_CONCENTRATED_LIQUIDITY_PROGRAM_ID.String(): true,
	}
	var swaps []trades.TradeData
	for _, trade := range all {
		if raydiumPrograms[trade.Program()] {
			swaps = append(swaps, trade)
		}
	}

	data, _ := json.MarshalIndent(swaps, "", "  ")
	fmt.Println(string(data))
}
