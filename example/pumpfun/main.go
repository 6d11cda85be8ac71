package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"

	"github.com/franco-bianco/solanatrades-go/fetch"
	"github.com/franco-bianco/solanatrades-go/parse"
	"github.com/franco-bianco/solanatrades-go/trades"
)

func main() {
	client := fetch.NewClient(fetch.ClientConfig{
		Endpoint:   "https://api.mainnet-beta.solana.com",
		MaxRetries: 3,
	})

	tx, err := client.GetTransaction(
		context.Background(),
		solana.MustSignatureFromBase58("4kPxWuFqG6Jj5uutxv67K87DYuVrQukuBpP1UHbT7Hd16KUGA7fanQtZKgwTzE1HBK3WvzGHmRbhhadJTokLpchj"),
	)
	if err != nil {
		log.Fatalf("failed to get tx: %s", err)
	}

	data, err := trades.NewProcessor(nil).ProcessResult(tx)
	if err != nil {
		log.Fatalf("failed to parse tx: %s", err)
	}

	for _, trade := range data {
		if trade.Program() != parse.PUMP_FUN_PROGRAM_ID.String() {
			continue
		}
		marshalledTx, _ := json.MarshalIndent(trade, "", "  ")
		fmt.Printf("%s %.6f SOL:\n%s\n", trade.InstructionType, trade.QuoteAmount, marshalledTx)
	}
}
