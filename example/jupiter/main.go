package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/franco-bianco/solanatrades-go/fetch"
	"github.com/franco-bianco/solanatrades-go/parse"
	"github.com/franco-bianco/solanatrades-go/trades"
)

// Jupiter routes through other exchanges, so its swaps surface as inner
// trades whose outer program is the aggregator.
func main() {
	client := fetch.NewClient(fetch.ClientConfig{Endpoint: rpc.MainNetBeta.RPC, MaxRetries: 3})
	txSig := solana.MustSignatureFromBase58("3zQKPvFSSfvZPBRACfTGcDEyzEEx2ZyuqrkLRjbPu8Sjh88euKjGyaBYt3EbRPHpSWh49hBMg6kuLynbx7XPcgTF")

	tx, err := client.GetTransaction(context.TODO(), txSig)
	if err != nil {
		log.Fatalf("error getting tx: %s", err)
	}

	all, err := trades.NewProcessor(nil).ProcessResult(tx)
	if err != nil {
		log.Fatalf("error parsing jup tx: %s", err)
	}

	var route []trades.TradeData
	for _, trade := range all {
		if trade.IsInnerInstruction && trade.OuterProgram == parse.JUPITER_PROGRAM_ID.String() {
			route = append(route, trade)
		}
	}
	fmt.Printf("%d hops routed through Jupiter\n", len(route))

	data, _ := json.MarshalIndent(route, "", "  ")
	fmt.Println(string(data))
}
