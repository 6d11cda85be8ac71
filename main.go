package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"github.com/franco-bianco/solanatrades-go/indexer"
)

/*
Example Transactions:
- Orca: 2kAW5GAhPZjM3NoSrhJVHdEpwjmq9neWtckWnjopCfsmCGB27e3v2ZyMM79FdsL4VWGEtYSFi1sF1Zhs7bqdoaVT
- Pumpfun: 4Cod1cNGv6RboJ7rSB79yeVCR4Lfd25rFgLY3eiPJfTJjTGyYP1r2i1upAYZHQsWDqUbGd1bhTRm1bpSQcpWMnEz
- Jupiter: DBctXdTTtvn7Rr4ikeJFCBz4AtHmJRyjHGQFpE59LuY3Shb7UcRJThAXC7TGRXXskXuu9LEm9RqtU6mWxe5cjPF
- Meteora DLMM: 125MRda3h1pwGZpPRwSRdesTPiETaKvy4gdiizyc3SWAik4cECqKGw2gggwyA1sb2uekQVkupA2X9S4vKjbstxx3
- Rayd V4: 5kaAWK5X9DdMmsWm6skaUXLd6prFisuYJavd9B62A941nRGcrmwvncg3tRtUfn7TcMLsrrmjCChdEjK3sjxS6YG9
- Rayd CPMM: afUCiFQ6amxuxx2AAwsghLt7Q9GYqHfZiF4u3AHhAzs8p1ThzmrtSUFMbcdJy8UnQNTa35Fb1YqxR6F9JMZynYp
- Meteora Pools Program: 4uuw76SPksFw6PvxLFkG9jRyReV1F4EyPYNc3DdSECip8tM22ewqGWJUaRZ1SJEZpuLJz1qPTEPb2es8Zuegng9Z
*/

const usage = `usage: solanatrades <command> [flags]

commands:
  index      decode every block in [-start, -end], newest first
  reprocess  decode the slots listed in -slots (one per line) or given as arguments
  follow     decode new blocks as the chain tip advances
  tx         decode a single transaction and print its trades as JSON
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "index":
		err = runIndex(ctx, args)
	case "reprocess":
		err = runReprocess(ctx, args)
	case "follow":
		err = runFollow(ctx, args)
	case "tx":
		err = runTx(ctx, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		logrus.Fatalf("%s: %s", os.Args[1], err)
	}
}

func runIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	configPath := fs.String("config", "", "properties file (default indexer.properties if present)")
	start := fs.Uint64("start", 0, "first slot")
	end := fs.Uint64("end", 0, "last slot (default: current tip)")
	_ = fs.Parse(args)

	app, err := newApp(ctx, *configPath, true)
	if err != nil {
		return err
	}
	defer app.Close()

	last := *end
	if last == 0 {
		if last, err = app.fetcher.LatestSlot(ctx); err != nil {
			return fmt.Errorf("latest slot: %w", err)
		}
	}

	_, err = app.indexer.IndexRange(ctx, *start, last)
	return err
}

func runReprocess(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reprocess", flag.ExitOnError)
	configPath := fs.String("config", "", "properties file (default indexer.properties if present)")
	slotsFile := fs.String("slots", "", "file with one slot per line")
	_ = fs.Parse(args)

	var slots []uint64
	if *slotsFile != "" {
		fromFile, err := indexer.ReadSlotsFile(*slotsFile)
		if err != nil {
			return err
		}
		slots = append(slots, fromFile...)
	}
	for _, arg := range fs.Args() {
		var slot uint64
		if _, err := fmt.Sscan(arg, &slot); err != nil {
			return fmt.Errorf("invalid slot %q", arg)
		}
		slots = append(slots, slot)
	}
	if len(slots) == 0 {
		return errors.New("no slots given")
	}

	app, err := newApp(ctx, *configPath, true)
	if err != nil {
		return err
	}
	defer app.Close()

	_, err = app.indexer.Reprocess(ctx, slots)
	return err
}

func runFollow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	configPath := fs.String("config", "", "properties file (default indexer.properties if present)")
	from := fs.Uint64("from", 0, "first slot (default: current tip)")
	_ = fs.Parse(args)

	app, err := newApp(ctx, *configPath, true)
	if err != nil {
		return err
	}
	defer app.Close()

	return app.indexer.Follow(ctx, *from)
}

func runTx(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tx", flag.ExitOnError)
	configPath := fs.String("config", "", "properties file (default indexer.properties if present)")
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return errors.New("expected exactly one transaction signature")
	}

	sig, err := solana.SignatureFromBase58(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("signature: %w", err)
	}

	app, err := newApp(ctx, *configPath, false)
	if err != nil {
		return err
	}
	defer app.Close()

	res, err := app.fetcher.GetTransaction(ctx, sig)
	if err != nil {
		return fmt.Errorf("error getting tx: %w", err)
	}

	trades, err := app.processor.ProcessResult(res)
	if err != nil {
		return fmt.Errorf("error parsing transaction: %w", err)
	}

	marshalledData, _ := json.MarshalIndent(trades, "", "  ")
	fmt.Println(string(marshalledData))
	return nil
}
