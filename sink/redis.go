package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/franco-bianco/solanatrades-go/trades"
)

const (
	ChannelAll           = "trades:all"
	channelProgramPrefix = "trades:program:"
)

// ProgramChannel is the channel carrying the trades of one exchange program.
func ProgramChannel(program string) string {
	return channelProgramPrefix + program
}

// Publisher publishes every batch on Redis pub/sub.
type Publisher struct {
	client *redis.Client
}

func NewPublisher(addr string) *Publisher {
	return &Publisher{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
	}
}

func NewPublisherFromClient(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Write publishes the whole batch on ChannelAll and each program's trades on
// its program channel.
func (p *Publisher) Write(ctx context.Context, batch trades.Batch) error {
	messages, err := messages(batch)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	for channel, data := range messages {
		pipe.Publish(ctx, channel, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish slot %d: %w", batch.Slot, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.client.Close()
}

func messages(batch trades.Batch) (map[string][]byte, error) {
	out := make(map[string][]byte)

	data, err := json.Marshal(batch)
	if err != nil {
		return nil, err
	}
	out[ChannelAll] = data

	for program, subset := range batch.ByProgram() {
		data, err := json.Marshal(trades.Batch{Slot: batch.Slot, Date: batch.Date, Trades: subset})
		if err != nil {
			return nil, err
		}
		out[ProgramChannel(program)] = data
	}
	return out, nil
}
