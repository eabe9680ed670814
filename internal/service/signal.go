package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/totegamma/engaja"
)

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) Publish(ctx context.Context, channel string, event engaja.Event) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, channel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}

// Realtime forwards events whose channel matches one of the latest prefixes
// received on input. It returns when ctx is done or input is closed.
func (s *SignalService) Realtime(ctx context.Context, input <-chan []string, output chan<- engaja.Event) {
	var pubsub *redis.PubSub
	var messages <-chan *redis.Message
	defer func() {
		if pubsub != nil {
			pubsub.Close()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case prefixes, ok := <-input:
			if !ok {
				return
			}
			if pubsub != nil {
				pubsub.Close()
				pubsub, messages = nil, nil
			}
			patterns := make([]string, 0, len(prefixes))
			for _, p := range prefixes {
				p = strings.TrimSpace(p)
				if p == "" {
					continue
				}
				patterns = append(patterns, p+"*")
			}
			if len(patterns) == 0 {
				continue
			}
			pubsub = s.rdb.PSubscribe(ctx, patterns...)
			messages = pubsub.Channel()
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			var event engaja.Event
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				zap.S().Warnw("malformed realtime event", "channel", msg.Channel, "error", err)
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}
