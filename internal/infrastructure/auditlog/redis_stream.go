package auditlog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"lending-engine/internal/domain/audit"
)

// appendOnce adds the event to the stream unless its id was seen before, so
// at-least-once delivery from the outbox produces one stream entry.
var appendOnce = redis.NewScript(`
if redis.call("SET", KEYS[2], "1", "NX", "EX", ARGV[1]) then
	return redis.call("XADD", KEYS[1], "*", "event_id", ARGV[2], "action", ARGV[3], "loan_id", ARGV[4], "payload", ARGV[5])
end
return false
`)

// StreamEmitter appends audit events to a Redis stream.
type StreamEmitter struct {
	rdb      *redis.Client
	stream   string
	dedupTTL time.Duration
}

func NewStreamEmitter(rdb *redis.Client, stream string) *StreamEmitter {
	return &StreamEmitter{rdb: rdb, stream: stream, dedupTTL: 7 * 24 * time.Hour}
}

func (s *StreamEmitter) Emit(ctx context.Context, e audit.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	keys := []string{s.stream, s.stream + ":seen:" + e.EventID}
	err = appendOnce.Run(ctx, s.rdb, keys,
		int64(s.dedupTTL/time.Second), e.EventID, string(e.Action), e.LoanID, payload,
	).Err()
	if errors.Is(err, redis.Nil) {
		return nil // already appended
	}
	return err
}
