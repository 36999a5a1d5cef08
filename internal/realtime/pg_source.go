package realtime

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// PGSource listens for trigger-issued NOTIFY events on a dedicated
// connection. Reconnection is not attempted; when the connection fails the
// change channel is closed.
type PGSource struct {
	connString string
}

func NewPGSource(connString string) *PGSource {
	return &PGSource{connString: connString}
}

func (s *PGSource) Listen(ctx context.Context, tables []string) (<-chan Change, error) {
	conn, err := pgx.Connect(ctx, s.connString)
	if err != nil {
		return nil, fmt.Errorf("connect listener: %w", err)
	}

	for _, table := range tables {
		channel := pgx.Identifier{ChannelName(table)}.Sanitize()
		if _, err := conn.Exec(ctx, "LISTEN "+channel); err != nil {
			_ = conn.Close(context.Background())
			return nil, fmt.Errorf("listen on %s: %w", channel, err)
		}
	}

	events := make(chan Change, 16)
	go func() {
		defer close(events)
		defer conn.Close(context.Background())

		for {
			n, err := conn.WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Error().Err(err).Msg("postgres change listener stopped")
				}
				return
			}

			c := Change{Table: TableFromChannel(n.Channel), Op: Op(n.Payload)}
			select {
			case events <- c:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}
