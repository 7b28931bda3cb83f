package bus

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const subjectPrefix = "trivion.rooms."

// fabricEnvelope wraps a frame on the wire between instances. Origin keeps
// an instance from re-applying its own emissions.
type fabricEnvelope struct {
	Origin string          `json:"origin"`
	Room   string          `json:"room"`
	Member string          `json:"member,omitempty"`
	Frame  json.RawMessage `json:"frame"`
}

// Fabric mirrors emissions through NATS so several instances fan out the
// same room's events. Game state stays process-local; only frames travel.
type Fabric struct {
	nc     *nats.Conn
	sub    *nats.Subscription
	origin string
	log    *zap.Logger
}

// ConnectFabric dials the broker, subscribes to every room subject and
// attaches itself to the bus.
func ConnectFabric(url string, b *Bus, log *zap.Logger) (*Fabric, error) {
	nc, err := nats.Connect(url,
		nats.Name("trivion"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("conectar ao pubsub: %w", err)
	}

	f := &Fabric{nc: nc, origin: uuid.NewString(), log: log}
	sub, err := nc.Subscribe(subjectPrefix+"*", func(msg *nats.Msg) {
		var env fabricEnvelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			log.Warn("invalid fabric envelope", zap.Error(err))
			return
		}
		if env.Origin == f.origin {
			return
		}
		b.deliver(env.Room, env.Member, env.Frame)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("assinar pubsub: %w", err)
	}
	f.sub = sub
	b.fabric = f

	log.Info("pubsub fabric connected", zap.String("url", url))
	return f, nil
}

// forward publishes one emission to the room's subject. The NATS client
// buffers writes, so this does not block room critical sections.
func (f *Fabric) forward(room, member string, frame []byte) {
	env := fabricEnvelope{Origin: f.origin, Room: room, Member: member, Frame: frame}
	data, err := json.Marshal(env)
	if err != nil {
		return
	}
	if err := f.nc.Publish(subjectPrefix+room, data); err != nil {
		f.log.Warn("fabric publish failed", zap.String("room", room), zap.Error(err))
	}
}

// Close drains the connection, flushing pending publishes.
func (f *Fabric) Close() {
	if f.sub != nil {
		_ = f.sub.Unsubscribe()
	}
	if err := f.nc.Drain(); err != nil {
		f.log.Warn("fabric drain", zap.Error(err))
	}
}
