// Package mqttfeed consumes the equipment telemetry feed over MQTT and
// applies it to the fleet registry. The engine never invents equipment
// identities; everything it knows about the fleet arrives through this feed
// or the initial snapshot.
package mqttfeed

import (
	"encoding/json"
	"fmt"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/pitops/minedispatch/core/fleet"
	"github.com/pitops/minedispatch/core/logger"
	"github.com/pitops/minedispatch/core/model"
)

// Config defines the connection parameters for the telemetry subscription.
type Config struct {
	Enabled  bool   `json:"enabled"`
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "minedispatch-feed"
	}
	if c.Topic == "" {
		c.Topic = "mine/fleet/telemetry"
	}
}

// FleetSink receives decoded telemetry snapshots. *fleet.Registry satisfies
// it.
type FleetSink interface {
	Apply(fleet.Snapshot)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Feed is a running telemetry subscription.
type Feed struct {
	cli  pahoClient
	cfg  Config
	sink FleetSink
	log  logger.Logger
}

// New connects to the broker and subscribes to the telemetry topic.
func New(cfg Config, sink FleetSink, log logger.Logger) (*Feed, error) {
	cfg.SetDefaults()
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	cli := newMQTTClient(opts)
	if tok := cli.Connect(); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", tok.Error())
	}
	f := &Feed{cli: cli, cfg: cfg, sink: sink, log: log}
	if tok := cli.Subscribe(cfg.Topic, cfg.QoS, f.handle); tok.Wait() && tok.Error() != nil {
		return nil, fmt.Errorf("mqtt subscribe %s: %w", cfg.Topic, tok.Error())
	}
	log.Infof("telemetry feed subscribed to %s", cfg.Topic)
	return f, nil
}

// Close disconnects from the broker.
func (f *Feed) Close() {
	if f.cli != nil && f.cli.IsConnected() {
		f.cli.Disconnect(250)
	}
}

type equipmentPayload struct {
	ID               string  `json:"id"`
	Status           string  `json:"status"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Zone             string  `json:"zone"`
	Operator         string  `json:"operator"`
	CycleTimeMinutes float64 `json:"cycle_time_minutes"`
	LoadCapacityTons float64 `json:"load_capacity_tons"`
}

type loaderPayload struct {
	equipmentPayload
	Material                string  `json:"material"`
	LoadingZone             string  `json:"loading_zone"`
	CycleRateMinutesPerLoad float64 `json:"cycle_rate_minutes_per_load"`
}

type telemetryPayload struct {
	Loaders []loaderPayload    `json:"loaders"`
	Haulers []equipmentPayload `json:"haulers"`
}

func (f *Feed) handle(_ paho.Client, msg paho.Message) {
	var p telemetryPayload
	if err := json.Unmarshal(msg.Payload(), &p); err != nil {
		f.log.Errorf("invalid telemetry payload: %v", err)
		return
	}
	f.sink.Apply(decode(p))
	f.log.Debugf("applied telemetry for %d loaders, %d haulers", len(p.Loaders), len(p.Haulers))
}

func decode(p telemetryPayload) fleet.Snapshot {
	var snap fleet.Snapshot
	for _, l := range p.Loaders {
		snap.Loaders = append(snap.Loaders, model.Loader{
			Equipment:               decodeEquipment(l.equipmentPayload, model.KindLoader),
			CurrentMaterial:         model.MaterialType(l.Material),
			LoadingZone:             l.LoadingZone,
			CycleRateMinutesPerLoad: l.CycleRateMinutesPerLoad,
		})
	}
	for _, h := range p.Haulers {
		snap.Haulers = append(snap.Haulers, model.Hauler{
			Equipment: decodeEquipment(h, model.KindHauler),
		})
	}
	return snap
}

func decodeEquipment(p equipmentPayload, kind model.EquipmentKind) model.Equipment {
	return model.Equipment{
		ID:               p.ID,
		Kind:             kind,
		Status:           model.ParseEquipmentStatus(p.Status),
		Location:         model.Position{Lat: p.Lat, Lng: p.Lng, Zone: p.Zone},
		Operator:         p.Operator,
		CycleTimeMinutes: p.CycleTimeMinutes,
		LoadCapacityTons: p.LoadCapacityTons,
	}
}
