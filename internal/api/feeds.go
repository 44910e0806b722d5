package api

import (
	"context"

	"github.com/nerrad567/warehouse-core/internal/feed"
	"github.com/nerrad567/warehouse-core/internal/warehouse"
)

// startFeeds subscribes one change feed per configured entity type.
// Unknown type names are logged and skipped.
func (s *Server) startFeeds(ctx context.Context) {
	for _, entityType := range s.feedCfg.Types {
		unsubscribe, ok := s.subscribe(ctx, entityType)
		if !ok {
			s.logger.Warn("no change feed for entity type", "type", entityType)
			continue
		}
		s.feedsMu.Lock()
		s.unsubscribe = append(s.unsubscribe, unsubscribe)
		s.feedsMu.Unlock()
		s.logger.Info("change feed subscribed", "type", entityType, "interval", s.feedCfg.PollInterval)
	}
}

func (s *Server) subscribe(ctx context.Context, entityType string) (func(), bool) {
	opts := []feed.Option{
		feed.WithInterval(s.feedCfg.PollInterval),
		feed.WithName(entityType),
		feed.WithLogger(s.logger),
	}

	switch entityType {
	case warehouse.TypeSensor:
		return feed.Subscribe(ctx, s.repo.Sensors, Receiver[warehouse.Sensor](s.board, entityType), opts...), true
	case warehouse.TypeInventoryItem:
		return feed.Subscribe(ctx, s.repo.Inventory, Receiver[warehouse.InventoryItem](s.board, entityType), opts...), true
	case warehouse.TypeWarehouseZone:
		return feed.Subscribe(ctx, s.repo.Zones, Receiver[warehouse.WarehouseZone](s.board, entityType), opts...), true
	case warehouse.TypeAlert:
		return feed.Subscribe(ctx, s.repo.Alerts, Receiver[warehouse.Alert](s.board, entityType), opts...), true
	case warehouse.TypeOrder:
		return feed.Subscribe(ctx, s.repo.Orders, Receiver[warehouse.Order](s.board, entityType), opts...), true
	case warehouse.TypeShipment:
		return feed.Subscribe(ctx, s.repo.Shipments, Receiver[warehouse.Shipment](s.board, entityType), opts...), true
	case warehouse.TypeUser:
		return feed.Subscribe(ctx, s.repo.Users, Receiver[warehouse.User](s.board, entityType), opts...), true
	case warehouse.TypeReport:
		return feed.Subscribe(ctx, s.repo.Reports, Receiver[warehouse.Report](s.board, entityType), opts...), true
	case warehouse.TypeSystemSetting:
		return feed.Subscribe(ctx, s.repo.Settings, Receiver[warehouse.SystemSetting](s.board, entityType), opts...), true
	default:
		return nil, false
	}
}

// watchAlerts broadcasts every alert on AlertRaisedChannel the first time
// it appears. Alerts present in the first observed set are not announced.
// It returns when ctx is cancelled.
func (s *Server) watchAlerts(ctx context.Context) {
	var seen map[string]struct{}
	changes := feed.Watch(ctx, s.repo.Alerts,
		feed.WithInterval(s.feedCfg.PollInterval),
		feed.WithName("AlertRaised"),
		feed.WithLogger(s.logger),
	)
	for alerts := range changes {
		current := make(map[string]struct{}, len(alerts))
		for _, alert := range alerts {
			current[alert.ID] = struct{}{}
			if _, known := seen[alert.ID]; seen != nil && !known {
				s.hub.Broadcast(AlertRaisedChannel, alert)
			}
		}
		seen = current
	}
}

func (s *Server) stopFeeds() {
	s.feedsMu.Lock()
	defer s.feedsMu.Unlock()
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
}

// replay maps a "<type>.changed" channel to the type's current snapshot.
func (s *Server) replay(channel string) (any, bool) {
	for _, entityType := range s.feedCfg.Types {
		if ChangedChannel(entityType) != channel {
			continue
		}
		snap, ok := s.board.Get(entityType)
		if !ok {
			return nil, false
		}
		return snap.Records, true
	}
	return nil, false
}
