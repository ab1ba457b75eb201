package availability

import (
	"context"
	"fmt"
)

type ItemLister interface {
	ListItems(ctx context.Context, table string, fields []string) ([]map[string]any, error)
}

// ConnectorSource reads bookings from a remote list connector. The connector cannot
// filter, so the whole table is returned and the checker filters client-side.
type ConnectorSource struct {
	lister ItemLister
	table  string
}

func NewConnectorSource(lister ItemLister, table string) *ConnectorSource {
	return &ConnectorSource{lister: lister, table: table}
}

func (s *ConnectorSource) FetchBookings(ctx context.Context, q Query) ([]Record, error) {
	items, err := s.lister.ListItems(ctx, s.table, q.Fields)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.table, err)
	}

	records := make([]Record, len(items))
	for i, item := range items {
		records[i] = Record(item)
	}
	return records, nil
}
