package connectivity

import (
	"context"

	"github.com/MKhiriev/go-trip-keeper/internal/logger"
)

// Notifier is a Monitor fed by the host: platform reachability events are
// forwarded through SetOnline.
type Notifier struct {
	*hub
}

var _ Monitor = (*Notifier)(nil)

// NewNotifier returns a Notifier starting in the initial state.
func NewNotifier(initial bool, log *logger.Logger) *Notifier {
	return &Notifier{hub: newHub(initial, log)}
}

// SetOnline reports a platform connectivity event. Repeated events with
// the same state are not edges and are ignored.
func (n *Notifier) SetOnline(online bool) {
	n.set(online)
}

func (n *Notifier) Start(context.Context) error {
	n.start()
	return nil
}

func (n *Notifier) Stop() {
	n.stop()
}
