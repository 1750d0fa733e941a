package observe

import (
	"time"

	"github.com/statekit-dev/statekit/pkg/state"
)

// Multi returns an instrument that forwards every observation to each of
// the given instruments, in order. Nil entries are skipped.
func Multi(instruments ...state.Instrument) state.Instrument {
	kept := make([]state.Instrument, 0, len(instruments))
	for _, inst := range instruments {
		if inst != nil {
			kept = append(kept, inst)
		}
	}
	return multiInstrument(kept)
}

type multiInstrument []state.Instrument

func (m multiInstrument) UpdateObserved(store string, status state.UpdateStatus, elapsed time.Duration) {
	for _, inst := range m {
		inst.UpdateObserved(store, status, elapsed)
	}
}

func (m multiInstrument) DeliveryObserved(store string, count int) {
	for _, inst := range m {
		inst.DeliveryObserved(store, count)
	}
}

func (m multiInstrument) SubscribersChanged(store string, count int) {
	for _, inst := range m {
		inst.SubscribersChanged(store, count)
	}
}
