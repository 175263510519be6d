package wasmi

// FuelConsumed reports how much fuel an Instance's executor has spent so
// far, only meaningful when the owning Runtime was built WithFuelConsumption
// (spec.md §6 "Fuel metering").
func (i *Instance) FuelConsumed() (uint64, bool) {
	if !i.store.runtime.cfg.FuelEnabled {
		return 0, false
	}
	return i.store.fuelConsumed(), true
}

// AddFuel adds n units to the Store's remaining fuel budget. The translator
// places one OpConsumeFuel of weight 1 at the head of every loop body, so
// each loop iteration costs one unit; straight-line code, blocks and calls
// are not charged. Reaching zero does not trap by itself: the next charge
// that finds too little fuel leaves the budget at zero and traps with
// TrapCodeOutOfFuel.
func (i *Instance) AddFuel(n uint64) error {
	if !i.store.runtime.cfg.FuelEnabled {
		return errorString("wasmi: fuel consumption not enabled on this runtime")
	}
	i.store.addFuel(int64(n))
	return nil
}
