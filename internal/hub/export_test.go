package hub

// LaneCount reports how many auctions currently hold an ordering lane
func (d *Dispatcher) LaneCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.lanes)
}
