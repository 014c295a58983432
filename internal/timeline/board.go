package timeline

// Row is one slot of the daily board with the items bucketed into it.
type Row[T any] struct {
	Slot  Clock
	Items []T
}

// Label returns the slot as HH:MM.
func (r Row[T]) Label() string { return r.Slot.String() }

// Group buckets items into the rows of slots by their start time, keeping
// input order inside a row. Items whose start is unreadable or outside the
// board are left out.
func Group[T any](items []T, start func(T) string, slots Slots) []Row[T] {
	list := slots.List()
	rows := make([]Row[T], len(list))
	index := make(map[Clock]int, len(list))
	for i, c := range list {
		rows[i] = Row[T]{Slot: c}
		index[c] = i
	}

	for _, it := range items {
		c, err := ParseClock(start(it))
		if err != nil {
			continue
		}
		slot, ok := slots.SlotFor(c)
		if !ok {
			continue
		}
		i := index[slot]
		rows[i].Items = append(rows[i].Items, it)
	}
	return rows
}
