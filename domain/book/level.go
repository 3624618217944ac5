package book

// level is the FIFO queue of resting orders at a single price.
// Qty is the aggregated remaining quantity across the queue and is kept in
// step with every fill and pop.
type level struct {
	price int64

	head *Order
	tail *Order

	qty   int64
	count int
}

func (l *level) enqueue(o *Order) {
	if l.head == nil {
		l.head = o
		l.tail = o
	} else {
		l.tail.next = o
		o.prev = l.tail
		l.tail = o
	}
	l.qty += o.Remaining
	l.count++
}

// popHead unlinks and returns the front order. The caller has already
// accounted the order's fills into l.qty; only the queue shape changes here.
func (l *level) popHead() *Order {
	o := l.head
	if o == nil {
		return nil
	}

	l.head = o.next
	if l.head != nil {
		l.head.prev = nil
	} else {
		l.tail = nil
	}

	o.next = nil
	o.prev = nil
	l.count--
	return o
}

func (l *level) empty() bool {
	return l.head == nil
}
