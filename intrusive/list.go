// Package intrusive implements a small non-owning doubly-linked list
// over elements that carry their own link fields, the classical
// container_of-style list the allocator's slab pool is built on.
// Slabs and caches are arena-managed elsewhere; this list only ever
// holds references, never owning node allocations.
package intrusive

// Linked is implemented by any type that can sit on one List at a
// time. GetLink exposes the element's own link storage so the
// list never allocates a wrapper node.
type Linked[T any] interface {
	comparable
	GetLink() *Link[T]
}

// Link is the embeddable link field. An element embeds a Link[T] and
// implements GetLink by returning its address.
type Link[T any] struct {
	prev, next T
	linked     bool
}

// List is a doubly-linked list of elements satisfying Linked[T]. The
// zero value is an empty, usable list. T is expected to be a pointer
// type (e.g. *Slab); nilT is the zero value used as "no element".
type List[T Linked[T]] struct {
	head, tail T
	length     int
	nilT       T
}

// Len returns the number of elements currently linked.
func (l *List[T]) Len() int { return l.length }

// Empty reports whether the list has no elements.
func (l *List[T]) Empty() bool { return l.length == 0 }

// Front returns the head element, or the zero value if empty.
func (l *List[T]) Front() T { return l.head }

// PushFront links e at the head of the list. e must not already be
// linked into any list.
func (l *List[T]) PushFront(e T) {
	link := e.GetLink()
	link.prev = l.nilT
	link.next = l.head
	if l.head != l.nilT {
		l.head.GetLink().prev = e
	} else {
		l.tail = e
	}
	l.head = e
	link.linked = true
	l.length++
}

// PushBack links e at the tail of the list.
func (l *List[T]) PushBack(e T) {
	link := e.GetLink()
	link.next = l.nilT
	link.prev = l.tail
	if l.tail != l.nilT {
		l.tail.GetLink().next = e
	} else {
		l.head = e
	}
	l.tail = e
	link.linked = true
	l.length++
}

// Remove unlinks e from the list. It is a no-op if e is not linked
// (callers track ownership; each element belongs to at most one list
// at a time).
func (l *List[T]) Remove(e T) {
	link := e.GetLink()
	if !link.linked {
		return
	}
	if link.prev != l.nilT {
		link.prev.GetLink().next = link.next
	} else {
		l.head = link.next
	}
	if link.next != l.nilT {
		link.next.GetLink().prev = link.prev
	} else {
		l.tail = link.prev
	}
	link.prev, link.next = l.nilT, l.nilT
	link.linked = false
	l.length--
}

// PopFront unlinks and returns the head element, or the zero value if
// the list is empty.
func (l *List[T]) PopFront() T {
	e := l.head
	if e != l.nilT {
		l.Remove(e)
	}
	return e
}

// Each calls fn for every element from head to tail. fn may return
// false to stop early.
func (l *List[T]) Each(fn func(T) bool) {
	for e := l.head; e != l.nilT; e = e.GetLink().next {
		if !fn(e) {
			return
		}
	}
}
