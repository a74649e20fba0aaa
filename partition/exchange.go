package partition

import (
	"sync"

	"github.com/google/uuid"
)

// Message is one halo payload posted from one rank to a neighbor, grounded
// on gocfd/utils.MailBox's post/deliver/receive message shape.
type Message struct {
	From, To int
	Tag      int
	Trace    uuid.UUID // set only when the cluster was built with tracing on
	Data     []float64
}

// MailBox is a single-neighbor-pair buffered channel, grounded directly on
// gocfd/utils.MailBox[T]: one channel per ordered (from,to) pair, posted to
// non-blockingly and drained by the receiving Rank's Receive.
type MailBox struct {
	ch chan Message
}

func newMailBox(depth int) *MailBox {
	return &MailBox{ch: make(chan Message, depth)}
}

func (mb *MailBox) post(msg Message) {
	mb.ch <- msg
}

func (mb *MailBox) deliver() Message {
	return <-mb.ch
}

// Cluster owns the MailBox fabric connecting every rank's Rank handle,
// simulating an MPI communicator entirely in-process with goroutines,
// grounded on gocfd/utils.NeighborNotifier's role of wiring element
// neighbors across partitions.
type Cluster struct {
	Map     *Map
	trace   bool
	mailbox map[[2]int]*MailBox // keyed by [from,to]
	mu      sync.Mutex
	tagSeq  int
}

// NewCluster builds a Cluster over pm (Rank hands out per-rank handles, and
// mailboxes are created on first use), optionally tagging every Message
// with a uuid for halo-exchange tracing.
func NewCluster(pm *Map, trace bool) *Cluster {
	return &Cluster{Map: pm, trace: trace, mailbox: make(map[[2]int]*MailBox)}
}

func (c *Cluster) box(from, to int) *MailBox {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := [2]int{from, to}
	mb, ok := c.mailbox[key]
	if !ok {
		mb = newMailBox(8)
		c.mailbox[key] = mb
	}
	return mb
}

func (c *Cluster) nextTag() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tagSeq++
	return c.tagSeq
}

// Rank is one participant's view of the Cluster, analogous to an MPI rank
// handle: it knows only its own id and posts/receives through the shared
// Cluster fabric.
type Rank struct {
	ID      int
	cluster *Cluster
}

// Rank returns the Rank handle for rank id within the cluster.
func (c *Cluster) Rank(id int) *Rank {
	return &Rank{ID: id, cluster: c}
}

// Post sends data to a neighboring rank, non-blocking up to the mailbox's
// buffer depth, mirroring MailBox.PostMyMessages.
func (r *Rank) Post(to int, data []float64) {
	msg := Message{From: r.ID, To: to, Tag: r.cluster.nextTag(), Data: data}
	if r.cluster.trace {
		msg.Trace = uuid.New()
	}
	r.cluster.box(r.ID, to).post(msg)
}

// Receive blocks until a message from the given neighbor arrives, mirroring
// MailBox.ReceiveMyMessages.
func (r *Rank) Receive(from int) Message {
	return r.cluster.box(from, r.ID).deliver()
}
