package capture

import (
	"sync"

	"github.com/leshachaplin/tracklog/internal/domain"
)

// Hub is an in-process Window and Workspace. The host pushes notifications
// and workspace state into it; subscribers are called one notification at a
// time, in arrival order.
type Hub struct {
	dispatch sync.Mutex

	subMu     sync.RWMutex
	pointer   []func(domain.PointerNotification)
	clicks    []func(domain.PointerNotification)
	resizes   []func(domain.ResizeNotification)
	messages  []func(domain.HostMessage)
	mutations []func(domain.Mutation)

	stateMu  sync.RWMutex
	document string
	blocks   map[string]string
}

func NewHub() *Hub {
	return &Hub{
		blocks: make(map[string]string),
	}
}

func (h *Hub) OnPointerMove(fn func(domain.PointerNotification)) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.pointer = append(h.pointer, fn)
}

func (h *Hub) OnClick(fn func(domain.PointerNotification)) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.clicks = append(h.clicks, fn)
}

func (h *Hub) OnResize(fn func(domain.ResizeNotification)) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.resizes = append(h.resizes, fn)
}

func (h *Hub) OnMessage(fn func(domain.HostMessage)) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.messages = append(h.messages, fn)
}

func (h *Hub) OnMutation(fn func(domain.Mutation)) {
	h.subMu.Lock()
	defer h.subMu.Unlock()
	h.mutations = append(h.mutations, fn)
}

func (h *Hub) PointerMove(n domain.PointerNotification) {
	h.subMu.RLock()
	subs := h.pointer
	h.subMu.RUnlock()
	emit(&h.dispatch, subs, n)
}

func (h *Hub) Click(n domain.PointerNotification) {
	h.subMu.RLock()
	subs := h.clicks
	h.subMu.RUnlock()
	emit(&h.dispatch, subs, n)
}

func (h *Hub) Resize(n domain.ResizeNotification) {
	h.subMu.RLock()
	subs := h.resizes
	h.subMu.RUnlock()
	emit(&h.dispatch, subs, n)
}

func (h *Hub) Message(m domain.HostMessage) {
	h.subMu.RLock()
	subs := h.messages
	h.subMu.RUnlock()
	emit(&h.dispatch, subs, m)
}

func (h *Hub) Mutation(m domain.Mutation) {
	h.subMu.RLock()
	subs := h.mutations
	h.subMu.RUnlock()
	emit(&h.dispatch, subs, m)
}

func emit[T any](mu *sync.Mutex, subs []func(T), v T) {
	mu.Lock()
	defer mu.Unlock()
	for _, fn := range subs {
		fn(v)
	}
}

// SetState replaces the mirrored workspace document and block index.
func (h *Hub) SetState(document string, blocks map[string]string) {
	index := make(map[string]string, len(blocks))
	for id, kind := range blocks {
		index[id] = kind
	}

	h.stateMu.Lock()
	defer h.stateMu.Unlock()
	h.document = document
	h.blocks = index
}

func (h *Hub) ResolveBlockKind(id string) string {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.blocks[id]
}

func (h *Hub) Snapshot() string {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.document
}
