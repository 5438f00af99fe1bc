package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/tubeboost/storefront-backend/pkg/errors"
	"github.com/tubeboost/storefront-backend/pkg/logger"
	pkgredis "github.com/tubeboost/storefront-backend/pkg/redis"
)

type snapshotStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartSnapshotKey(sessionID string) string
}

// Store owns the per-session cart state machine. Each session has a single
// writer; distinct operations may be in flight concurrently and only touch
// the shared snapshot at their settle point.
type Store struct {
	persistence snapshotStore
	logg        *logger.Logger
	ttl         time.Duration

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	// mu serializes reducer application and persistence for the session.
	mu       sync.Mutex
	hydrated bool
	snapshot Snapshot

	// loadMu guards the in-flight set separately so loading flags stay
	// readable while a mutation is suspended on persistence I/O.
	loadMu  sync.Mutex
	loading map[OpKey]struct{}
}

// NewStore builds a cart store backed by the provided snapshot persistence.
func NewStore(persistence snapshotStore, logg *logger.Logger, ttl time.Duration) (*Store, error) {
	if persistence == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{
		persistence: persistence,
		logg:        logg,
		ttl:         ttl,
		sessions:    make(map[string]*session),
	}, nil
}

// AddItemInput carries a pre-priced line into the cart.
type AddItemInput struct {
	OfferingSlug string
	Quantity     int
	UnitPrice    decimal.Decimal
	Options      SelectedOptions
}

// AddItem appends a new line and returns it with the settled snapshot.
func (s *Store) AddItem(ctx context.Context, sessionID string, input AddItemInput) (Item, Snapshot, error) {
	if input.OfferingSlug == "" {
		return Item{}, Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "offering slug is required")
	}
	if input.Quantity < 1 {
		return Item{}, Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if input.UnitPrice.IsNegative() {
		return Item{}, Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}

	item := Item{
		ID:              newItemID(input.OfferingSlug),
		OfferingSlug:    input.OfferingSlug,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		SelectedOptions: input.Options,
		AddedAt:         time.Now().UTC(),
	}

	snapshot, err := s.mutate(ctx, sessionID, OpKey{Kind: OpAdd, TargetID: item.ID}, addIntent{item: item})
	if err != nil {
		return Item{}, Snapshot{}, err
	}
	return item, snapshot, nil
}

// RemoveItem drops a line by id. Removing an unknown id settles as a no-op.
func (s *Store) RemoveItem(ctx context.Context, sessionID, itemID string) (Snapshot, error) {
	if itemID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	return s.mutate(ctx, sessionID, OpKey{Kind: OpRemove, TargetID: itemID}, removeIntent{itemID: itemID})
}

// UpdateQuantity replaces a line's order multiplier. The API boundary clamps
// the floor before dispatching; the reducer applies what it is given.
func (s *Store) UpdateQuantity(ctx context.Context, sessionID, itemID string, quantity int) (Snapshot, error) {
	if itemID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if quantity < 1 {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	key := OpKey{Kind: OpUpdateQuantity, TargetID: itemID}
	return s.mutate(ctx, sessionID, key, updateQuantityIntent{itemID: itemID, quantity: quantity})
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, sessionID string) (Snapshot, error) {
	return s.mutate(ctx, sessionID, OpKey{Kind: OpClear}, clearIntent{})
}

// Get returns the current snapshot, hydrating from persistence on first use.
func (s *Store) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	sess, err := s.sessionFor(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.snapshot, nil
}

// IsOperationLoading reports whether the given operation is still in flight.
func (s *Store) IsOperationLoading(sessionID string, key OpKey) bool {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	sess.loadMu.Lock()
	defer sess.loadMu.Unlock()
	_, loading := sess.loading[key]
	return loading
}

// LoadingOperations lists the in-flight operation keys for UI gating.
func (s *Store) LoadingOperations(sessionID string) []string {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	sess.loadMu.Lock()
	defer sess.loadMu.Unlock()
	keys := make([]string, 0, len(sess.loading))
	for key := range sess.loading {
		keys = append(keys, key.String())
	}
	return keys
}

// mutate runs the intent-settle protocol: mark the operation in flight,
// apply the reducer under the session's write lock, persist the settled
// snapshot, and always unmark the operation even when persistence fails.
func (s *Store) mutate(ctx context.Context, sessionID string, key OpKey, in intent) (Snapshot, error) {
	if sessionID == "" {
		return Snapshot{}, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	sess, err := s.sessionFor(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	s.markLoading(sess, key)
	defer s.unmarkLoading(sess, key)

	sess.mu.Lock()
	defer sess.mu.Unlock()

	next := reduce(sess.snapshot, in)
	if err := s.persist(ctx, sessionID, next); err != nil {
		return Snapshot{}, err
	}
	sess.snapshot = next
	return next, nil
}

func (s *Store) markLoading(sess *session, key OpKey) {
	sess.loadMu.Lock()
	defer sess.loadMu.Unlock()
	sess.loading[key] = struct{}{}
}

func (s *Store) unmarkLoading(sess *session, key OpKey) {
	sess.loadMu.Lock()
	defer sess.loadMu.Unlock()
	delete(sess.loading, key)
}

func (s *Store) persist(ctx context.Context, sessionID string, snapshot Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart snapshot")
	}
	key := s.persistence.CartSnapshotKey(sessionID)
	if err := s.persistence.Set(ctx, key, string(payload), s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart snapshot")
	}
	return nil
}

// sessionFor returns the session entry, hydrating it from persistence
// exactly once. A corrupt or missing snapshot starts the session empty
// instead of propagating the failure.
func (s *Store) sessionFor(ctx context.Context, sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}

	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{loading: make(map[OpKey]struct{})}
		s.sessions[sessionID] = sess
	}
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.hydrated {
		return sess, nil
	}

	sess.snapshot = s.loadSnapshot(ctx, sessionID)
	sess.hydrated = true
	return sess, nil
}

func (s *Store) loadSnapshot(ctx context.Context, sessionID string) Snapshot {
	empty := Snapshot{Items: []Item{}, Total: decimal.Zero}

	raw, err := s.persistence.Get(ctx, s.persistence.CartSnapshotKey(sessionID))
	if err != nil {
		if !pkgredis.IsNotFound(err) {
			lctx := s.logg.WithSessionID(ctx, sessionID)
			s.logg.Warn(lctx, "cart snapshot load failed, starting empty")
		}
		return empty
	}

	var snapshot Snapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		lctx := s.logg.WithSessionID(ctx, sessionID)
		s.logg.Warn(lctx, "cart snapshot corrupt, starting empty")
		return empty
	}
	if snapshot.Items == nil {
		snapshot.Items = []Item{}
	}
	return snapshot
}

func newItemID(offeringSlug string) string {
	return fmt.Sprintf("%s-%d-%s", offeringSlug, time.Now().UnixMilli(), uuid.NewString()[:8])
}
