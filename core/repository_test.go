package core

import (
	"context"
	"sync"
)

// fakeUserRepository is an in-memory UserRepository for tests. Its
// mutex-guarded map plays the role of the store's unique constraint on
// username: check-and-insert is atomic, so racing Creates see exactly one
// winner.
type fakeUserRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]UserRecord
	byName map[string]int64
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{
		byID:   map[int64]UserRecord{},
		byName: map[string]int64{},
	}
}

func (r *fakeUserRepository) FindByUsername(ctx context.Context, username string) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byName[username]
	if !ok {
		return nil, nil
	}
	u := r.byID[id]
	return &u, nil
}

func (r *fakeUserRepository) FindByID(ctx context.Context, id int64) (*UserRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *fakeUserRepository) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byName[username]; ok {
		return 0, ErrUserExists
	}
	r.nextID++
	r.byID[r.nextID] = UserRecord{ID: r.nextID, Username: username, PasswordHash: passwordHash}
	r.byName[username] = r.nextID
	return r.nextID, nil
}

func (r *fakeUserRepository) Count(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID), nil
}

// remove deletes a row directly, simulating a user deleted out-of-band while
// a session still references it.
func (r *fakeUserRepository) remove(id int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		delete(r.byName, u.Username)
		delete(r.byID, id)
	}
}

// put restores a row verbatim, ids included.
func (r *fakeUserRepository) put(u UserRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[u.ID] = u
	r.byName[u.Username] = u.ID
	if u.ID > r.nextID {
		r.nextID = u.ID
	}
}
