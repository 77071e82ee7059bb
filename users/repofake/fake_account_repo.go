package fakeaccountrepo

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/users"
)

var _ users.AccountRepo = (*FakeAccountRepo)(nil)

type FakeAccountRepo struct {
	accounts    map[string]*users.Account
	usernameIDs map[string]string // lower-cased username to account id
	emailIDs    map[string]string // lower-cased email to account id
	lock        sync.RWMutex
}

func NewFakeAccountRepo() *FakeAccountRepo {
	return &FakeAccountRepo{
		accounts:    make(map[string]*users.Account),
		usernameIDs: make(map[string]string),
		emailIDs:    make(map[string]string),
	}
}

func (r *FakeAccountRepo) Create(account *users.Account) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	username := strings.ToLower(account.Username)
	email := strings.ToLower(account.Email)
	if _, ok := r.usernameIDs[username]; ok {
		return users.ErrUsernameTaken
	}
	if _, ok := r.emailIDs[email]; ok {
		return users.ErrEmailTaken
	}

	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	stored := *account
	r.accounts[account.ID] = &stored
	r.usernameIDs[username] = account.ID
	r.emailIDs[email] = account.ID
	return nil
}

func (r *FakeAccountRepo) GetByUsername(username string) (*users.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	id, ok := r.usernameIDs[strings.ToLower(username)]
	if !ok {
		return nil, users.ErrAccountNotFound
	}
	account := *r.accounts[id]
	return &account, nil
}

func (r *FakeAccountRepo) GetByID(id string) (*users.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	stored, ok := r.accounts[id]
	if !ok {
		return nil, users.ErrAccountNotFound
	}
	account := *stored
	return &account, nil
}

func (r *FakeAccountRepo) List(offset, limit int) ([]*users.Account, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	list := make([]*users.Account, 0, len(r.accounts))
	for _, v := range r.accounts {
		account := *v
		list = append(list, &account)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Username < list[j].Username
	})

	if offset >= len(list) {
		return []*users.Account{}, nil
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end], nil
}
