package apitest

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-admin-console/finetune"
	"github.com/jrsteele09/go-admin-console/users"
)

// userRepo is an in-memory user table keyed by id with an email index
type userRepo struct {
	lock      sync.RWMutex
	users     map[string]*users.User
	emailIDs  map[string]string // email to user id
	passwords map[string]string // user id to password
}

func newUserRepo() *userRepo {
	return &userRepo{
		users:     make(map[string]*users.User),
		emailIDs:  make(map[string]string),
		passwords: make(map[string]string),
	}
}

func (ur *userRepo) upsert(user users.User, password string) users.User {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if existing, ok := ur.users[user.ID]; ok && existing.Email != user.Email {
		delete(ur.emailIDs, existing.Email)
	}
	ur.users[user.ID] = &user
	ur.emailIDs[strings.ToLower(user.Email)] = user.ID
	if password != "" {
		ur.passwords[user.ID] = password
	}
	return user
}

func (ur *userRepo) authenticate(email, password string) (users.User, bool) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	id, ok := ur.emailIDs[strings.ToLower(email)]
	if !ok || ur.passwords[id] != password {
		return users.User{}, false
	}
	return *ur.users[id], true
}

func (ur *userRepo) get(id string) (users.User, bool) {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	user, ok := ur.users[id]
	if !ok {
		return users.User{}, false
	}
	return *user, true
}

func (ur *userRepo) delete(id string) bool {
	ur.lock.Lock()
	defer ur.lock.Unlock()

	user, ok := ur.users[id]
	if !ok {
		return false
	}
	delete(ur.emailIDs, strings.ToLower(user.Email))
	delete(ur.passwords, id)
	delete(ur.users, id)
	return true
}

func (ur *userRepo) list() []users.User {
	ur.lock.RLock()
	defer ur.lock.RUnlock()

	list := make([]users.User, 0, len(ur.users))
	for _, v := range ur.users {
		list = append(list, *v)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Email < list[j].Email
	})
	return list
}

// fineTuneRepo is an in-memory fine-tune table, newest first
type fineTuneRepo struct {
	lock    sync.RWMutex
	records []finetune.FineTune
	now     func() time.Time
}

func newFineTuneRepo() *fineTuneRepo {
	return &fineTuneRepo{now: time.Now}
}

func (fr *fineTuneRepo) create(req finetune.Request) finetune.FineTune {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	now := fr.now().UTC()
	record := finetune.FineTune{
		ID:        uuid.New().String(),
		Prompt:    req.Prompt,
		Response:  req.Response,
		IsChecked: req.IsChecked,
		CreatedAt: now,
		UpdatedAt: now,
	}
	fr.records = append([]finetune.FineTune{record}, fr.records...)
	return record
}

func (fr *fineTuneRepo) update(id string, mutate func(*finetune.FineTune)) (finetune.FineTune, bool) {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	for i := range fr.records {
		if fr.records[i].ID == id {
			mutate(&fr.records[i])
			fr.records[i].UpdatedAt = fr.now().UTC()
			return fr.records[i], true
		}
	}
	return finetune.FineTune{}, false
}

func (fr *fineTuneRepo) get(id string) (finetune.FineTune, bool) {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	for _, r := range fr.records {
		if r.ID == id {
			return r, true
		}
	}
	return finetune.FineTune{}, false
}

func (fr *fineTuneRepo) delete(id string) bool {
	fr.lock.Lock()
	defer fr.lock.Unlock()

	for i, r := range fr.records {
		if r.ID == id {
			fr.records = append(fr.records[:i], fr.records[i+1:]...)
			return true
		}
	}
	return false
}

// page returns records matching keyword (all when empty), one page at a time
func (fr *fineTuneRepo) page(keyword string, page, limit int) finetune.Page {
	fr.lock.RLock()
	defer fr.lock.RUnlock()

	keyword = strings.ToLower(keyword)
	matched := make([]finetune.FineTune, 0)
	for _, r := range fr.records {
		if keyword == "" ||
			strings.Contains(strings.ToLower(r.Prompt), keyword) ||
			strings.Contains(strings.ToLower(r.Response), keyword) {
			matched = append(matched, r)
		}
	}

	result := finetune.Page{Total: len(matched), Page: page, Limit: limit}
	start := (page - 1) * limit
	if start < len(matched) {
		end := min(start+limit, len(matched))
		result.Data = matched[start:end]
	}
	result.Normalise(page, limit)
	return result
}
