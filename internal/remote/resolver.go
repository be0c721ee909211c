package remote

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Resolver находит или создаёт папки. Идентификаторы папок предметов и категорий
// кэшируются с TTL; ключ кэша включает владельца, поэтому одинаковые имена родителей
// разных пользователей (например "root" в Google Drive) не пересекаются.
//
// Поиск-или-создание не атомарен относительно других процессов: удалённое хранилище
// не даёт compare-and-swap. Внутри процесса разрешение иерархии сериализуется по ключу
// (владелец, корень, предмет), так что параллельные загрузки в один предмет не плодят дубликаты.
type Resolver struct {
	cache *expirable.LRU[string, string]
	locks keyedMutex
}

// NewResolver создаёт резолвер; size <= 0 отключает ограничение размера кэша.
func NewResolver(size int, ttl time.Duration) *Resolver {
	return &Resolver{cache: expirable.NewLRU[string, string](size, nil, ttl)}
}

// ResolveFolder возвращает папку name внутри parentID, создавая её при отсутствии.
// Кэш не используется: каждый вызов спрашивает хранилище.
// Если совпадений несколько (след гонки), берётся первое из списка.
func (r *Resolver) ResolveFolder(ctx context.Context, d Drive, parentID, name string) (string, error) {
	found, err := d.ListFolders(ctx, parentID, name)
	if err != nil {
		return "", fmt.Errorf("list folders %q: %w", name, err)
	}
	if len(found) > 0 {
		return found[0].ID, nil
	}

	created, err := d.CreateFolder(ctx, parentID, name)
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}
	return created.ID, nil
}

func (r *Resolver) resolveCached(ctx context.Context, d Drive, owner int64, parentID, name string) (string, error) {
	key := cacheKey(owner, parentID, name)
	if id, ok := r.cache.Get(key); ok {
		return id, nil
	}
	id, err := r.ResolveFolder(ctx, d, parentID, name)
	if err != nil {
		return "", err
	}
	r.cache.Add(key, id)
	return id, nil
}

// ResolveHierarchy строит двухуровневую структуру root/subject/category
// для владельца owner и возвращает идентификатор папки категории.
func (r *Resolver) ResolveHierarchy(ctx context.Context, d Drive, owner int64, rootID, subject, category string) (string, error) {
	unlock := r.locks.Lock(cacheKey(owner, rootID, subject))
	defer unlock()

	subjectID, err := r.resolveCached(ctx, d, owner, rootID, subject)
	if err != nil {
		return "", err
	}
	return r.resolveCached(ctx, d, owner, subjectID, category)
}

// Forget сбрасывает кэш для иерархии root/subject владельца, например после неудачной
// загрузки в папку, которую пользователь мог удалить.
func (r *Resolver) Forget(owner int64, rootID, subject string) {
	key := cacheKey(owner, rootID, subject)
	if subjectID, ok := r.cache.Peek(key); ok {
		r.removePrefix(cacheKey(owner, subjectID, ""))
	}
	r.cache.Remove(key)
}

// ForgetOwner сбрасывает все закэшированные папки владельца.
func (r *Resolver) ForgetOwner(owner int64) {
	r.removePrefix(fmt.Sprintf("%d\x00", owner))
}

func (r *Resolver) removePrefix(prefix string) {
	for _, k := range r.cache.Keys() {
		if strings.HasPrefix(k, prefix) {
			r.cache.Remove(k)
		}
	}
}

func cacheKey(owner int64, parentID, name string) string {
	return fmt.Sprintf("%d\x00%s\x00%s", owner, parentID, name)
}

// keyedMutex — мьютекс на ключ со счётчиком ссылок; пустые записи удаляются.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func (k *keyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*refMutex)
	}
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}
