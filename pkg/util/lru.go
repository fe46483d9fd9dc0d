package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// entry 结构体用于存储链表节点中的实际数据。
type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time // 元素的过期时间, TTL 为 0 时为零值
}

// LRUCache 是一个支持泛型、线程安全的 LRU 缓存，并支持可选的 TTL 过期。
type LRUCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	ll       *list.List
	cache    map[K]*list.Element
	lock     sync.Mutex
}

// NewLRU 创建一个 LRU 缓存实例。
// capacity 必须为正; ttl 为 0 时元素永不过期。
func NewLRU[K comparable, V any](capacity int, ttl time.Duration) (*LRUCache[K, V], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity 必须为正数")
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		ttl:      ttl,
		ll:       list.New(),
		cache:    make(map[K]*list.Element),
	}, nil
}

// Get 方法根据键获取一个值。
func (c *LRUCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()

	element, ok := c.cache[key]
	if !ok {
		var zeroV V
		return zeroV, false
	}

	// 检查 TTL 是否过期（被动淘汰）。
	ent := element.Value.(*entry[K, V])
	if c.ttl > 0 && time.Now().After(ent.expiration) {
		c.removeElement(element)
		var zeroV V
		return zeroV, false
	}

	// 标记为最近使用。
	c.ll.MoveToFront(element)
	return ent.value, true
}

// Put 方法向缓存中添加或更新一个键值对。
func (c *LRUCache[K, V]) Put(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if element, ok := c.cache[key]; ok {
		// 更新现有元素。
		ent := element.Value.(*entry[K, V])
		ent.value = value
		if c.ttl > 0 {
			ent.expiration = time.Now().Add(c.ttl)
		}
		c.ll.MoveToFront(element)
		return
	}

	// 插入新元素。
	newEntry := &entry[K, V]{key: key, value: value}
	if c.ttl > 0 {
		newEntry.expiration = time.Now().Add(c.ttl)
	}
	c.cache[key] = c.ll.PushFront(newEntry)

	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
}

// Len 返回缓存中当前的元素数量。
func (c *LRUCache[K, V]) Len() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.ll.Len()
}

// evictOldest 淘汰链表尾部的最久未使用元素。
// 此方法假设已持有锁。
func (c *LRUCache[K, V]) evictOldest() {
	element := c.ll.Back()
	if element != nil {
		c.removeElement(element)
	}
}

// removeElement 从链表和索引中删除一个元素。
// 此方法假设已持有锁。
func (c *LRUCache[K, V]) removeElement(element *list.Element) {
	c.ll.Remove(element)
	ent := element.Value.(*entry[K, V])
	delete(c.cache, ent.key)
}
